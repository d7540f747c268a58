package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efgnet/wifisync/internal/cmd/output"
)

type row struct {
	MAC     string `json:"mac"`
	Network string `json:"network"`
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := output.NewFormatter(output.FormatJSON)

	require.NoError(t, formatter.Format(&buf, []row{{MAC: "aa:bb:cc:dd:ee:ff", Network: "Guest-WiFi"}}))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", decoded[0]["mac"])
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	formatter := output.NewFormatter(output.FormatYAML)

	require.NoError(t, formatter.Format(&buf, row{MAC: "aa:bb:cc:dd:ee:ff", Network: "Guest-WiFi"}))
	assert.Contains(t, buf.String(), "mac: aa:bb:cc:dd:ee:ff")
}

func TestTableFormatterHeadersFromTags(t *testing.T) {
	var buf bytes.Buffer
	formatter := output.NewFormatter(output.FormatTable)

	require.NoError(t, formatter.Format(&buf, []row{
		{MAC: "aa:bb:cc:dd:ee:ff", Network: "Guest-WiFi"},
	}))

	rendered := buf.String()
	assert.Contains(t, rendered, "Guest-WiFi")
	assert.Contains(t, strings.ToUpper(rendered), "NETWORK")
}

func TestParseFormat(t *testing.T) {
	format, err := output.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, output.FormatJSON, format)

	_, err = output.ParseFormat("xml")
	assert.Error(t, err)
}
