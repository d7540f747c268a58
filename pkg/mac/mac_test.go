package mac_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/mac"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercase", input: "aa:bb:cc:dd:ee:ff", want: "aa:bb:cc:dd:ee:ff"},
		{name: "uppercase is normalized", input: "AA:BB:CC:DD:EE:FF", want: "aa:bb:cc:dd:ee:ff"},
		{name: "mixed case", input: "Aa:bB:cC:Dd:Ee:fF", want: "aa:bb:cc:dd:ee:ff"},
		{name: "digits", input: "11:22:33:44:55:66", want: "11:22:33:44:55:66"},
		{name: "too few groups", input: "aa:bb:cc:dd:ee", wantErr: true},
		{name: "too many groups", input: "aa:bb:cc:dd:ee:ff:00", wantErr: true},
		{name: "dash separator", input: "aa-bb-cc-dd-ee-ff", wantErr: true},
		{name: "no separator", input: "aabbccddeeff", wantErr: true},
		{name: "non-hex digits", input: "gg:bb:cc:dd:ee:ff", wantErr: true},
		{name: "short group", input: "a:bb:cc:dd:ee:ff", wantErr: true},
		{name: "long group", input: "aaa:bb:cc:dd:ee:ff", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not-a-mac-address", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := mac.Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

func TestAddressEquality(t *testing.T) {
	a := mac.MustParse("AA:BB:CC:DD:EE:FF")
	b := mac.MustParse("aa:bb:cc:dd:ee:ff")
	assert.Equal(t, a, b)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() {
		mac.MustParse("garbage")
	})
}

func TestStrings(t *testing.T) {
	addrs := []mac.Address{
		mac.MustParse("aa:bb:cc:dd:ee:ff"),
		mac.MustParse("11:22:33:44:55:66"),
	}
	assert.Equal(t, []string{"aa:bb:cc:dd:ee:ff", "11:22:33:44:55:66"}, mac.Strings(addrs))
	assert.Equal(t, []string{}, mac.Strings(nil))
}
