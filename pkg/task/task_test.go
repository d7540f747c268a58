package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/mac"
	"github.com/efgnet/wifisync/pkg/task"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       task.Raw
		wantKind  task.Kind
		wantErr   bool
		wantField string
	}{
		{
			name: "add task",
			raw: task.Raw{
				ID:           "t1",
				Title:        "ADDMAC - Jane Doe - Guest-WiFi",
				MACField:     "11:22:33:44:55:66",
				NetworkField: "Guest-WiFi",
				CommentField: "Jane Doe",
			},
			wantKind: task.Add,
		},
		{
			name: "delete task",
			raw: task.Raw{
				ID:           "t2",
				Title:        "DELMAC - Jane Doe - Guest-WiFi",
				MACField:     "11:22:33:44:55:66",
				NetworkField: "Guest-WiFi",
			},
			wantKind: task.Delete,
		},
		{
			name: "token match is case-sensitive",
			raw: task.Raw{
				ID:           "t3",
				Title:        "addmac - Jane Doe - Guest-WiFi",
				MACField:     "11:22:33:44:55:66",
				NetworkField: "Guest-WiFi",
			},
			wantErr:   true,
			wantField: "title",
		},
		{
			name: "missing token",
			raw: task.Raw{
				ID:           "t4",
				Title:        "please add my phone",
				MACField:     "11:22:33:44:55:66",
				NetworkField: "Guest-WiFi",
			},
			wantErr:   true,
			wantField: "title",
		},
		{
			name: "bad MAC field",
			raw: task.Raw{
				ID:           "t5",
				Title:        "ADDMAC - Jane Doe - Guest-WiFi",
				MACField:     "not-a-mac",
				NetworkField: "Guest-WiFi",
			},
			wantErr:   true,
			wantField: "mac",
		},
		{
			name: "empty network field",
			raw: task.Raw{
				ID:           "t6",
				Title:        "ADDMAC - Jane Doe - Guest-WiFi",
				MACField:     "11:22:33:44:55:66",
				NetworkField: "   ",
			},
			wantErr:   true,
			wantField: "network",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := task.Decode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var malformed *pkgerrors.MalformedTaskError
				require.ErrorAs(t, err, &malformed)
				assert.Equal(t, tt.raw.ID, malformed.TaskID)
				assert.Equal(t, tt.wantField, malformed.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw.ID, decoded.ID)
			assert.Equal(t, tt.wantKind, decoded.Kind)
			assert.Equal(t, mac.MustParse("11:22:33:44:55:66"), decoded.Addr)
			assert.Equal(t, "Guest-WiFi", decoded.Network)
		})
	}
}

func TestDecodeTrimsFields(t *testing.T) {
	decoded, err := task.Decode(task.Raw{
		ID:           "t1",
		Title:        "ADDMAC - Jane Doe - Guest-WiFi",
		MACField:     "  AA:BB:CC:DD:EE:FF ",
		NetworkField: " Guest-WiFi ",
		CommentField: " Jane Doe ",
	})
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", decoded.Addr.String())
	assert.Equal(t, "Guest-WiFi", decoded.Network)
	assert.Equal(t, "Jane Doe", decoded.Comment)
}

func TestDecodeNetworkIsCaseSensitive(t *testing.T) {
	decoded, err := task.Decode(task.Raw{
		ID:           "t1",
		Title:        "ADDMAC - x - y",
		MACField:     "11:22:33:44:55:66",
		NetworkField: "guest-wifi",
	})
	require.NoError(t, err)
	assert.Equal(t, "guest-wifi", decoded.Network, "SSID must not be normalized")
}
