package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/efgnet/wifisync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestMalformedEntryError(t *testing.T) {
	t.Run("with line number", func(t *testing.T) {
		err := pkgerrors.NewMalformedEntryError("not-a-mac garbage", 4, "unexpected trailing content")
		assert.Equal(t, `malformed entry at line 4: unexpected trailing content ("not-a-mac garbage")`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
		assert.True(t, pkgerrors.IsMalformedEntry(err))
	})

	t.Run("wrapped", func(t *testing.T) {
		base := pkgerrors.NewMalformedEntryError("x", 1, "bad")
		wrapped := errors.Join(errors.New("load failed"), base)
		assert.True(t, pkgerrors.IsMalformedEntry(wrapped))
	})
}

func TestMalformedTaskError(t *testing.T) {
	err := pkgerrors.NewMalformedTaskError("task-1", "mac", "not parseable")
	assert.Equal(t, "malformed task task-1: field mac: not parseable", err.Error())
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	assert.True(t, pkgerrors.IsMalformedTask(err))
	assert.False(t, pkgerrors.IsMalformedEntry(err))
}

func TestControllerError(t *testing.T) {
	t.Run("server error maps to unavailable", func(t *testing.T) {
		err := pkgerrors.NewControllerError("set filter", "Guest-WiFi", 502, "bad gateway", nil)
		assert.Contains(t, err.Error(), `set filter for "Guest-WiFi" (status 502)`)
		assert.True(t, errors.Is(err, pkgerrors.ErrControllerUnavailable))
		assert.True(t, pkgerrors.IsControllerError(err))
	})

	t.Run("auth error maps to not authenticated", func(t *testing.T) {
		err := pkgerrors.NewControllerError("login", "", 401, "invalid credentials", nil)
		assert.True(t, pkgerrors.IsNotAuthenticated(err))
	})

	t.Run("unwrap", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := pkgerrors.WrapController("get filter", "Guest-WiFi", cause)
		require.Error(t, err)
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("wrap nil is nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapController("get filter", "Guest-WiFi", nil))
	})
}

func TestMirrorWriteError(t *testing.T) {
	cause := errors.New("disk full")
	err := pkgerrors.NewMirrorWriteError("/var/lib/wifisync/mac_addresses.txt", cause)
	assert.Contains(t, err.Error(), "mirror write failed")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, pkgerrors.IsMirrorWriteError(err))
}

func TestTaskCompletionError(t *testing.T) {
	cause := errors.New("412 precondition failed")
	err := pkgerrors.NewTaskCompletionError("task-9", cause)
	assert.Equal(t, "failed to mark task task-9 complete: 412 precondition failed", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, pkgerrors.IsTaskCompletionError(err))
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("controller.host", "cannot be empty", nil)
	assert.Equal(t, "configuration error in controller.host: cannot be empty", err.Error())
}

func TestInvalidMACError(t *testing.T) {
	err := &pkgerrors.InvalidMACError{Value: "nope", Message: "must have 6 colon-separated groups"}
	assert.Equal(t, `invalid MAC address "nope": must have 6 colon-separated groups`, err.Error())
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
}

func TestWrapIO(t *testing.T) {
	cause := errors.New("permission denied")
	err := pkgerrors.WrapIO("write", "/etc/wifisync.yaml", cause)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IO error during write of /etc/wifisync.yaml")
	assert.True(t, errors.Is(err, cause))
	assert.NoError(t, pkgerrors.WrapIO("write", "x", nil))
}
