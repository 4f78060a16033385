package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

func newTestLogger(buf *bytes.Buffer) *RollbarLogger {
	logger := NewRollbarLogger(buf, "TEST", &core.Config{Env: "TEST"})
	logger.Enable(false)
	return logger
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRollbarLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	usr := user.User{ID: 7, Username: "bob"}
	logger.Error("request failed", errors.New("boom"), map[string]interface{}{"path": "/v1/levels"}, usr)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "request failed", entry["message"])
	assert.Equal(t, "TEST", entry["component"])
	assert.Equal(t, "/v1/levels", entry["path"])
	assert.Equal(t, float64(7), entry["user_id"])
	assert.Equal(t, "bob", entry["username"])
	assert.Contains(t, entry["error"], "boom")
}

func TestRollbarLogger_levels(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug entries are dropped outside debug mode")

	logger.Warn("careful")
	assert.Equal(t, "warn", lastEntry(t, &buf)["level"])

	var code int
	logger.exit = func(c int) { code = c }
	logger.Fatal("dying")
	assert.Equal(t, "fatal", lastEntry(t, &buf)["level"])
	assert.Equal(t, 1, code)
}
