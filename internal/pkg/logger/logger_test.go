package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := SetOutput(buf)
	t.Cleanup(func() { SetOutput(prev) })
	return buf
}

func TestInfo_RedactsContactFields(t *testing.T) {
	buf := captureLog(t)

	Info("submission stored", "email", "sarah.chen@example.com", "phone", "+1 (555) 010-4477", "note", "cc ops@kyozo.com")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "submission stored", entry["msg"])
	assert.Equal(t, "sa***@example.com", entry["email"])
	assert.Equal(t, "***77", entry["phone"])
	assert.Equal(t, "cc op***@kyozo.com", entry["note"])
}

func TestDebug_FilteredByLevel(t *testing.T) {
	buf := captureLog(t)
	SetLevel(INFO)

	Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("whatever"))
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
}
