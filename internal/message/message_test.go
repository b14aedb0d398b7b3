package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipmunk/internal/message"
)

func TestNewCallArgs(t *testing.T) {
	m, err := message.NewCall("templates", "syncTemplates", map[string]string{"paste_template_0": "Hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	raw, err := m.Encode()
	require.NoError(t, err)
	back, err := message.Decode(raw)
	require.NoError(t, err)

	args, err := back.DecodeArgs()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"paste_template_0": "Hello"}, args)
}

func TestDecodeArgsAbsentAndNull(t *testing.T) {
	m, err := message.NewCall("clipboard", "simulatePaste", nil)
	require.NoError(t, err)
	raw, err := m.Encode()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"args"`)

	args, err := m.DecodeArgs()
	require.NoError(t, err)
	assert.Nil(t, args)

	back, err := message.Decode([]byte(`{"type":"CALL","args":null}`))
	require.NoError(t, err)
	args, err = back.DecodeArgs()
	require.NoError(t, err)
	assert.Nil(t, args)
}

func TestFailKeepsID(t *testing.T) {
	req := message.NewInvoke("Clipmunk - Paste 1")
	r := req.Fail(message.CodeServiceError, "Template 1 is empty", nil)
	assert.Equal(t, req.ID, r.ID)
	assert.Equal(t, message.TypeError, r.Type)
	assert.Equal(t, "Template 1 is empty", r.Error.Message)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := message.Decode([]byte("{"))
	assert.Error(t, err)
}
