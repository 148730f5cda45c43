package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPasswordResetEscapes(t *testing.T) {
	body, err := RenderPasswordReset(`https://x.test/reset?a=1&b="2"`)
	require.NoError(t, err)
	assert.Contains(t, body, "Password Reset Request")
	assert.Contains(t, body, `href="https://x.test/reset?a=1&amp;b=%222%22"`)
}

func TestDisabledServiceLogsInsteadOfSending(t *testing.T) {
	var buf bytes.Buffer
	s := NewService("", "noreply@example.com", zerolog.New(&buf))
	assert.False(t, s.Enabled())

	err := s.SendPasswordReset(context.Background(), "user@example.com", "https://auth.example.com/verify?token=abc")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "email disabled")
	assert.Contains(t, buf.String(), "user@example.com")
}

func TestSendPasswordResetValidates(t *testing.T) {
	s := NewService("", "noreply@example.com", zerolog.Nop())

	assert.Error(t, s.SendPasswordReset(context.Background(), "not-an-email", "https://ok"))
	assert.Error(t, s.SendPasswordReset(context.Background(), "user@example.com", "javascript:alert(1)"))
}
