package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var passwordResetTemplate = template.Must(template.New("password-reset").Parse(`
  <h1>Password Reset Request</h1>
  <p>Click the link below to reset your password:</p>
  <a href="{{.ResetLink}}">Reset Password</a>
`))

type passwordResetData struct {
	ResetLink string
}

// RenderPasswordReset renders the password reset body. html/template escapes
// the link so a crafted URL cannot break out of the attribute.
func RenderPasswordReset(resetLink string) (string, error) {
	var buf bytes.Buffer
	if err := passwordResetTemplate.Execute(&buf, passwordResetData{ResetLink: resetLink}); err != nil {
		return "", fmt.Errorf("render password reset: %w", err)
	}
	return buf.String(), nil
}
