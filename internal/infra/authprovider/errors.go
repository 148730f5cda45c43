package authprovider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrAdminUnavailable is returned by admin calls when no service role key is configured.
var ErrAdminUnavailable = errors.New("auth provider admin API not configured")

// Error is a non-2xx answer from the auth provider. Message is the provider's
// human readable text, which callers match on.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth provider %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth provider %d: %s", e.Status, e.Message)
}

// Contains reports whether the lower-cased message contains any of subs.
func (e *Error) Contains(subs ...string) bool {
	msg := strings.ToLower(e.Message)
	for _, s := range subs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// AsError unwraps err to a provider *Error.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// parseError pulls a message out of the several error shapes GoTrue has used
// across versions.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}
	if gjson.ValidBytes(body) {
		res := gjson.GetManyBytes(body, "msg", "error_description", "message", "error")
		for _, r := range res {
			if r.Type == gjson.String && r.String() != "" {
				e.Message = r.String()
				break
			}
		}
		e.Code = gjson.GetBytes(body, "error_code").String()
		if e.Code == "" {
			if r := gjson.GetBytes(body, "error"); r.Type == gjson.String && r.String() != e.Message {
				e.Code = r.String()
			}
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("status %d", status)
	}
	return e
}
