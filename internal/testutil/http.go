package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"saas-template/internal/domain/creators"

	"github.com/gin-gonic/gin"
)

const (
	UserID    = "11111111-1111-1111-1111-111111111111"
	CreatorID = "22222222-2222-2222-2222-222222222222"
	ProductID = "33333333-3333-3333-3333-333333333333"
	TierID    = "44444444-4444-4444-4444-444444444444"
	SubID     = "55555555-5555-5555-5555-555555555555"
	OtherID   = "99999999-9999-9999-9999-999999999999"
)

// Creator returns an active creator owned by UserID.
func Creator() *creators.Creator {
	return &creators.Creator{
		ID:                 CreatorID,
		UserID:             UserID,
		CompanyName:        "Acme",
		Role:               creators.RoleCreator,
		SubscriptionStatus: creators.StatusActive,
	}
}

// Router returns a gin engine in test mode whose requests already carry an
// authenticated caller and, when creator is non-nil, a loaded creator.
func Router(creator *creators.Creator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", UserID)
		c.Set("email", "owner@example.com")
		c.Set("access_token", "test-token")
		if creator != nil {
			c.Set("creator", creator)
		}
		c.Next()
	})
	return r
}

// Do performs a request with an optional JSON body.
func Do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			buf, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			reader = bytes.NewReader(buf)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals the recorder body into a map.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}
