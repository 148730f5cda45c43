package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// Fields whose values are not free text. Escaping them would corrupt URLs,
// CSS or credentials.
func skipSanitize(key string) bool {
	switch key {
	case "password", "email", "custom_css", "primary_color", "secondary_color":
		return true
	}
	return strings.HasSuffix(key, "_url") || strings.HasSuffix(key, "_id")
}

// SanitizeAndCleanInputMiddleware strips markup from free-text JSON fields
// using bluemonday's strict policy. Values are stored as plain text, so the
// entities bluemonday emits are decoded again. Bodies on skipPaths pass
// through byte-for-byte (signed payloads).
func SanitizeAndCleanInputMiddleware(skipPaths ...string) gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.ContentType(), "application/json") {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body map[string]interface{}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		for k, v := range body {
			if skipSanitize(k) {
				continue
			}
			body[k] = sanitizeValue(policy, v)
		}

		newBody, _ := json.Marshal(body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitizeValue(policy *bluemonday.Policy, v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return stripMarkup(policy, val)
	case []interface{}:
		for i, item := range val {
			val[i] = sanitizeValue(policy, item)
		}
		return val
	default:
		return v
	}
}

// maxStripPasses bounds stripMarkup on pathological nested entities.
const maxStripPasses = 4

// stripMarkup removes tags and returns unescaped text. Decoding can surface
// markup that was entity-encoded in the input, so it repeats until stable.
func stripMarkup(policy *bluemonday.Policy, s string) string {
	for i := 0; i < maxStripPasses; i++ {
		out := html.UnescapeString(policy.Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}
	return policy.Sanitize(s)
}
