package respond

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func run(t *testing.T, fn func(c *gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	fn(c)
	return w
}

func TestDBErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{gorm.ErrDuplicatedKey, http.StatusConflict},
		{gorm.ErrForeignKeyViolated, http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := run(t, func(c *gin.Context) { DBError(c, tc.err, "Product") })
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestInternalHidesDetails(t *testing.T) {
	w := run(t, func(c *gin.Context) {
		Internal(c, errors.New("pq: password authentication failed"), "boom")
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), internalMessage)
}

func TestParamID(t *testing.T) {
	var got string
	var ok bool
	w := run(t, func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
		got, ok = ParamID(c, "id", "product")
	})
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid product id")

	run(t, func(c *gin.Context) {
		c.Params = gin.Params{{Key: "id", Value: "33333333-3333-3333-3333-333333333333"}}
		got, ok = ParamID(c, "id", "product")
	})
	assert.True(t, ok)
	assert.Equal(t, "33333333-3333-3333-3333-333333333333", got)
}
