package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"saas-template/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func productKeyEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/products/:productId/usage", RequireProductKey(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"product_id": CurrentProduct(c).ID})
	})
	return r
}

func postWithKey(r http.Handler, productID, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/products/"+productID+"/usage", nil)
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireProductKey(t *testing.T) {
	const key = "pk_0123456789abcdef"
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "creator_id", "name", "api_key_hash", "is_active"}).
			AddRow(testutil.ProductID, testutil.CreatorID, "Widget", string(hash), true)
	}

	t.Run("valid key", func(t *testing.T) {
		mock := testutil.MockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND is_active = \$2`).WillReturnRows(rows())

		w := postWithKey(productKeyEngine(), testutil.ProductID, key)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), testutil.ProductID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong key", func(t *testing.T) {
		mock := testutil.MockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(rows())

		w := postWithKey(productKeyEngine(), testutil.ProductID, key+"x")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid API key", testutil.DecodeJSON(t, w)["error"])
	})

	t.Run("unknown product", func(t *testing.T) {
		mock := testutil.MockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := postWithKey(productKeyEngine(), testutil.ProductID, key)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing key", func(t *testing.T) {
		w := postWithKey(productKeyEngine(), testutil.ProductID, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Missing API key", testutil.DecodeJSON(t, w)["error"])
	})

	t.Run("malformed product id", func(t *testing.T) {
		w := postWithKey(productKeyEngine(), "nope", key)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
