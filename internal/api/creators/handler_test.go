package creators

import (
	"errors"
	"net/http"
	"testing"

	"saas-template/internal/api/validation"
	"saas-template/internal/domain/products"
	"saas-template/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCatalog struct {
	ready     bool
	createErr error
	created   []string
	archived  []string
}

func (f *fakeCatalog) Ready() bool { return f.ready }

func (f *fakeCatalog) CreateTierPrice(accountID string, _ *products.Product, tier *products.PricingTier) (string, string, error) {
	if f.createErr != nil {
		return "", "", f.createErr
	}
	f.created = append(f.created, accountID+"/"+tier.BillingInterval)
	return "prod_123", "price_123", nil
}

func (f *fakeCatalog) ArchivePrice(_ string, priceID string) error {
	f.archived = append(f.archived, priceID)
	return nil
}

func router(h *Handler, connected bool) *gin.Engine {
	validation.Register()
	creator := testutil.Creator()
	if connected {
		acct := "acct_1"
		creator.StripeAccountID = &acct
	}
	r := testutil.Router(creator)
	r.GET("/me", h.GetMe)
	r.PATCH("/me", h.UpdateMe)
	r.GET("/products", h.ListProducts)
	r.POST("/products", h.CreateProduct)
	r.GET("/products/:productId", h.GetProduct)
	r.PATCH("/products/:productId", h.UpdateProduct)
	r.DELETE("/products/:productId", h.DeleteProduct)
	r.POST("/products/:productId/rotate-key", h.RotateProductKey)
	r.GET("/products/:productId/tiers", h.ListTiers)
	r.POST("/products/:productId/tiers", h.CreateTier)
	r.PATCH("/products/:productId/tiers/:tierId", h.UpdateTier)
	r.DELETE("/products/:productId/tiers/:tierId", h.DeleteTier)
	return r
}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "creator_id", "name", "product_url", "is_active"}).
		AddRow(testutil.ProductID, testutil.CreatorID, "Widget", "https://widget.test", true)
}

func tierRows(interval string, priceID *string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "product_id", "name", "price_amount", "price_currency", "billing_interval", "stripe_price_id", "is_active"}).
		AddRow(testutil.TierID, testutil.ProductID, "Pro", 1900, "USD", interval, priceID, true)
}

func TestCreateCreator(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "platform_settings"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "creators"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testutil.CreatorID))

	r := testutil.Router(nil)
	r.POST("/creators", NewHandler(nil).Create)

	w := testutil.Do(t, r, http.MethodPost, "/creators", map[string]string{"company_name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, testutil.CreatorID, body["id"])
	assert.Equal(t, testutil.UserID, body["user_id"])
	assert.Equal(t, "trial", body["subscription_status"])
	assert.Equal(t, "saas_creator", body["role"])
	assert.NotNil(t, body["trial_ends_at"])
	assert.NotContains(t, w.Body.String(), "stripe_access_token")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCreatorConflict(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "platform_settings"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "creators"`).WillReturnError(gorm.ErrDuplicatedKey)

	r := testutil.Router(nil)
	r.POST("/creators", NewHandler(nil).Create)

	w := testutil.Do(t, r, http.MethodPost, "/creators", map[string]string{"company_name": "Acme"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Creator profile already exists")
}

func TestCreateCreatorValidation(t *testing.T) {
	r := testutil.Router(nil)
	r.POST("/creators", NewHandler(nil).Create)

	w := testutil.Do(t, r, http.MethodPost, "/creators", map[string]string{"product_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", testutil.DecodeJSON(t, w)["error"])
}

func TestUpdateMe(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectExec(`UPDATE "creators" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodPatch, "/me", map[string]any{"company_name": "Acme 2", "onboarding_completed": true})
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, "Acme 2", body["company_name"])
	assert.Equal(t, true, body["onboarding_completed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductReturnsKeyOnce(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`INSERT INTO "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testutil.ProductID))

	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodPost, "/products", map[string]string{
		"name":        "Widget",
		"product_url": "https://widget.test",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	key, _ := body["api_key"].(string)
	assert.Regexp(t, `^pk_[0-9a-f]{48}$`, key)
	assert.NotContains(t, body, "api_key_hash")
	assert.Equal(t, testutil.CreatorID, body["creator_id"])
	assert.Equal(t, true, body["is_active"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductRequiresURL(t *testing.T) {
	testutil.MockDB(t)
	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodPost, "/products", map[string]string{"name": "Widget"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProductScopedToCreator(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 AND creator_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodGet, "/products/"+testutil.OtherID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Product not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductBadID(t *testing.T) {
	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodGet, "/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProducts(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE creator_id = \$1 ORDER BY created_at DESC`).
		WillReturnRows(productRows())

	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Widget")
}

func TestDeleteProduct(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectExec(`DELETE FROM "products" WHERE id = \$1 AND creator_id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodDelete, "/products/"+testutil.ProductID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mock.ExpectExec(`DELETE FROM "products"`).WillReturnResult(sqlmock.NewResult(0, 1))
	w = testutil.Do(t, r, http.MethodDelete, "/products/"+testutil.ProductID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateProductKey(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectExec(`UPDATE "products" SET "api_key_hash"=\$1,"api_key_hint"=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodPost, "/products/"+testutil.ProductID+"/rotate-key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t, `"api_key":"pk_`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTierSyncsStripeWhenConnected(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectQuery(`INSERT INTO "pricing_tiers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testutil.TierID))
	mock.ExpectExec(`UPDATE "pricing_tiers" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	cat := &fakeCatalog{ready: true}
	r := router(NewHandler(cat), true)
	w := testutil.Do(t, r, http.MethodPost, "/products/"+testutil.ProductID+"/tiers", map[string]any{
		"name":             "Pro",
		"price_amount":     1900,
		"billing_interval": "month",
		"features":         []string{"API access"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, "price_123", body["stripe_price_id"])
	assert.Equal(t, "USD", body["price_currency"])
	assert.Nil(t, body["warning"])
	assert.Equal(t, []string{"acct_1/month"}, cat.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTierWarnsOnStripeFailure(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectQuery(`INSERT INTO "pricing_tiers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testutil.TierID))

	r := router(NewHandler(&fakeCatalog{ready: true, createErr: errors.New("card_declined")}), true)
	w := testutil.Do(t, r, http.MethodPost, "/products/"+testutil.ProductID+"/tiers", map[string]any{
		"name": "Lifetime", "price_amount": 9900, "billing_interval": "one-time",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, stripeSyncWarning, testutil.DecodeJSON(t, w)["warning"])
}

func TestCreateTierWithoutStripe(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectQuery(`INSERT INTO "pricing_tiers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testutil.TierID))

	cat := &fakeCatalog{ready: true}
	r := router(NewHandler(cat), false)
	w := testutil.Do(t, r, http.MethodPost, "/products/"+testutil.ProductID+"/tiers", map[string]any{
		"name": "Free", "price_amount": 0, "billing_interval": "month",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, cat.created)
	assert.Nil(t, testutil.DecodeJSON(t, w)["warning"])
}

func TestCreateTierValidation(t *testing.T) {
	testutil.MockDB(t)
	r := router(NewHandler(nil), false)

	cases := []map[string]any{
		{"name": "Pro", "billing_interval": "month"},
		{"name": "Pro", "price_amount": -1, "billing_interval": "month"},
		{"name": "Pro", "price_amount": 100, "billing_interval": "week"},
		{"name": "Pro", "price_amount": 100, "billing_interval": "month", "price_currency": "dollars"},
	}
	for _, body := range cases {
		w := testutil.Do(t, r, http.MethodPost, "/products/"+testutil.ProductID+"/tiers", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestUpdateTierRepricesStripe(t *testing.T) {
	mock := testutil.MockDB(t)
	oldPrice := "price_old"
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectQuery(`SELECT \* FROM "pricing_tiers" WHERE id = \$1 AND product_id = \$2`).
		WillReturnRows(tierRows("month", &oldPrice))
	mock.ExpectExec(`UPDATE "pricing_tiers" SET "price_amount"=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "pricing_tiers" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	cat := &fakeCatalog{ready: true}
	r := router(NewHandler(cat), true)
	w := testutil.Do(t, r, http.MethodPatch, "/products/"+testutil.ProductID+"/tiers/"+testutil.TierID, map[string]any{
		"price_amount": 2900,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, 2900.0, body["price_amount"])
	assert.Equal(t, "price_123", body["stripe_price_id"])
	assert.Equal(t, []string{"price_old"}, cat.archived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTierSyncFailureDropsArchivedPrice(t *testing.T) {
	mock := testutil.MockDB(t)
	oldPrice := "price_old"
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectQuery(`SELECT \* FROM "pricing_tiers"`).WillReturnRows(tierRows("month", &oldPrice))
	mock.ExpectExec(`UPDATE "pricing_tiers" SET "price_amount"=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "pricing_tiers" SET "stripe_price_id"=\$1,"stripe_product_id"=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cat := &fakeCatalog{ready: true, createErr: errors.New("rate limited")}
	r := router(NewHandler(cat), true)
	w := testutil.Do(t, r, http.MethodPatch, "/products/"+testutil.ProductID+"/tiers/"+testutil.TierID, map[string]any{
		"price_amount": 2900,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, stripeSyncWarning, body["warning"])
	assert.Nil(t, body["stripe_price_id"])
	assert.Equal(t, []string{"price_old"}, cat.archived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTierRenameKeepsPrice(t *testing.T) {
	mock := testutil.MockDB(t)
	oldPrice := "price_old"
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectQuery(`SELECT \* FROM "pricing_tiers"`).WillReturnRows(tierRows("month", &oldPrice))
	mock.ExpectExec(`UPDATE "pricing_tiers" SET "name"=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))

	cat := &fakeCatalog{ready: true}
	r := router(NewHandler(cat), true)
	w := testutil.Do(t, r, http.MethodPatch, "/products/"+testutil.ProductID+"/tiers/"+testutil.TierID, map[string]any{
		"name": "Pro Plus",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cat.archived)
	assert.Empty(t, cat.created)
}

func TestDeleteTierArchivesPrice(t *testing.T) {
	mock := testutil.MockDB(t)
	oldPrice := "price_old"
	mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnRows(productRows())
	mock.ExpectQuery(`SELECT \* FROM "pricing_tiers"`).WillReturnRows(tierRows("year", &oldPrice))
	mock.ExpectExec(`DELETE FROM "pricing_tiers"`).WillReturnResult(sqlmock.NewResult(0, 1))

	cat := &fakeCatalog{ready: true}
	r := router(NewHandler(cat), true)
	w := testutil.Do(t, r, http.MethodDelete, "/products/"+testutil.ProductID+"/tiers/"+testutil.TierID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"price_old"}, cat.archived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMe(t *testing.T) {
	r := router(NewHandler(nil), false)
	w := testutil.Do(t, r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testutil.CreatorID, testutil.DecodeJSON(t, w)["id"])
}
