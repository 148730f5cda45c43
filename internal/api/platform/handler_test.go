package platform

import (
	"net/http"
	"testing"

	"saas-template/internal/api/validation"
	"saas-template/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func router() *gin.Engine {
	validation.Register()
	h := NewHandler()
	r := testutil.Router(testutil.Creator())
	r.GET("/settings", h.GetSettings)
	r.PATCH("/settings", h.UpdateSettings)
	r.GET("/creators", h.ListCreators)
	r.GET("/creators/:creatorId", h.GetCreator)
	r.PATCH("/creators/:creatorId", h.UpdateCreator)
	r.GET("/stats", h.GetStats)
	return r
}

func TestGetSettingsDefaultsWhenUnseeded(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "platform_settings" WHERE "platform_settings"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := testutil.Do(t, router(), http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, 2900.0, body["platform_subscription_price"])
	assert.Equal(t, "USD", body["platform_subscription_currency"])
	assert.Equal(t, "month", body["platform_billing_interval"])
	assert.Equal(t, 14.0, body["platform_trial_days"])
}

func TestUpdateSettings(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "platform_settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "platform_subscription_price", "platform_subscription_currency", "platform_billing_interval", "platform_trial_days"}).
			AddRow(1, 2900, "USD", "month", 14))
	mock.ExpectExec(`UPDATE "platform_settings" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	w := testutil.Do(t, router(), http.MethodPatch, "/settings", map[string]any{
		"platform_subscription_price": 4900,
		"platform_trial_days":         0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, 4900.0, body["platform_subscription_price"])
	assert.Equal(t, 0.0, body["platform_trial_days"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettingsValidation(t *testing.T) {
	r := router()
	for _, body := range []map[string]any{
		{"platform_subscription_price": -5},
		{"platform_billing_interval": "week"},
		{"platform_trial_days": 400},
		{"platform_subscription_currency": "EURO"},
	} {
		w := testutil.Do(t, r, http.MethodPatch, "/settings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestListCreatorsPagination(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "creators" WHERE subscription_status = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery(`SELECT \* FROM "creators" WHERE subscription_status = \$1 ORDER BY created_at DESC LIMIT .+ OFFSET`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "stripe_access_token"}).
			AddRow(testutil.CreatorID, "Acme", "sk_secret"))

	w := testutil.Do(t, router(), http.MethodGet, "/creators?page=2&limit=10&status=trial", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	p := body["pagination"].(map[string]any)
	assert.Equal(t, 2.0, p["page"])
	assert.Equal(t, 25.0, p["total"])
	assert.Equal(t, 3.0, p["totalPages"])
	assert.NotContains(t, w.Body.String(), "sk_secret")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCreatorsBadStatus(t *testing.T) {
	w := testutil.Do(t, router(), http.MethodGet, "/creators?status=trialing", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCreatorRedactsTokens(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "creators" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_name", "stripe_account_id", "stripe_access_token", "stripe_refresh_token"}).
			AddRow(testutil.CreatorID, "Acme", "acct_1", "sk_secret", "rt_secret"))

	w := testutil.Do(t, router(), http.MethodGet, "/creators/"+testutil.CreatorID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, "***", body["stripe_access_token"])
	assert.Equal(t, "***", body["stripe_refresh_token"])
	assert.Equal(t, "acct_1", body["stripe_account_id"])
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestUpdateCreatorStatus(t *testing.T) {
	mock := testutil.MockDB(t)
	r := router()

	w := testutil.Do(t, r, http.MethodPatch, "/creators/"+testutil.CreatorID, map[string]string{"subscription_status": "trialing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mock.ExpectQuery(`SELECT \* FROM "creators"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscription_status"}).AddRow(testutil.CreatorID, "trial"))
	mock.ExpectExec(`UPDATE "creators" SET "subscription_status"=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))

	w = testutil.Do(t, r, http.MethodPatch, "/creators/"+testutil.CreatorID, map[string]string{"subscription_status": "active"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "active", testutil.DecodeJSON(t, w)["subscription_status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStats(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total_creators`).
		WillReturnRows(sqlmock.NewRows([]string{"total_creators", "active_creators", "trial_creators"}).AddRow(3, 1, 2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "subscribers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(150))
	mock.ExpectQuery(`SELECT pricing_tiers.billing_interval, pricing_tiers.price_amount, COUNT\(\*\) AS subscribers FROM "subscribers" JOIN pricing_tiers`).
		WillReturnRows(sqlmock.NewRows([]string{"billing_interval", "price_amount", "subscribers"}).
			AddRow("month", 1000, 3).
			AddRow("year", 12000, 2).
			AddRow("one-time", 5000, 4))

	w := testutil.Do(t, router(), http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, 3.0, body["total_creators"])
	assert.Equal(t, 1.0, body["active_creators"])
	assert.Equal(t, 2.0, body["trial_creators"])
	assert.Equal(t, 5.0, body["total_products"])
	assert.Equal(t, 150.0, body["total_subscribers"])
	assert.Equal(t, 5000.0, body["monthly_revenue"])
	assert.Equal(t, "$50.00", body["monthly_revenue_display"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlyRevenue(t *testing.T) {
	assert.Equal(t, int64(0), monthlyRevenue(nil))
	assert.Equal(t, int64(2*999+100), monthlyRevenue([]revenueBucket{
		{BillingInterval: "month", PriceAmount: 999, Subscribers: 2},
		{BillingInterval: "year", PriceAmount: 1200, Subscribers: 1},
	}))
	// 7 yearly subscribers at 1000 is 7000/12 = 583, not 7*(1000/12) = 581
	assert.Equal(t, int64(583), monthlyRevenue([]revenueBucket{
		{BillingInterval: "year", PriceAmount: 1000, Subscribers: 7},
	}))
	assert.Equal(t, int64(0), monthlyRevenue([]revenueBucket{
		{BillingInterval: "one-time", PriceAmount: 5000, Subscribers: 3},
	}))
}
