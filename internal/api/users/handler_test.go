package users

import (
	"context"
	"net/http"
	"testing"
	"time"

	"saas-template/internal/domain/creators"
	"saas-template/internal/infra/authprovider"
	"saas-template/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	user    *authprovider.User
	err     error
	gotMail string
}

func (f *fakeProvider) GetUser(context.Context, string) (*authprovider.User, error) {
	return f.user, f.err
}

func (f *fakeProvider) UpdateEmail(_ context.Context, _, email string) (*authprovider.User, error) {
	f.gotMail = email
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	u.Email = email
	return &u, nil
}

func TestGetProfileWithCreator(t *testing.T) {
	mock := testutil.MockDB(t)
	trialEnd := time.Now().Add(36 * time.Hour)
	mock.ExpectQuery(`SELECT \* FROM "creators" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "company_name", "role", "subscription_status", "trial_ends_at"}).
			AddRow(testutil.CreatorID, testutil.UserID, "Acme", creators.RoleCreator, creators.StatusTrial, trialEnd))

	h := NewHandler(&fakeProvider{user: &authprovider.User{ID: testutil.UserID, Email: "owner@example.com"}})
	r := testutil.Router(nil)
	r.GET("/profile", h.GetProfile)

	w := testutil.Do(t, r, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, "owner@example.com", body["user"].(map[string]any)["email"])
	assert.Equal(t, "Acme", body["creator"].(map[string]any)["company_name"])
	access := body["access"].(map[string]any)
	assert.Equal(t, "trial", access["state"])
	assert.Equal(t, 2.0, access["trial_days_left"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileWithoutCreator(t *testing.T) {
	mock := testutil.MockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "creators"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := NewHandler(&fakeProvider{user: &authprovider.User{ID: testutil.UserID, Email: "owner@example.com"}})
	r := testutil.Router(nil)
	r.GET("/profile", h.GetProfile)

	w := testutil.Do(t, r, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeJSON(t, w)
	assert.Nil(t, body["creator"])
	assert.Nil(t, body["access"])
}

func TestGetProfileRejectedToken(t *testing.T) {
	h := NewHandler(&fakeProvider{err: &authprovider.Error{Status: 401, Message: "invalid JWT"}})
	r := testutil.Router(nil)
	r.GET("/profile", h.GetProfile)

	assert.Equal(t, http.StatusUnauthorized, testutil.Do(t, r, http.MethodGet, "/profile", nil).Code)
}

func TestUpdateProfile(t *testing.T) {
	p := &fakeProvider{user: &authprovider.User{ID: testutil.UserID, Email: "old@example.com"}}
	r := testutil.Router(nil)
	r.PUT("/profile", NewHandler(p).UpdateProfile)

	w := testutil.Do(t, r, http.MethodPut, "/profile", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.Do(t, r, http.MethodPut, "/profile", map[string]string{"email": "new@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", p.gotMail)
	assert.Contains(t, w.Body.String(), "new@example.com")
}

func TestTrialDaysLeft(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, trialDaysLeft(now, now.Add(-time.Hour)))
	assert.Equal(t, 1, trialDaysLeft(now, now.Add(time.Hour)))
	assert.Equal(t, 14, trialDaysLeft(now, now.AddDate(0, 0, 14)))
}
