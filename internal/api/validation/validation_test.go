package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, register(v))

	type input struct {
		Interval string  `validate:"billing_interval"`
		Status   *string `validate:"omitempty,creator_status"`
		Sub      string  `validate:"omitempty,subscriber_status"`
		Currency string  `validate:"currency"`
	}

	active := "active"
	assert.NoError(t, v.Struct(input{Interval: "one-time", Status: &active, Sub: "trialing", Currency: "usd"}))

	bogus := "trialing"
	assert.Error(t, v.Struct(input{Interval: "week", Currency: "USD"}))
	assert.Error(t, v.Struct(input{Interval: "month", Status: &bogus, Currency: "USD"}))
	assert.Error(t, v.Struct(input{Interval: "month", Sub: "trial", Currency: "USD"}))
	assert.Error(t, v.Struct(input{Interval: "month", Currency: "US"}))
	assert.Error(t, v.Struct(input{Interval: "month", Currency: "XYZ"}), "not an ISO 4217 code")
	assert.NoError(t, v.Struct(input{Interval: "month", Currency: "jpy"}))
}

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}
