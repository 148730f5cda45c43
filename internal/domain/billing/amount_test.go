package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStripeAmount(t *testing.T) {
	assert.Equal(t, 29.0, FromStripeAmount(2900, "usd"))
	assert.Equal(t, 19.99, FromStripeAmount(1999, "EUR"))
	assert.Equal(t, 0.0, FromStripeAmount(0, ""))
	assert.Equal(t, 500.0, FromStripeAmount(500, "jpy"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$29.00", FormatAmount(2900, "usd"))
	assert.Equal(t, "€9.99", FormatAmount(999, "EUR"))
	assert.Equal(t, "-$0.05", FormatAmount(-5, "USD"))
	assert.Equal(t, "12.50 CHF", FormatAmount(1250, "chf"))
	assert.Equal(t, "$1.00", FormatAmount(100, ""))
}

func TestFormatAmountZeroDecimal(t *testing.T) {
	assert.Equal(t, "¥500", FormatAmount(500, "jpy"))
	assert.Equal(t, "12000 KRW", FormatAmount(12000, "KRW"))
	assert.True(t, ZeroDecimal("vnd"))
	assert.False(t, ZeroDecimal("usd"))
}
