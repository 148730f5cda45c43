package billing

import (
	"fmt"
	"strings"
)

// Stripe's zero-decimal currencies: amounts are already in major units.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true,
	"KMF": true, "KRW": true, "MGA": true, "PYG": true, "RWF": true,
	"UGX": true, "VND": true, "VUV": true, "XAF": true, "XOF": true,
	"XPF": true,
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "USD"
	}
	return currency
}

// ZeroDecimal reports whether currency has no minor unit.
func ZeroDecimal(currency string) bool {
	return zeroDecimal[normalizeCurrency(currency)]
}

// FromStripeAmount converts a Stripe amount to major units.
func FromStripeAmount(amount int64, currency string) float64 {
	if ZeroDecimal(currency) {
		return float64(amount)
	}
	return float64(amount) / 100.0
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// FormatAmount renders a Stripe amount for humans, e.g. 2900 USD -> "$29.00"
// and 500 JPY -> "¥500".
func FormatAmount(amount int64, currency string) string {
	currency = normalizeCurrency(currency)

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	var value string
	if zeroDecimal[currency] {
		value = fmt.Sprintf("%d", amount)
	} else {
		value = fmt.Sprintf("%d.%02d", amount/100, amount%100)
	}

	if sym, ok := currencySymbols[currency]; ok {
		return sign + sym + value
	}
	return sign + value + " " + currency
}
