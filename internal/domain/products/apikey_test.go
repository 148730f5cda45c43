package products

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewAPIKey(t *testing.T) {
	apiKeyCost = bcrypt.MinCost
	t.Cleanup(func() { apiKeyCost = bcrypt.DefaultCost })

	key, hash, hint, err := NewAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "pk_"))
	assert.Len(t, key, 3+48)
	assert.True(t, strings.HasPrefix(hint, key[:7]))
	assert.True(t, strings.HasSuffix(hint, key[len(key)-4:]))
	assert.NotContains(t, hash, key)

	p := Product{APIKeyHash: &hash}
	assert.True(t, p.VerifyAPIKey(key))
	assert.False(t, p.VerifyAPIKey(key+"x"))
	assert.False(t, (&Product{}).VerifyAPIKey(key))

	other, _, _, err := NewAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
