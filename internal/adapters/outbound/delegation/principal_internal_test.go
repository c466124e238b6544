package delegation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodePrincipal_Anonymous(t *testing.T) {
	assert.Equal(t, "2vxsx-fae", encodePrincipal([]byte{0x04}))
}

func TestPrincipalFromPublicKey(t *testing.T) {
	t.Parallel()

	a := PrincipalFromPublicKey([]byte("key-a"))
	b := PrincipalFromPublicKey([]byte("key-b"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, PrincipalFromPublicKey([]byte("key-a")))
	assert.Equal(t, strings.ToLower(a), a)

	groups := strings.Split(a, "-")
	// 4 checksum bytes + 28 hash bytes + 1 tag byte = 33 bytes = 53 base32 chars
	assert.Len(t, groups, 11)
	for _, g := range groups[:10] {
		assert.Len(t, g, 5)
	}
	assert.Len(t, groups[10], 3)
}
