package placetopay_test

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay"
	"github.com/stretchr/testify/assert"
)

func TestTranKey(t *testing.T) {
	nonce := []byte("0123456789abcdef")
	seed := "2026-10-16T10:04:05-05:00"

	sum := sha256.Sum256([]byte("0123456789abcdef" + seed + "secret"))
	expected := base64.StdEncoding.EncodeToString(sum[:])

	assert.Equal(t, expected, placetopay.TranKey(nonce, seed, "secret"))
	assert.NotEqual(t, expected, placetopay.TranKey(nonce, seed, "other"))
}

func TestVerify(t *testing.T) {
	nonce := []byte("0123456789abcdef")
	seed := "2026-10-16T10:04:05-05:00"
	auth := placetopay.Auth{
		Login:   "login",
		TranKey: placetopay.TranKey(nonce, seed, "secret"),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Seed:    seed,
	}

	assert.True(t, placetopay.Verify(auth, "login", "secret"))
	assert.False(t, placetopay.Verify(auth, "someone-else", "secret"))
	assert.False(t, placetopay.Verify(auth, "login", "wrong"))

	truncated := auth
	truncated.TranKey = auth.TranKey[:len(auth.TranKey)-1]
	assert.False(t, placetopay.Verify(truncated, "login", "secret"))

	auth.TranKey = ""
	assert.False(t, placetopay.Verify(auth, "login", "secret"))

	auth.TranKey = placetopay.TranKey(nonce, seed, "secret")
	auth.Nonce = "%%%"
	assert.False(t, placetopay.Verify(auth, "login", "secret"))
}
