package placetopay

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Auth is the credential block sent with every request.
type Auth struct {
	Login   string `json:"login"`
	TranKey string `json:"tranKey"`
	Nonce   string `json:"nonce"`
	Seed    string `json:"seed"`
}

// TranKey derives the per-request key: base64(sha256(nonce + seed + secretKey)),
// where nonce is the raw (not base64) value.
func TranKey(rawNonce []byte, seed, secretKey string) string {
	h := sha256.New()
	h.Write(rawNonce)
	h.Write([]byte(seed))
	h.Write([]byte(secretKey))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

type authenticator struct {
	login     string
	secretKey string
	now       func() time.Time
}

func (a authenticator) generate() (Auth, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return Auth{}, fmt.Errorf("generate nonce: %w", err)
	}
	raw := nonce[:]
	seed := a.now().Format(time.RFC3339)

	return Auth{
		Login:   a.login,
		TranKey: TranKey(raw, seed, a.secretKey),
		Nonce:   base64.StdEncoding.EncodeToString(raw),
		Seed:    seed,
	}, nil
}

// Verify checks an Auth block against the shared secret.
func Verify(auth Auth, login, secretKey string) bool {
	if auth.Login != login {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(auth.Nonce)
	if err != nil {
		return false
	}
	expected := TranKey(raw, auth.Seed, secretKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(auth.TranKey)) == 1
}
