package token

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired confirmation token")

// Claims bind a confirmation link to one payment reference. The payer's
// device only ever sees the signed token, so a forged reference ID cannot
// flip someone else's payment.
type Claims struct {
	RefID  string `json:"ref_id"`
	Amount int    `json:"amount"`
	jwt.RegisteredClaims
}

// GetSecretKey returns the signing secret from the environment or a default.
func GetSecretKey() []byte {
	secret := os.Getenv("KOPI_TOKEN_SECRET")
	if secret == "" {
		secret = "kopi-machine-dev-secret-change-me"
	}
	return []byte(secret)
}

// Generate signs a confirmation token for a payment reference. The token
// outlives the QRIS window slightly so a payer who scanned in time still
// reaches the failure page instead of a broken link.
func Generate(refID string, amount int, ttl time.Duration) (string, error) {
	claims := &Claims{
		RefID:  refID,
		Amount: amount,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl + time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "go-kopi-machine",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(GetSecretKey())
}

// Validate parses and verifies a confirmation token.
func Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return GetSecretKey(), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims, ok := parsed.Claims.(*Claims); ok && parsed.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
