package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// validateCredential checks a bearer token locally before dialing. The
// client holds no signing secret, so the token is decoded without
// signature verification; only structure and the exp claim are checked
// here. The server verifies the signature on upgrade.
func validateCredential(token string, now time.Time) error {
	if token == "" {
		return ErrCredentialMissing
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialMalformed, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: bad exp claim", ErrCredentialMalformed)
	}
	if exp != nil && exp.Before(now) {
		return ErrCredentialExpired
	}
	return nil
}
