package student

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"
)

// NowFunc returns the current time; mockable in tests.
var NowFunc = time.Now

const resetTokenBytes = 32

// makeResetToken generates a cryptographically random hex-encoded
// password-reset token.
func makeResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generating reset token")
	}
	return hex.EncodeToString(buf), nil
}
