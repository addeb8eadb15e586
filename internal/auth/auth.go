package auth

import (
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"clinic-api/internal/model"
)

const (
	// Cost is the bcrypt work factor.
	Cost = 12

	MinPasswordLen = 6

	// bcrypt only reads this many bytes of input.
	MaxPasswordBytes = 72
)

// ValidatePassword enforces the length policy. The minimum counts
// characters, the maximum counts bytes.
func ValidatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return &model.ValidationError{
			Msg: "password must be at least " + strconv.Itoa(MinPasswordLen) + " characters",
			Err: model.ErrWeakInput,
		}
	}
	if len(pw) > MaxPasswordBytes {
		return &model.ValidationError{
			Msg: "password must be at most " + strconv.Itoa(MaxPasswordBytes) + " bytes",
			Err: model.ErrWeakInput,
		}
	}
	return nil
}

func HashPassword(pw string) (string, error) {
	if err := ValidatePassword(pw); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), Cost)
	return string(b), err
}

// CheckPassword reports whether pw matches hash. Malformed hashes simply
// don't match.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// burnCompare spends the same bcrypt time as a real check so unknown emails
// can't be told apart from wrong passwords by latency.
func burnCompare(pw string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), Cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
}

// NewSessionToken returns an opaque token: a random v4 UUID (122 bits)
// suffixed with the issue time in base36.
func NewSessionToken(now time.Time) string {
	return uuid.NewString() + "-" + strconv.FormatInt(now.UnixMilli(), 36)
}
