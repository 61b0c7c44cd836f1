package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// ShortIDLength is the fixed width of a short id.
	ShortIDLength = 8
	// ShortIDRandomBits is the entropy drawn per id. 47 bits fit into 8
	// base62 digits and keep the collision probability negligible for
	// realistic table sizes.
	ShortIDRandomBits = 47
)

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	shortIDRegex = regexp.MustCompile(`^[0-9a-zA-Z]{8}$`)

	shortIDMax = new(big.Int).Lsh(big.NewInt(1), ShortIDRandomBits)
)

// ShortLink maps a minted short id back to the redirect parameters it was
// created for. Rows are written once and never mutated; the id is unique for
// the lifetime of the system.
type ShortLink struct {
	ID          string
	OfferSlug   string
	Country     Country
	Fingerprint string
	CreatedAt   time.Time
}

// NewShortID draws ShortIDRandomBits of entropy and encodes it as a
// fixed-width base62 string. Uniqueness is not guaranteed here; callers must
// claim the id against the store and redraw on collision.
func NewShortID() (string, error) {
	n, err := rand.Int(rand.Reader, shortIDMax)
	if err != nil {
		return "", err
	}
	return encodeBase62(n.Uint64()), nil
}

// ValidShortID reports whether s has the shape of a minted short id.
func ValidShortID(s string) bool {
	return validation.Validate(s,
		validation.Required,
		validation.Match(shortIDRegex),
	) == nil
}

// encodeBase62 renders n in base62, left-padded with the zero digit to
// ShortIDLength characters.
func encodeBase62(n uint64) string {
	var buf [ShortIDLength]byte
	for i := range buf {
		buf[i] = base62Alphabet[0]
	}
	for i := ShortIDLength - 1; n > 0 && i >= 0; i-- {
		buf[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(buf[:])
}
