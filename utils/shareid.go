package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	shareIDRandLen = 10
)

// NewShareID returns a random base-36 fragment followed by the base-36
// millisecond timestamp. Uniqueness is enforced by the store, not here.
func NewShareID(now time.Time) (string, error) {
	var b strings.Builder
	radix := big.NewInt(int64(len(base36Alphabet)))
	for range shareIDRandLen {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36Alphabet[n.Int64()])
	}
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	return b.String(), nil
}
