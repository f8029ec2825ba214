package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

func hashHex(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// hasLeadingZeros reports whether hash starts with at least n '0' characters.
func hasLeadingZeros(hash string, n int) bool {
	if n > len(hash) {
		return false
	}
	return strings.HasPrefix(hash, strings.Repeat("0", n))
}

func formatNonce(nonce uint64) string {
	return strconv.FormatUint(nonce, 10)
}
