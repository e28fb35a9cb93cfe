package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Calendar and grid URLs are not authenticated with sessions; instead every
// link carries an HMAC of its identifying parameters, issued by whoever
// embeds the link (typically the wiki page generator sharing the secret).

// CalendarHash signs one month calendar request.
func CalendarHash(secret string, year, month int, username string) string {
	return sign(secret, fmt.Sprintf("%d-%d-%s", year, month, username))
}

// GridHash signs the vacation grid and detail requests for one user and year.
func GridHash(secret string, year int, username string) string {
	return sign(secret, fmt.Sprintf("%d-%s", year, username))
}

func sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyHash compares a presented hash against the expected one in constant
// time. Both sides are hex strings, so Equal on the raw bytes is fine.
func verifyHash(presented, expected string) bool {
	return hmac.Equal([]byte(presented), []byte(expected))
}
