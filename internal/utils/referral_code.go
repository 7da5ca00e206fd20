package utils

import (
	"fmt"
	"math/rand"

	"github.com/gosimple/slug"
)

const codeCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateReferralCode builds a shareable referral code from a username,
// e.g. ivan-petrov-k3x9. Falls back to a purely random code when the
// username slugifies to nothing.
func GenerateReferralCode(username string) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = codeCharset[rand.Intn(len(codeCharset))]
	}

	base := slug.Make(username)
	if base == "" {
		return fmt.Sprintf("ref-%s", string(suffix))
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s-%s", base, string(suffix))
}
