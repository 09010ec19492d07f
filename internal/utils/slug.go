package utils

import (
	"strings"

	"github.com/lithammer/shortuuid/v4"
)

// GenerateSlug builds a URL-safe slug from a post title. The title is
// lowercased, runs of non-alphanumeric characters collapse into single
// hyphens, and a short random token is appended so that two posts with the
// same title never collide. A slug is generated once at creation time and
// never regenerated afterwards.
func GenerateSlug(title string) string {
	base := slugify(title)
	token := strings.ToLower(shortuuid.New())
	if base == "" {
		return token
	}
	return base + "-" + token
}

func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
