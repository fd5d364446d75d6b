package normalizer

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// Normalize chuẩn hóa text thành dạng so khớp: lowercase, bỏ dấu,
// collapse mọi ký tự không phải chữ/số thành một khoảng trắng.
//
// Administrative prefixes ("Tỉnh", "Quận", "Huyện", ...) are kept —
// prefix-insensitive matching belongs to the resolver, not here, so
// exact match and prefix-stripped match stay distinguishable tiers.
// Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	out := strings.ToLower(StripDiacritics(s))
	// Transliterate anything x/text left behind (rare non-Vietnamese input).
	out = strings.ToLower(unidecode.Unidecode(out))
	out = reNonAlnum.ReplaceAllString(out, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(out, " "))
}

// Slug là biến thể của Normalize dùng cho URL slug: hyphen thay vì space.
func Slug(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "-")
}
