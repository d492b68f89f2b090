package campaign

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength is the longest slug stored for campaigns and bridge records.
const MaxSlugLength = 50

var (
	slugDisallowed = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[\s-]+`)
)

// Slugify derives a URL slug from a title: accents are folded to ASCII, the
// result is lowercased, non-word characters are stripped, whitespace runs
// become single hyphens and the slug is cut to MaxSlugLength.
// Slugify("Help Sam") == "help-sam". Slugs are not unique by construction.
func Slugify(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	s := strings.ToLower(strings.TrimSpace(folded))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return truncateSlug(s, MaxSlugLength)
}

// FallbackSlug names a campaign whose title has no ASCII letters or digits,
// such as one written entirely in CJK script.
func FallbackSlug(id uuid.UUID) string {
	return "campaign-" + id.String()[:8]
}

// SlugWithSuffix returns slug with a numeric suffix, shortening the base so the
// result still fits MaxSlugLength. Used to resolve slug collisions on insert.
func SlugWithSuffix(slug string, n int) string {
	suffix := fmt.Sprintf("-%d", n)
	return truncateSlug(slug, MaxSlugLength-len(suffix)) + suffix
}

func truncateSlug(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimRight(s[:limit], "-")
}
