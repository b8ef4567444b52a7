package models

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// Slugify reduces s to lowercase ASCII letters, digits, underscores and
// single hyphens. Characters without an ASCII decomposition are dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(decomposed) {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}
	return strings.Trim(b.String(), "-_")
}

// baseSlug derives the slug stem for a catalog name, falling back for names
// with no ASCII content.
func baseSlug(name, fallback string) string {
	if slug := Slugify(name); slug != "" {
		return slug
	}
	trimmed := strings.TrimSpace(name)
	if IsOtherName(trimmed) || strings.EqualFold(trimmed, "other") {
		return "other"
	}
	if trimmed != "" {
		return strings.Join(strings.Fields(strings.ToLower(trimmed)), "-")
	}
	return fallback
}

// uniqueSlug appends -2, -3, ... to base until no other row of model in scope
// uses it.
func uniqueSlug(tx *gorm.DB, model interface{}, base string, selfID uint, scope func(*gorm.DB) *gorm.DB) (string, error) {
	db := tx.Session(&gorm.Session{NewDB: true})
	candidate := base
	for i := 2; ; i++ {
		var count int64
		q := db.Model(model).Where("slug = ?", candidate)
		if selfID != 0 {
			q = q.Where("id <> ?", selfID)
		}
		if scope != nil {
			q = scope(q)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
