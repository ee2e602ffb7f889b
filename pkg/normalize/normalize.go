// Package normalize folds account, product, and client names into a
// comparison key so "T-Rex", "t rex", and "T-réx" all match the same
// inventory row.
package normalize

import (
	"strings"

	"github.com/gosimple/unidecode"
)

// Key transliterates to ASCII, lower-cases, and strips everything that is
// not a letter or digit.
func Key(value string) string {
	folded := strings.ToLower(unidecode.Unidecode(value))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether the candidate contains the query after both are
// reduced to comparison keys. An empty query matches everything.
func Matches(candidate, query string) bool {
	q := Key(query)
	if q == "" {
		return true
	}
	return strings.Contains(Key(candidate), q)
}
