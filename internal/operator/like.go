package operator

import (
	"regexp"
	"strings"
)

// likeMatch implements SQL LIKE semantics: `%` matches any run of
// characters, `_` matches exactly one, every other character (including
// regexp metacharacters) is literal.
func likeMatch(s, pattern string) bool {
	re, err := regexp.Compile("^" + likeToRegexp(pattern) + "$")
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func likeToRegexp(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}
