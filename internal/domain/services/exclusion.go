package services

import (
	"regexp"
	"strings"
	"sync"
)

// compiledPatterns caches compiled wildcard patterns keyed by the raw pattern
// text. It is shared by every ExclusionMatcher in the process.
var compiledPatterns sync.Map // map[string]*regexp.Regexp

// ExclusionMatcher decides whether a package is skipped entirely
type ExclusionMatcher struct {
	patterns []string
	matchers []*regexp.Regexp
}

// NewExclusionMatcher compiles wildcard patterns such as "Microsoft.*" or
// "System.?uffers". Blank patterns are ignored.
func NewExclusionMatcher(patterns []string) *ExclusionMatcher {
	m := &ExclusionMatcher{
		patterns: make([]string, 0, len(patterns)),
		matchers: make([]*regexp.Regexp, 0, len(patterns)),
	}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
		m.matchers = append(m.matchers, compileWildcard(p))
	}
	return m
}

// IsExcluded reports whether name matches any pattern. Matching is
// case-insensitive and covers the whole name.
func (m *ExclusionMatcher) IsExcluded(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, re := range m.matchers {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Patterns returns the active patterns in configuration order
func (m *ExclusionMatcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// compileWildcard returns the cached regexp for pattern, compiling it on first use
func compileWildcard(pattern string) *regexp.Regexp {
	if cached, ok := compiledPatterns.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(WildcardToRegexp(pattern))
	actual, _ := compiledPatterns.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp)
}

// WildcardToRegexp translates a wildcard pattern into an anchored,
// case-insensitive regular expression. '*' matches any run of characters and
// '?' exactly one; everything else is literal.
func WildcardToRegexp(pattern string) string {
	quoted := regexp.QuoteMeta(strings.ToValidUTF8(pattern, "\uFFFD"))
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)
	return `(?is)^` + quoted + `$`
}
