// Package pattern classifies filesystem entry names against the junk tables.
package pattern

import (
	"regexp"
	"strings"
)

// Pattern is either a case-insensitive literal or a regular expression.
type Pattern struct {
	literal string
	re      *regexp.Regexp
}

// Literal returns a pattern that matches names equal to s, ignoring case.
func Literal(s string) Pattern {
	return Pattern{literal: s}
}

// Regexp compiles expr into a pattern and panics if it is invalid.
// Intended for static tables; use Compile for user input.
func Regexp(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// Compile compiles expr into a pattern.
func Compile(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{re: re}, nil
}

// IsRegexp reports whether the pattern is a regular expression.
func (p Pattern) IsRegexp() bool { return p.re != nil }

// String returns the literal text or the regexp source.
func (p Pattern) String() string {
	if p.re != nil {
		return p.re.String()
	}
	return p.literal
}

// Match reports whether name matches. Literals compare the full name
// case-insensitively; regexps search for a match anywhere in name.
func (p Pattern) Match(name string) bool {
	if p.re != nil {
		return p.re.MatchString(name)
	}
	return strings.EqualFold(p.literal, name)
}

// Matches reports whether name matches any of patterns, stopping at the
// first hit.
func Matches(name string, patterns []Pattern) bool {
	_, ok := first(name, patterns)
	return ok
}

func first(name string, patterns []Pattern) (Pattern, bool) {
	for _, p := range patterns {
		if p.Match(name) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Ext returns the extension of name: the suffix starting at the final dot.
// A leading dot does not start an extension (".bashrc" has none) and a
// trailing dot yields none.
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}
