package scenario

import (
	"fmt"
	"regexp"
)

// MatchKind selects how a Matcher compares strings.
type MatchKind int

const (
	// MatchExact compares for string equality.
	MatchExact MatchKind = iota
	// MatchPattern searches for a regular expression anywhere in the input.
	MatchPattern
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchPattern:
		return "pattern"
	default:
		return fmt.Sprintf("MatchKind(%d)", int(k))
	}
}

// Matcher is the expected value of an assertion.
type Matcher struct {
	Kind  MatchKind
	Value string

	re *regexp.Regexp
}

// Exact returns a matcher for the literal string s.
func Exact(s string) Matcher {
	return Matcher{Kind: MatchExact, Value: s}
}

// Pattern compiles expr into a pattern matcher.
func Pattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Matcher{}, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return Matcher{Kind: MatchPattern, Value: expr, re: re}, nil
}

// MustPattern is like Pattern but panics on an invalid expression.
func MustPattern(expr string) Matcher {
	m, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether actual satisfies the matcher.
func (m Matcher) Match(actual string) bool {
	switch m.Kind {
	case MatchExact:
		return actual == m.Value
	case MatchPattern:
		re := m.re
		if re == nil {
			var err error
			if re, err = regexp.Compile(m.Value); err != nil {
				return false
			}
		}
		return re.MatchString(actual)
	default:
		return false
	}
}

func (m Matcher) String() string {
	if m.Kind == MatchPattern {
		return fmt.Sprintf("matches /%s/", m.Value)
	}
	return fmt.Sprintf("equals %q", m.Value)
}
