package tracker

import (
	"fmt"
	"regexp"
)

// IgnoreList evaluates paths against an ordered list of regular expressions.
// A path is ignored if any pattern matches its string form. The list is
// mutable at configuration time and read-only during reconciliation.
type IgnoreList struct {
	exprs    []string
	patterns []*regexp.Regexp
}

// NewIgnoreList compiles the given expressions into an ignore list.
func NewIgnoreList(exprs []string) (*IgnoreList, error) {
	l := &IgnoreList{}
	for _, expr := range exprs {
		if err := l.Append(expr); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Append compiles expr and adds it to the end of the list.
func (l *IgnoreList) Append(expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid ignore pattern %q: %w", expr, err)
	}
	l.exprs = append(l.exprs, expr)
	l.patterns = append(l.patterns, re)
	return nil
}

// Ignored reports whether any pattern matches the path. Any string is valid
// input, including paths that do not exist.
func (l *IgnoreList) Ignored(path string) bool {
	for _, re := range l.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Exprs returns the pattern expressions in evaluation order.
func (l *IgnoreList) Exprs() []string {
	exprs := make([]string, len(l.exprs))
	copy(exprs, l.exprs)
	return exprs
}
