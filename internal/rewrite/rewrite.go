// Package rewrite maps request targets onto filesystem paths.
package rewrite

import "strings"

// Rewriter substitutes a leading URL prefix with a filesystem base path.
type Rewriter struct {
	Prefix   string
	BasePath string
}

// Resolve replaces Prefix with BasePath when target starts with Prefix, once.
// Any other target is returned unchanged. Nothing is normalized or checked.
func (r Rewriter) Resolve(target string) string {
	if !strings.HasPrefix(target, r.Prefix) {
		return target
	}
	return r.BasePath + target[len(r.Prefix):]
}

// HasDotDot reports whether target contains a ".." segment, separated by
// either kind of slash.
func HasDotDot(target string) bool {
	segments := strings.FieldsFunc(target, func(c rune) bool {
		return c == '/' || c == '\\'
	})
	for _, s := range segments {
		if s == ".." {
			return true
		}
	}
	return false
}
