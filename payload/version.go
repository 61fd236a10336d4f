package payload

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Version patterns may contain "*" wildcards that match any characters
// between separators, except a trailing wildcard which matches to the end.

var (
	invalidVersionChars = regexp.MustCompile(`[^a-zA-Z0-9*.,_-]`)
	duplicateWildcards  = regexp.MustCompile(`\*+`)
)

// A VersionPattern matches and resolves framework version strings. Versions
// order by dot separated parts and dash separated sub parts, where integer
// sub parts sort higher than non-integer ones and a version with fewer parts
// sorts higher than one extending it.
type VersionPattern struct {
	pattern string
	expr    *regexp.Regexp
}

// NewVersionPattern compiles a version pattern. Duplicate wildcards collapse
// to one.
func NewVersionPattern(pattern string) *VersionPattern {
	p := duplicateWildcards.ReplaceAllString(pattern, "*")
	v := &VersionPattern{pattern: p}
	if strings.Contains(p, "*") {
		var sb strings.Builder
		for i, part := range strings.Split(p, "*") {
			if i > 0 {
				if i == strings.Count(p, "*") && strings.HasSuffix(p, "*") {
					// A trailing wildcard matches anything that follows.
					sb.WriteString(".*")
				} else {
					sb.WriteString(`[^*.]+`)
				}
			}
			sb.WriteString(regexp.QuoteMeta(part))
		}
		v.expr = regexp.MustCompile(`^` + sb.String() + `$`)
	}
	return v
}

// IsValidVersionPattern reports whether a pattern contains only the allowed
// version characters.
func IsValidVersionPattern(pattern string) bool {
	return !invalidVersionChars.MatchString(pattern)
}

// Match reports whether a version matches the pattern.
func (v *VersionPattern) Match(version string) bool {
	if !IsValidVersionPattern(v.pattern) {
		return false
	}
	if v.expr == nil {
		return v.pattern == version
	}
	return v.expr.MatchString(version)
}

// Resolve returns the highest version matching the pattern, or an empty
// string when none match.
func (v *VersionPattern) Resolve(versions []string) string {
	var valid []string
	for _, ver := range versions {
		if v.Match(ver) {
			valid = append(valid, ver)
		}
	}
	if len(valid) == 0 {
		return ""
	}
	sort.Slice(valid, func(i, j int) bool {
		return compareVersions(valid[i], valid[j]) > 0
	})
	return valid[0]
}

// compareVersions returns a positive value when v1 is higher than v2, zero
// when equal, and a negative value otherwise.
func compareVersions(v1, v2 string) int {
	if v1 == v2 {
		return 0
	}
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")
	for i := 0; i < len(parts1) || i < len(parts2); i++ {
		// The version that does not have more parts is higher.
		if i >= len(parts1) {
			return 1
		}
		if i >= len(parts2) {
			return -1
		}
		if c := compareVersionParts(parts1[i], parts2[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareVersionParts(p1, p2 string) int {
	if p1 == p2 {
		return 0
	}
	sub1 := strings.Split(p1, "-")
	sub2 := strings.Split(p2, "-")
	for i := 0; i < len(sub1) || i < len(sub2); i++ {
		if i >= len(sub1) {
			return 1
		}
		if i >= len(sub2) {
			return -1
		}
		if c := compareSubParts(sub1[i], sub2[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareSubParts(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	_, err1 := strconv.Atoi(s1)
	_, err2 := strconv.Atoi(s2)
	if (err1 == nil) != (err2 == nil) {
		// Integer sub parts are higher than non-integer ones.
		if err1 == nil {
			return 1
		}
		return -1
	}
	if s1 > s2 {
		return 1
	}
	return -1
}
