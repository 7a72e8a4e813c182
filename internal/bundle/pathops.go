// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package bundle

import "strings"

// plen reports the number of path components in s ("." has zero).
func plen(s string) int {
	if s == "" {
		panic("empty path")
	} else if s == "." {
		return 0
	} else {
		return strings.Count(s, "/") + 1
	}
}

// pcut splits s into its first at components and the remainder.
func pcut(s string, at int) (string, string) {
	if at < 0 {
		panic("negative argument")
	}
	if s == "." {
		s = ""
	}

	x := 0
	for range at {
		x++ // first byte of the component
		for x < len(s) && s[x] != '/' {
			x++ // subsequent non-slash bytes
		}
		if x < len(s) {
			x++ // terminal slash if any
		}
	}
	return ptrim(s[:x]), ptrim(s[x:])
}

func ptrim(s string) string {
	s = strings.Trim(s, "/")
	if s == "" {
		return "."
	}
	return s
}

// hasDotDotComponent reports whether any component of s is "..", the one
// shape a cleaned, non-absolute tar member path could use to climb above
// destDir.
func hasDotDotComponent(s string) bool {
	n := plen(s)
	for i := 0; i < n; i++ {
		left, _ := pcut(s, i+1)
		_, component := pcut(left, i)
		if component == ".." {
			return true
		}
	}
	return false
}
