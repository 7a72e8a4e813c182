// Copyright (c) tbprobe contributors
// Licensed under the MIT license

package bundle

import (
	"fmt"
	"testing"
)

func TestPcut(t *testing.T) {
	cases := []struct {
		s    string
		i    int
		l, r string
	}{
		{".", -1, "panic", ""},
		{".", 0, ".", "."},
		{".", 1, "panic", ""},
		{"aaa", -1, "panic", ""},
		{"aaa", 0, ".", "aaa"},
		{"aaa", 1, "aaa", "."},
		{"aaa", 2, "panic", ""},
		{"aaa/bbb", -1, "panic", ""},
		{"aaa/bbb", 0, ".", "aaa/bbb"},
		{"aaa/bbb", 1, "aaa", "bbb"},
		{"aaa/bbb", 2, "aaa/bbb", "."},
		{"aaa/bbb", 3, "panic", ""},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("pcut(%q,%d)", c.s, c.i), func(t *testing.T) {
			if c.l == "panic" {
				defer func() {
					if recover() == nil {
						t.Errorf("should have panicked but did not")
					}
				}()
			}

			l, r := pcut(c.s, c.i)
			if c.l != l || c.r != r {
				t.Errorf("expected (%q, %q) but got (%q, %q)", c.l, c.r, l, r)
			}
		})
	}
}

func TestHasDotDotComponent(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"KQvKR.rtbw", false},
		{"wdl/KQvKR.rtbw", false},
		{"../escape.rtbw", true},
		{"wdl/../../escape.rtbw", true},
		{".", false},
	}
	for _, c := range cases {
		if got := hasDotDotComponent(c.s); got != c.want {
			t.Errorf("hasDotDotComponent(%q) = %v, want %v", c.s, got, c.want)
		}
	}
}
