package handlers

import "testing"

func TestParseMonthKey(t *testing.T) {
	cases := []struct {
		text string
		key  string
		ok   bool
	}{
		{"/month 07-2026", "07-2026", true},
		{"/export 12-2025", "12-2025", true},
		{"/month", "", false},
		{"/month ab-cdef", "", false},
		{"/month 13-2026", "", false},
		{"/month 00-2026", "", false},
		{"/month 7-2026", "", false},
		{"/month 07-26", "", false},
		{"/month 07/2026", "", false},
	}

	for _, tc := range cases {
		key, ok := parseMonthKey(tc.text)
		if key != tc.key || ok != tc.ok {
			t.Errorf("parseMonthKey(%q) = (%q, %v), want (%q, %v)", tc.text, key, ok, tc.key, tc.ok)
		}
	}
}
