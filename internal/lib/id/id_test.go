package id

import (
	"sort"
	"strings"
	"testing"
)

func TestPrefixes(t *testing.T) {
	if got := NewUserID(); !strings.HasPrefix(got, "u_") {
		t.Errorf("user id %q should have u_ prefix", got)
	}
	if got := NewSessionID(); !strings.HasPrefix(got, "us_") {
		t.Errorf("session id %q should have us_ prefix", got)
	}
	if got := NewFamilyID(); got == "" {
		t.Error("family id should not be empty")
	}
}

// Session ids must sort in creation order; family recency ordering leans on it.
func TestSessionIDsAreMonotonic(t *testing.T) {
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = NewSessionID()
	}

	if !sort.StringsAreSorted(ids) {
		t.Error("session ids should sort in creation order")
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
