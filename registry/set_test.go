package registry_test

import (
	"fmt"
	"testing"

	"github.com/xraph/timevault/registry"
)

func TestSetAddIdempotent(t *testing.T) {
	s := registry.NewSet()

	if !s.Add("alice") {
		t.Error("first Add should report new")
	}
	if s.Add("alice") {
		t.Error("second Add of the same account should not report new")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSetOrdinalStability(t *testing.T) {
	s := registry.NewSet()

	accounts := []string{"carol", "alice", "bob"}
	for _, a := range accounts {
		s.Add(a)
	}
	// Re-adds keep first-deposit positions.
	s.Add("alice")
	s.Add("carol")

	for want, account := range accounts {
		got, ok := s.Ordinal(account)
		if !ok {
			t.Fatalf("Ordinal(%q) reported missing", account)
		}
		if got != want {
			t.Errorf("Ordinal(%q) = %d, want %d", account, got, want)
		}
	}

	if _, ok := s.Ordinal("mallory"); ok {
		t.Error("Ordinal of unregistered account should report missing")
	}
}

func TestSetContains(t *testing.T) {
	s := registry.NewSet()
	s.Add("alice")

	if !s.Contains("alice") {
		t.Error("expected alice to be registered")
	}
	if s.Contains("bob") {
		t.Error("bob should not be registered")
	}
}

func TestSetPage(t *testing.T) {
	s := registry.NewSet()
	for i := 0; i < 10; i++ {
		s.Add(fmt.Sprintf("account-%d", i))
	}

	tests := []struct {
		name   string
		offset int
		count  int
		want   []string
	}{
		{"first page", 0, 3, []string{"account-0", "account-1", "account-2"}},
		{"middle page", 4, 2, []string{"account-4", "account-5"}},
		{"truncated tail", 8, 5, []string{"account-8", "account-9"}},
		{"count covers all", 0, 100, nil}, // checked below for length
		{"offset at end", 10, 3, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Page(tt.offset, tt.count)
			if tt.want == nil {
				if len(got) != 10 {
					t.Errorf("Page(%d, %d) returned %d accounts, want 10", tt.offset, tt.count, len(got))
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Page(%d, %d) = %v, want %v", tt.offset, tt.count, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Page(%d, %d)[%d] = %q, want %q", tt.offset, tt.count, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestSetFullTraversal verifies paging through the whole registry in
// fixed-size chunks visits every account exactly once, in first-deposit
// order.
func TestSetFullTraversal(t *testing.T) {
	s := registry.NewSet()
	const total = 23
	for i := 0; i < total; i++ {
		s.Add(fmt.Sprintf("acct-%02d", i))
	}

	var visited []string
	for offset := 0; offset < s.Len(); offset += 5 {
		visited = append(visited, s.Page(offset, 5)...)
	}

	if len(visited) != total {
		t.Fatalf("traversal visited %d accounts, want %d", len(visited), total)
	}
	for i, account := range visited {
		if want := fmt.Sprintf("acct-%02d", i); account != want {
			t.Errorf("position %d = %q, want %q", i, account, want)
		}
	}
}

func TestSetPageIsCopy(t *testing.T) {
	s := registry.NewSet()
	s.Add("alice")
	s.Add("bob")

	page := s.Page(0, 2)
	page[0] = "mallory"

	if got := s.Page(0, 1)[0]; got != "alice" {
		t.Errorf("mutating the returned page changed internal state: got %q", got)
	}
}
