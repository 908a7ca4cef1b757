// Package registry tracks the set of accounts that have ever
// deposited: insertion-ordered, duplicate-free, and pageable by
// offset/count with stable order across queries.
package registry

// Set is the account registry. An account appears at most once, at the
// position of its first-ever deposit.
//
// Set is not safe for concurrent use; the owning store guards it.
type Set struct {
	order []string
	index map[string]int
}

// NewSet returns an empty registry.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add registers the account if it is new and reports whether it was.
// Idempotent: re-adding an existing account keeps its position.
func (s *Set) Add(account string) bool {
	if _, ok := s.index[account]; ok {
		return false
	}

	s.index[account] = len(s.order)
	s.order = append(s.order, account)

	return true
}

// Contains reports whether the account is registered.
func (s *Set) Contains(account string) bool {
	_, ok := s.index[account]

	return ok
}

// Ordinal returns the account's insertion position, if registered.
func (s *Set) Ordinal(account string) (int, bool) {
	i, ok := s.index[account]

	return i, ok
}

// Len returns the number of registered accounts. O(1).
func (s *Set) Len() int { return len(s.order) }

// Page returns a copy of the contiguous slice [offset, offset+count)
// of the registry, truncated at the end. The caller bounds-checks
// offset against Len.
func (s *Set) Page(offset, count int) []string {
	end := offset + count
	if count <= 0 || end > len(s.order) {
		end = len(s.order)
	}
	if offset > end {
		offset = end
	}

	out := make([]string, end-offset)
	copy(out, s.order[offset:end])

	return out
}
