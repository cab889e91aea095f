package model

import "strings"

// PolicyNotFound is returned to the generator when no policy key matches.
const PolicyNotFound = "Policy not found."

// PolicyEntry is one keyed policy document.
type PolicyEntry struct {
	Key  string
	Text string
}

// PolicyBook is an ordered, read-only mapping of policy keys to text.
type PolicyBook struct {
	entries []PolicyEntry
}

// NewPolicyBook builds a book from entries in lookup order. Later duplicates
// of a key replace the text but keep the first position.
func NewPolicyBook(entries ...PolicyEntry) *PolicyBook {
	b := &PolicyBook{entries: make([]PolicyEntry, 0, len(entries))}
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Key]; ok {
			b.entries[i].Text = e.Text
			continue
		}
		index[e.Key] = len(b.entries)
		b.entries = append(b.entries, e)
	}
	return b
}

// Len returns the number of policies.
func (b *PolicyBook) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Keys returns the policy keys in lookup order.
func (b *PolicyBook) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, len(b.entries))
	for i, e := range b.entries {
		keys[i] = e.Key
	}
	return keys
}

// Lookup returns the first policy whose key appears in message, ignoring case.
func (b *PolicyBook) Lookup(message string) (PolicyEntry, bool) {
	if b == nil {
		return PolicyEntry{}, false
	}
	lower := strings.ToLower(message)
	for _, e := range b.entries {
		if strings.Contains(lower, strings.ToLower(e.Key)) {
			return e, true
		}
	}
	return PolicyEntry{}, false
}
