package ports

import "github.com/bnema/fileassist/internal/domain"

// ActivityLog never surfaces I/O failures; implementations report them on
// their own diagnostics channel.
type ActivityLog interface {
	Append(entry domain.ActivityEntry) domain.EntryRef
	Update(ref domain.EntryRef, status domain.Status, details string, resultData map[string]any)
	UpdateLast(status domain.Status, details string, resultData map[string]any)
	Recent(count int) []domain.ActivityEntry
	// Lookup resolves "last", a 1-based recency index, an id prefix or a
	// timestamp substring; entries whose id is in skip are ignored.
	Lookup(identifier string, skip ...string) (domain.ActivityEntry, error)
}
