package packages

import (
	"github.com/google/uuid"

	"github.com/quotebook/quotebook/internal/billing/shared"
)

// NewItemID returns a random item identifier.
func NewItemID() string {
	return uuid.NewString()
}

// Expand appends a copy of every item in pkg to items, giving each copy a
// fresh id. Neither pkg nor the backing array of items is modified.
func Expand(pkg Package, items []shared.Item, newID func() string) []shared.Item {
	if newID == nil {
		newID = NewItemID
	}
	out := make([]shared.Item, 0, len(items)+len(pkg.Items))
	out = append(out, items...)
	for _, tmpl := range pkg.Items {
		copied := tmpl
		copied.ID = newID()
		out = append(out, copied)
	}
	return out
}
