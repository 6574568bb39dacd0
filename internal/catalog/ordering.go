package catalog

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/grupomotriz/catalogo-backend/pkg/errors"
)

// OrderedItem is the view of a gallery row the allocator works with.
type OrderedItem struct {
	ID        uuid.UUID
	Order     int
	IsPrimary bool
}

// NextOrder returns the order value for the next appended item: max(existing)+1,
// or 0 for an empty scope. Order values are 0-based and never reused while the
// holding row exists.
func NextOrder(items []OrderedItem) int {
	next := 0
	for _, item := range items {
		if item.Order >= next {
			next = item.Order + 1
		}
	}
	return next
}

// PromotionCandidate picks the item with the lowest order, which inherits
// primary status when the previous holder is removed. Returns false when the
// scope is empty.
func PromotionCandidate(items []OrderedItem) (uuid.UUID, bool) {
	if len(items) == 0 {
		return uuid.Nil, false
	}
	best := items[0]
	for _, item := range items[1:] {
		if item.Order < best.Order {
			best = item
		}
	}
	return best.ID, true
}

// CheckScopeInvariants validates a scope snapshot: unique order values and at
// most one primary. A violation means corrupted data, never user error.
func CheckScopeInvariants(items []OrderedItem) error {
	seen := make(map[int]struct{}, len(items))
	primaries := 0
	for _, item := range items {
		if _, dup := seen[item.Order]; dup {
			return pkgerrors.New(pkgerrors.CodeOrderingInvariant,
				fmt.Sprintf("duplicate order value %d in scope", item.Order))
		}
		seen[item.Order] = struct{}{}
		if item.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return pkgerrors.New(pkgerrors.CodeOrderingInvariant,
			fmt.Sprintf("%d primary items in scope", primaries))
	}
	return nil
}
