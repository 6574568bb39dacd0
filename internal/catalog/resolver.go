package catalog

import (
	"github.com/google/uuid"
)

// LinkState is the minimal view of a color link the resolver diffs against.
type LinkState struct {
	LinkID  uuid.UUID
	ColorID uuid.UUID
	Order   int
}

// Plan is the tagged outcome of a reassignment diff. ToRemove holds link IDs
// whose color is no longer desired; ToCreate holds color IDs to link, in the
// caller-provided order. Colors present on both sides are never touched so
// their order values and owned images survive the reassignment.
type Plan struct {
	ToRemove []uuid.UUID
	ToCreate []uuid.UUID
}

// Empty reports whether the plan mutates nothing.
func (p Plan) Empty() bool {
	return len(p.ToRemove) == 0 && len(p.ToCreate) == 0
}

// Resolve computes the set difference between the current link set and the
// desired color set. It is a pure function; the caller persists the plan.
func Resolve(current []LinkState, desiredColorIDs []uuid.UUID) Plan {
	desired := make(map[uuid.UUID]struct{}, len(desiredColorIDs))
	for _, id := range desiredColorIDs {
		if id == uuid.Nil {
			continue
		}
		desired[id] = struct{}{}
	}

	existing := make(map[uuid.UUID]struct{}, len(current))
	plan := Plan{}
	for _, link := range current {
		existing[link.ColorID] = struct{}{}
		if _, keep := desired[link.ColorID]; !keep {
			plan.ToRemove = append(plan.ToRemove, link.LinkID)
		}
	}

	seen := make(map[uuid.UUID]struct{}, len(desiredColorIDs))
	for _, colorID := range desiredColorIDs {
		if colorID == uuid.Nil {
			continue
		}
		if _, dup := seen[colorID]; dup {
			continue
		}
		seen[colorID] = struct{}{}
		if _, ok := existing[colorID]; !ok {
			plan.ToCreate = append(plan.ToCreate, colorID)
		}
	}

	return plan
}
