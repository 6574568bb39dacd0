package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Decision is the guard verdict for one link.
type Decision struct {
	Allowed        bool
	BlockingImages int64
}

// BlockedColor names one color whose removal the guard vetoed, with the image
// count the caller must clear first.
type BlockedColor struct {
	ColorID    uuid.UUID `json:"color_id"`
	ColorName  string    `json:"color_name"`
	ImageCount int64     `json:"image_count"`
}

type linkImageCounter interface {
	CountImagesByLink(ctx context.Context, linkID uuid.UUID) (int64, error)
}

// Guard vetoes removal of color links that still own images. It is bound to
// whatever repository view the caller supplies, so the commit path re-checks
// against the transaction rather than the plan-time snapshot.
type Guard struct {
	counter linkImageCounter
}

// NewGuard constructs a guard over the given image counter.
func NewGuard(counter linkImageCounter) (*Guard, error) {
	if counter == nil {
		return nil, fmt.Errorf("image counter required")
	}
	return &Guard{counter: counter}, nil
}

// CanRemove reports whether the link may be deleted.
func (g *Guard) CanRemove(ctx context.Context, linkID uuid.UUID) (Decision, error) {
	count, err := g.counter.CountImagesByLink(ctx, linkID)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: count == 0, BlockingImages: count}, nil
}
