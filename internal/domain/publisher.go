package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// TierUnranked marks a publisher with no books in the collection.
	TierUnranked = 0

	// MaxTier is the lowest ranked tier; tiers run 1 (best represented) to 3.
	MaxTier = 3
)

var (
	// ErrBlankPublisherName is returned when a publisher is created without a name.
	ErrBlankPublisherName = errors.New("publisher name must not be blank")

	// ErrInvalidPublisherTier is returned when a tier outside 0..3 is supplied.
	ErrInvalidPublisherTier = errors.New("publisher tier must be between 0 and 3")
)

// Publishers is an alias type for a slice of Publisher.
type Publishers = []Publisher

// Publisher groups books by the house that published them.
//
// Tier is derived from how well the publisher is represented in the
// collection and is recomputed in bulk by the retier-publishers command,
// never through the HTTP API.
type Publisher struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tier      int       `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the invariants that hold for every stored publisher.
func (p Publisher) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrBlankPublisherName
	}

	if p.Tier < TierUnranked || p.Tier > MaxTier {
		return ErrInvalidPublisherTier
	}

	return nil
}

// TierForBookCount maps a collection count to a publisher tier.
// Thresholds: 20 or more books is tier 1, 5 or more is tier 2,
// at least one is tier 3, none leaves the publisher unranked.
func TierForBookCount(count int) int {
	switch {
	case count >= 20:
		return 1
	case count >= 5:
		return 2
	case count >= 1:
		return 3
	default:
		return TierUnranked
	}
}
