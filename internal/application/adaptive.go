package application

import (
	"time"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// ActivityTier classifies how recently the tower inventory changed. The
// watch loop refreshes a recently edited inventory more often.
type ActivityTier int

const (
	// TierHot means a tower changed within the last hour.
	TierHot ActivityTier = iota
	// TierActive means a tower changed within the last day.
	TierActive
	// TierWarm means a tower changed within the last week.
	TierWarm
	// TierStale means nothing changed for a week or more.
	TierStale
)

const (
	intervalHot    = 15 * time.Second
	intervalActive = time.Minute
	intervalWarm   = 5 * time.Minute
	intervalStale  = 15 * time.Minute
)

func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierWarm:
		return "warm"
	case TierStale:
		return "stale"
	default:
		return "unknown"
	}
}

func tierInterval(tier ActivityTier) time.Duration {
	switch tier {
	case TierHot:
		return intervalHot
	case TierActive:
		return intervalActive
	case TierWarm:
		return intervalWarm
	case TierStale:
		return intervalStale
	default:
		return intervalActive
	}
}

// classifyActivity maps the time since the last change to a tier. A zero
// time is TierStale.
func classifyActivity(lastChange, now time.Time) ActivityTier {
	if lastChange.IsZero() {
		return TierStale
	}

	switch elapsed := now.Sub(lastChange); {
	case elapsed < time.Hour:
		return TierHot
	case elapsed < 24*time.Hour:
		return TierActive
	case elapsed < 7*24*time.Hour:
		return TierWarm
	default:
		return TierStale
	}
}

// lastTowerChange returns the newest UpdatedAt among towers, or the zero
// time for an empty list.
func lastTowerChange(towers []model.Tower) time.Time {
	var newest time.Time
	for _, t := range towers {
		if t.UpdatedAt.After(newest) {
			newest = t.UpdatedAt
		}
	}
	return newest
}
