package scoring

import (
	"time"

	"github.com/bowr/streamear/pkg/model"
)

// DiscardAge is how old a low-confidence seed must be before germination discards it
const DiscardAge = 24 * time.Hour

// ClassifyDetection maps a detection-time confidence to a status. Values in
// [0.2, 0.4) are dormant; only values below 0.2 are discarded.
func ClassifyDetection(confidence float64) model.Status {
	switch {
	case confidence >= 0.8:
		return model.StatusBlooming
	case confidence >= 0.6:
		return model.StatusSprouting
	case confidence >= 0.4:
		return model.StatusPlanted
	case confidence < 0.2:
		return model.StatusDiscarded
	default:
		return model.StatusDormant
	}
}

// ClassifyReevaluation maps a re-evaluated confidence to a status. Below 0.3
// the seed is discarded once older than DiscardAge; otherwise, and for
// [0.3, 0.6), the current status is kept.
func ClassifyReevaluation(confidence float64, age time.Duration, current model.Status) model.Status {
	switch {
	case confidence >= 0.8:
		return model.StatusBlooming
	case confidence >= 0.6:
		return model.StatusSprouting
	case confidence < 0.3:
		if age > DiscardAge {
			return model.StatusDiscarded
		}
		return current
	default:
		return current
	}
}
