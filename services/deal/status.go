package deal

import (
	"time"

	"dinewise/models"
	"dinewise/utils"
)

// ValidateWindow rejects a validity window whose end is not after its start.
func ValidateWindow(start, end time.Time) error {
	if !end.After(start) {
		return utils.Validation("endDate must be after startDate")
	}
	return nil
}

// StatusAt derives a deal's status from the clock. INACTIVE is a manual
// override and is kept as is.
func StatusAt(start, end, now time.Time, requested models.DealStatus) models.DealStatus {
	if requested == models.DealInactive {
		return models.DealInactive
	}
	switch {
	case now.Before(start):
		return models.DealScheduled
	case now.After(end):
		return models.DealExpired
	default:
		return models.DealActive
	}
}
