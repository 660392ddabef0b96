package domain

// Overlap reports whether two periods' validity intervals intersect.
// Intervals are half-open: [ValidFrom, ValidTo). Two intervals that
// merely touch at a boundary do not overlap, and an empty interval
// (valid_to == valid_from, the shape an ended-before-start period
// collapses to) overlaps nothing. When both periods are open-ended they
// always overlap. Overlap is symmetric in its arguments.
func Overlap(candidate, existing PricingPeriod) bool {
	if emptyInterval(candidate) || emptyInterval(existing) {
		return false
	}
	candidateBeforeExistingEnds := existing.ValidTo == nil || candidate.ValidFrom.Before(*existing.ValidTo)
	existingBeforeCandidateEnds := candidate.ValidTo == nil || existing.ValidFrom.Before(*candidate.ValidTo)
	return candidateBeforeExistingEnds && existingBeforeCandidateEnds
}

func emptyInterval(period PricingPeriod) bool {
	return period.ValidTo != nil && !period.ValidTo.After(period.ValidFrom)
}

// FindConflict returns the first existing period the candidate overlaps.
// Periods of a different user type and inactive periods are skipped
// unconditionally, as is the candidate's own row. Returns nil when the
// candidate is free of conflicts.
func FindConflict(candidate PricingPeriod, existing []PricingPeriod) *PricingPeriod {
	for i := range existing {
		period := existing[i]
		if period.ID != 0 && period.ID == candidate.ID {
			continue
		}
		if period.UserTypeID != candidate.UserTypeID {
			continue
		}
		if !period.Active {
			continue
		}
		if Overlap(candidate, period) {
			return &existing[i]
		}
	}
	return nil
}

// ValidateDates checks the date-order precondition: a scheduled end must
// lie strictly after the start. This runs before any overlap check and
// fails with its own error.
func ValidateDates(period PricingPeriod) error {
	if period.ValidFrom.IsZero() {
		return ErrInvalidDates
	}
	if period.ValidTo != nil && !period.ValidTo.After(period.ValidFrom) {
		return ErrInvalidDates
	}
	return nil
}
