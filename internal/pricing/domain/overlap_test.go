package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func ptr(t time.Time) *time.Time { return &t }

func period(userType snowflake.ID, from time.Time, to *time.Time, active bool) PricingPeriod {
	return PricingPeriod{
		UserTypeID: userType,
		ValidFrom:  from,
		ValidTo:    to,
		Active:     active,
	}
}

func TestOverlapIsSymmetric(t *testing.T) {
	cases := []struct {
		name string
		a, b PricingPeriod
	}{
		{"closed vs closed", period(1, day(0), ptr(day(10)), true), period(1, day(5), ptr(day(15)), true)},
		{"closed vs open", period(1, day(0), ptr(day(10)), true), period(1, day(5), nil, true)},
		{"open vs open", period(1, day(0), nil, true), period(1, day(100), nil, true)},
		{"disjoint", period(1, day(0), ptr(day(5)), true), period(1, day(10), ptr(day(20)), true)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, Overlap(tc.a, tc.b), Overlap(tc.b, tc.a))
		})
	}
}

func TestOverlapHalfOpenBoundaryTouchIsNotOverlap(t *testing.T) {
	first := period(1, day(0), ptr(day(10)), true)
	second := period(1, day(10), ptr(day(20)), true)

	assert.False(t, Overlap(first, second))
	assert.False(t, Overlap(second, first))
}

func TestOverlapPartialIntersection(t *testing.T) {
	first := period(1, day(0), ptr(day(10)), true)
	second := period(1, day(9), ptr(day(20)), true)

	assert.True(t, Overlap(first, second))
}

func TestOverlapContainment(t *testing.T) {
	outer := period(1, day(0), ptr(day(30)), true)
	inner := period(1, day(10), ptr(day(20)), true)

	assert.True(t, Overlap(outer, inner))
	assert.True(t, Overlap(inner, outer))
}

func TestOverlapOpenEndedCases(t *testing.T) {
	openEnded := period(1, day(10), nil, true)

	t.Run("closed ending before open start does not overlap", func(t *testing.T) {
		closed := period(1, day(0), ptr(day(10)), true)
		assert.False(t, Overlap(openEnded, closed))
	})

	t.Run("closed crossing open start overlaps", func(t *testing.T) {
		closed := period(1, day(0), ptr(day(11)), true)
		assert.True(t, Overlap(openEnded, closed))
	})

	t.Run("closed entirely after open start overlaps", func(t *testing.T) {
		closed := period(1, day(20), ptr(day(30)), true)
		assert.True(t, Overlap(openEnded, closed))
	})

	t.Run("both open-ended always overlap", func(t *testing.T) {
		other := period(1, day(1000), nil, true)
		assert.True(t, Overlap(openEnded, other))
	})
}

func TestOverlapEmptyIntervalNeverOverlaps(t *testing.T) {
	// An ended-before-start period collapses to [t, t); the empty
	// interval must not block a replacement crossing t.
	collapsed := period(1, day(10), ptr(day(10)), true)

	t.Run("candidate crossing the collapse point", func(t *testing.T) {
		candidate := period(1, day(5), ptr(day(15)), true)
		assert.False(t, Overlap(candidate, collapsed))
		assert.False(t, Overlap(collapsed, candidate))
	})

	t.Run("open-ended candidate", func(t *testing.T) {
		candidate := period(1, day(0), nil, true)
		assert.False(t, Overlap(candidate, collapsed))
	})

	t.Run("two empty intervals at the same instant", func(t *testing.T) {
		assert.False(t, Overlap(collapsed, collapsed))
	})
}

func TestFindConflictSkipsCollapsedPeriods(t *testing.T) {
	candidate := period(1, day(5), ptr(day(15)), true)
	existing := []PricingPeriod{
		period(1, day(10), ptr(day(10)), true),
	}

	assert.Nil(t, FindConflict(candidate, existing))
}

func TestFindConflictSkipsInactivePeriods(t *testing.T) {
	candidate := period(1, day(0), nil, true)
	existing := []PricingPeriod{
		period(1, day(0), nil, false),
	}

	assert.Nil(t, FindConflict(candidate, existing))
}

func TestFindConflictSkipsOtherUserTypes(t *testing.T) {
	candidate := period(1, day(0), nil, true)
	existing := []PricingPeriod{
		period(2, day(0), nil, true),
	}

	assert.Nil(t, FindConflict(candidate, existing))
}

func TestFindConflictReturnsConflictingPeriod(t *testing.T) {
	candidate := period(1, day(5), ptr(day(15)), true)
	existing := []PricingPeriod{
		period(2, day(0), nil, true),
		period(1, day(0), ptr(day(5)), true),
		period(1, day(10), ptr(day(20)), true),
	}

	conflict := FindConflict(candidate, existing)
	require.NotNil(t, conflict)
	assert.Equal(t, day(10), conflict.ValidFrom)
}

func TestFindConflictSkipsCandidateOwnRow(t *testing.T) {
	candidate := period(1, day(0), nil, true)
	candidate.ID = 42
	self := candidate

	assert.Nil(t, FindConflict(candidate, []PricingPeriod{self}))
}

func TestValidateDatesRejectsEndBeforeStart(t *testing.T) {
	assert.ErrorIs(t, ValidateDates(period(1, day(10), ptr(day(5)), true)), ErrInvalidDates)
}

func TestValidateDatesRejectsZeroLength(t *testing.T) {
	assert.ErrorIs(t, ValidateDates(period(1, day(10), ptr(day(10)), true)), ErrInvalidDates)
}

func TestValidateDatesAcceptsOpenEnded(t *testing.T) {
	assert.NoError(t, ValidateDates(period(1, day(10), nil, true)))
}

func TestValidateDatesRejectsMissingStart(t *testing.T) {
	assert.ErrorIs(t, ValidateDates(PricingPeriod{}), ErrInvalidDates)
}

func TestCurrentAtHonorsHalfOpenEnd(t *testing.T) {
	p := period(1, day(0), ptr(day(10)), true)

	assert.True(t, p.CurrentAt(day(0)))
	assert.True(t, p.CurrentAt(day(9)))
	assert.False(t, p.CurrentAt(day(10)))
}
