package recurring

import (
	"math"

	"github.com/Veraticus/spacesub/internal/model"
)

// MinMatchRatio is the share of gaps that must fall inside a cadence's
// tolerance band for the cadence to be accepted.
const MinMatchRatio = 0.6

// Cadence describes one billing cycle the detector can recognize.
type Cadence struct {
	Cycle        model.BillingCycle
	ExpectedDays int
	Tolerance    int
}

// Matches reports whether a single gap falls inside the tolerance band.
func (c Cadence) Matches(gap float64) bool {
	return math.Abs(gap-float64(c.ExpectedDays)) <= float64(c.Tolerance)
}

// Cadences lists the recognized cadences in priority order. The first
// cadence whose band contains the average gap and passes the match ratio wins.
var Cadences = []Cadence{
	{Cycle: model.CycleWeekly, ExpectedDays: 7, Tolerance: 3},
	{Cycle: model.CycleMonthly, ExpectedDays: 30, Tolerance: 5},
	{Cycle: model.CycleQuarterly, ExpectedDays: 90, Tolerance: 10},
	{Cycle: model.CycleYearly, ExpectedDays: 365, Tolerance: 20},
}

// CadenceFor returns the cadence definition for a billing cycle.
func CadenceFor(cycle model.BillingCycle) (Cadence, bool) {
	for _, c := range Cadences {
		if c.Cycle == cycle {
			return c, true
		}
	}
	return Cadence{}, false
}

// DetectCycle classifies a gap sequence into a billing cadence.
// It returns false when no cadence fits both the average gap and the
// per-gap match ratio.
func DetectCycle(gaps []int) (Cadence, bool) {
	if len(gaps) == 0 {
		return Cadence{}, false
	}

	avg := mean(gaps)
	for _, c := range Cadences {
		if !c.Matches(avg) {
			continue
		}

		matched := 0
		for _, gap := range gaps {
			if c.Matches(float64(gap)) {
				matched++
			}
		}
		if float64(matched)/float64(len(gaps)) >= MinMatchRatio {
			return c, true
		}
	}

	return Cadence{}, false
}

func mean(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
