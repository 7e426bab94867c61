package plan

import (
	"reflect"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/provenance"
)

// #region defaults

// Default returns the configuration a session starts from: empty availability
// week, default-sourced provenance, and a uniform weight vector.
func Default(now time.Time) Config {
	week := make([]AvailabilityDay, len(Weekdays))
	for i, d := range Weekdays {
		week[i] = AvailabilityDay{Day: d}
	}
	return Config{
		Availability:           Availability{Week: week},
		AvailabilityProvenance: provenance.DefaultTag(now),
		RecentInfluence: RecentInfluence{
			InfluenceScore: 0.5,
			Action:         InfluenceAccepted,
			Provenance:     provenance.DefaultTag(now),
		},
		Constraints: Constraints{
			MinSessionsPerWeek: 3,
			MaxSessionsPerWeek: 6,
			Source:             provenance.SourceDefault,
		},
		RampCaps:             RampCaps{WeeklyTSS: 40, WeeklyCTL: 4},
		PostGoalRecoveryDays: 3,
		Optimization:         defaultOptimization(),
	}
}

// #endregion defaults

// #region clone

// Clone returns a deep copy. Nested slices (availability windows, hard rest
// days, goals, provenance rationale) are copied so no edit can be observed
// through a stale snapshot held by a debounce callback.
func (c Config) Clone() Config {
	out := c
	out.Availability = c.Availability.Clone()
	out.AvailabilityProvenance = c.AvailabilityProvenance.Clone()
	out.RecentInfluence.Provenance = c.RecentInfluence.Provenance.Clone()
	if c.Goals != nil {
		out.Goals = append([]Goal(nil), c.Goals...)
	}
	return out
}

// Clone returns a deep copy of the availability schedule.
func (a Availability) Clone() Availability {
	out := a
	if a.Week != nil {
		out.Week = make([]AvailabilityDay, len(a.Week))
		for i, day := range a.Week {
			out.Week[i] = day
			if day.Windows != nil {
				out.Week[i].Windows = append([]AvailabilityWindow(nil), day.Windows...)
			}
		}
	}
	if a.HardRestDays != nil {
		out.HardRestDays = append([]string(nil), a.HardRestDays...)
	}
	return out
}

// #endregion clone

// #region high-impact

// HighImpactChanged reports whether a change between two snapshots should
// schedule a suggestion recompute. The comparison is by value over a fixed
// field whitelist; nested objects are copied on every edit, so reference
// comparison would misfire.
func HighImpactChanged(prev, next Config) bool {
	if !reflect.DeepEqual(prev.Availability, next.Availability) {
		return true
	}
	if prev.Constraints != next.Constraints {
		return true
	}
	if prev.Locks != next.Locks {
		return true
	}
	if prev.Optimization != next.Optimization {
		return true
	}
	if prev.PostGoalRecoveryDays != next.PostGoalRecoveryDays {
		return true
	}
	if prev.RampCaps != next.RampCaps {
		return true
	}
	return false
}

// #endregion high-impact
