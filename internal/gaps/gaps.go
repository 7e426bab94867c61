// Package gaps computes spacing between dated goals.
package gaps

import (
	"sort"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/plan"
)

// #region date

const dateLayout = "2006-01-02"

// ValidDate reports whether s is a strict YYYY-MM-DD date. Re-formatting the
// parsed value guards against lenient inputs like "2026-5-1".
func ValidDate(s string) bool {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	return t.Format(dateLayout) == s
}

// #endregion date

// #region minimum-gap

// MinimumGapDays returns the smallest whole-day gap between consecutive
// dated goals. Goals without a strictly valid date are ignored; fewer than
// two valid dates means there is no gap to report and ok is false.
//
// Dates are anchored at UTC midnight so daylight-saving shifts cannot skew
// the day count, and sorted lexically, which is order-correct for ISO dates.
func MinimumGapDays(goals []plan.Goal) (days int, ok bool) {
	dates := make([]string, 0, len(goals))
	for _, g := range goals {
		if ValidDate(g.TargetDate) {
			dates = append(dates, g.TargetDate)
		}
	}
	if len(dates) < 2 {
		return 0, false
	}
	sort.Strings(dates)

	min := 0
	for i := 1; i < len(dates); i++ {
		gap := wholeDaysBetween(dates[i-1], dates[i])
		if i == 1 || gap < min {
			min = gap
		}
	}
	return min, true
}

func wholeDaysBetween(a, b string) int {
	ta, _ := time.ParseInLocation(dateLayout, a, time.UTC)
	tb, _ := time.ParseInLocation(dateLayout, b, time.UTC)
	return int(tb.Sub(ta) / (24 * time.Hour))
}

// #endregion minimum-gap
