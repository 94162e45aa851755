package overlap

import (
	"math"
	"strings"
	"time"
)

// Employment is one work-history interval. A nil End means the position is
// still held and the interval is open-ended up to "now".
type Employment struct {
	CompanyName string
	Start       *time.Time
	End         *time.Time
}

// Evidence describes the best qualifying overlap between two work histories.
type Evidence struct {
	CompanyName   string
	OverlapMonths float64
	Confidence    int
}

var legalSuffixes = []string{
	" s.a. de c.v.",
	" s.a.",
	" s.a",
	" inc.",
	" inc",
	" llc.",
	" llc",
	" ltd.",
	" ltd",
	" corp.",
	" corp",
}

// NormalizeCompany lowercases, trims and strips common legal suffixes so
// "Rappi S.A." and "rappi" compare equal.
func NormalizeCompany(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for changed := true; changed; {
		changed = false
		for _, suffix := range legalSuffixes {
			if strings.HasSuffix(n, suffix) {
				n = strings.TrimSpace(strings.TrimSuffix(n, suffix))
				changed = true
			}
		}
	}
	return n
}

// Months returns the overlap between two intervals in months, zero when they
// do not overlap or either start is missing. Partial months count as a half
// month, or a full month past mid-month.
func Months(aStart, aEnd, bStart, bEnd *time.Time, now time.Time) float64 {
	if aStart == nil || bStart == nil {
		return 0
	}

	as, ae := *aStart, endOrNow(aEnd, now)
	bs, be := *bStart, endOrNow(bEnd, now)

	if as.After(be) || bs.After(ae) {
		return 0
	}

	start := as
	if bs.After(start) {
		start = bs
	}
	end := ae
	if be.Before(end) {
		end = be
	}

	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())

	days := end.Day() - start.Day()
	partial := 0.0
	if days > 15 {
		partial = 1
	} else if days > 0 {
		partial = 0.5
	}

	return math.Max(0, float64(months)+partial)
}

// Confidence maps overlap months to [10,100], saturating at twelve months.
func Confidence(months float64) int {
	if months <= 0 {
		return 0
	}
	if months >= 12 {
		return 100
	}
	c := int(math.Round(months / 12 * 100))
	if c < 10 {
		c = 10
	}
	if c > 100 {
		c = 100
	}
	return c
}

// Best scans every company-matched pair of intervals and returns the single
// highest-confidence overlap, or nil when no pair qualifies.
func Best(a, b []Employment, now time.Time) *Evidence {
	var best *Evidence

	for _, ea := range a {
		if ea.CompanyName == "" {
			continue
		}
		companyA := NormalizeCompany(ea.CompanyName)

		for _, eb := range b {
			if eb.CompanyName == "" {
				continue
			}
			if companyA != NormalizeCompany(eb.CompanyName) {
				continue
			}

			months := Months(ea.Start, ea.End, eb.Start, eb.End, now)
			if months <= 0 {
				continue
			}

			confidence := Confidence(months)
			if best == nil || confidence > best.Confidence {
				best = &Evidence{
					CompanyName:   ea.CompanyName,
					OverlapMonths: months,
					Confidence:    confidence,
				}
			}
		}
	}

	return best
}

func endOrNow(end *time.Time, now time.Time) time.Time {
	if end == nil {
		return now
	}
	return *end
}
