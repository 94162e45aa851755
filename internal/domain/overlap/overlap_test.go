package overlap

import (
	"testing"
	"time"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestNormalizeCompany(t *testing.T) {
	cases := map[string]string{
		"Rappi S.A.":           "rappi",
		"  Globant LLC ":       "globant",
		"Kavak S.A. de C.V.":   "kavak",
		"Stripe Inc.":          "stripe",
		"Mercado Libre":        "mercado libre",
		"Nubank Ltd.":          "nubank",
		"Cornershop Corp":      "cornershop",
		"Plain Name":           "plain name",
	}
	for in, want := range cases {
		if got := NormalizeCompany(in); got != want {
			t.Fatalf("NormalizeCompany(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMonths_NoOverlap(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := Months(date("2018-01-01"), date("2019-01-01"), date("2020-01-01"), date("2021-01-01"), now)
	if m != 0 {
		t.Fatalf("expected 0, got %v", m)
	}
	// Missing start disqualifies the pair entirely.
	m = Months(nil, date("2019-01-01"), date("2018-01-01"), date("2021-01-01"), now)
	if m != 0 {
		t.Fatalf("expected 0 for missing start, got %v", m)
	}
}

func TestMonths_OpenEndedUsesNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := Months(date("2025-01-01"), nil, date("2025-01-01"), nil, now)
	if m != 5 {
		t.Fatalf("expected 5 months up to now, got %v", m)
	}
}

func TestConfidence_MonotonicAndSaturating(t *testing.T) {
	prev := 0
	for months := 0.5; months <= 24; months += 0.5 {
		c := Confidence(months)
		if c < prev {
			t.Fatalf("confidence decreased at %v months: %d < %d", months, c, prev)
		}
		if c < 10 || c > 100 {
			t.Fatalf("confidence out of range at %v months: %d", months, c)
		}
		prev = c
	}
	if Confidence(12) != 100 {
		t.Fatalf("expected saturation at 12 months")
	}
	if Confidence(36) != 100 {
		t.Fatalf("expected saturation beyond 12 months")
	}
	if Confidence(0) != 0 {
		t.Fatalf("zero overlap must not yield confidence")
	}
}

func TestConfidence_ShortOverlapFloor(t *testing.T) {
	if c := Confidence(0.5); c != 10 {
		t.Fatalf("expected floor of 10, got %d", c)
	}
	if c := Confidence(6); c != 50 {
		t.Fatalf("expected 50 at six months, got %d", c)
	}
}

func TestBest_PicksHighestConfidencePair(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	connector := []Employment{
		{CompanyName: "Rappi S.A.", Start: date("2019-01-01"), End: date("2019-04-01")},
		{CompanyName: "Kavak", Start: date("2020-01-01"), End: date("2023-01-01")},
	}
	candidate := []Employment{
		{CompanyName: "rappi", Start: date("2019-02-01"), End: date("2020-02-01")},
		{CompanyName: "Kavak S.A. de C.V.", Start: date("2021-01-01"), End: date("2022-06-01")},
	}

	best := Best(connector, candidate, now)
	if best == nil {
		t.Fatalf("expected evidence")
	}
	if best.Confidence != 100 {
		t.Fatalf("expected the 17-month Kavak overlap to win, got %+v", best)
	}
	if NormalizeCompany(best.CompanyName) != "kavak" {
		t.Fatalf("unexpected company %q", best.CompanyName)
	}
}

func TestBest_NoQualifyingPair(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Same company, disjoint intervals.
	a := []Employment{{CompanyName: "Globant", Start: date("2015-01-01"), End: date("2016-01-01")}}
	b := []Employment{{CompanyName: "Globant", Start: date("2018-01-01"), End: date("2020-01-01")}}
	if Best(a, b, now) != nil {
		t.Fatalf("disjoint intervals must not produce evidence")
	}

	// Overlapping intervals, different companies.
	b = []Employment{{CompanyName: "Stripe", Start: date("2015-01-01"), End: date("2016-01-01")}}
	if Best(a, b, now) != nil {
		t.Fatalf("different companies must not produce evidence")
	}
}
