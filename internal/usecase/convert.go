package usecase

import (
	"refermatch/internal/domain/overlap"
	"refermatch/internal/domain/scoring"
	"refermatch/internal/repository"
)

func toScoringPosting(p repository.Posting) scoring.Posting {
	return scoring.Posting{
		CompanyName: p.Organization,
		Title:       p.Title,
		Level:       p.Seniority,
		RemoteOK:    p.RemoteAllowed,
		Description: p.Description,
		Requirements: scoring.Requirements{
			Seniority:          p.Seniority,
			MustHaveSkills:     p.MustHaveSkills,
			NiceToHaveSkills:   p.NiceToHaveSkills,
			Industries:         p.Industries,
			Languages:          p.Languages,
			LocationPreference: p.Locations,
		},
	}
}

func toScoringProfile(p repository.Profile) scoring.Profile {
	return scoring.Profile{
		FullName:       p.FullName,
		CurrentTitle:   p.CurrentTitle,
		CurrentCompany: p.CurrentCompany,
		Industry:       p.Industry,
		Seniority:      p.Seniority,
		Country:        p.Country,
	}
}

func toScoringHistory(entries []repository.WorkHistoryEntry) []scoring.HistoryEntry {
	out := make([]scoring.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, scoring.HistoryEntry{
			CompanyName: e.CompanyName,
			Title:       e.Title,
			Start:       e.StartDate,
			End:         e.EndDate,
			Location:    e.Location,
		})
	}
	return out
}

func toOverlapHistory(entries []repository.WorkHistoryEntry) []overlap.Employment {
	out := make([]overlap.Employment, 0, len(entries))
	for _, e := range entries {
		out = append(out, overlap.Employment{
			CompanyName: e.CompanyName,
			Start:       e.StartDate,
			End:         e.EndDate,
		})
	}
	return out
}
