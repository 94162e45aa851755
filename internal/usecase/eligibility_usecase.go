package usecase

import (
	"context"
	"fmt"

	"refermatch/internal/repository"

	"github.com/google/uuid"
)

// EligibleProfile is one recommendable candidate for a (posting, connector)
// pair, ordered best score first.
type EligibleProfile struct {
	ProfileID  uuid.UUID
	Score      float64
	Confidence int
	Company    string
	Evidence   string
}

type EligibilityUsecase interface {
	Resolve(ctx context.Context, postingID, connectorID uuid.UUID, minScore float64) ([]EligibleProfile, error)
}

// Eligibility intersects "scored high enough for the posting" with "known to
// the connector". No scored matches means no one is eligible; scoring absence
// never widens access.
type Eligibility struct {
	matches       repository.MatchRepository
	relationships repository.RelationshipRepository
}

func NewEligibilityUsecase(matches repository.MatchRepository, relationships repository.RelationshipRepository) *Eligibility {
	return &Eligibility{matches: matches, relationships: relationships}
}

func (u *Eligibility) Resolve(ctx context.Context, postingID, connectorID uuid.UUID, minScore float64) ([]EligibleProfile, error) {
	matches, err := u.matches.ListByPostingMinScore(ctx, postingID, minScore)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []EligibleProfile{}, nil
	}

	rels, err := u.relationships.ListByConnector(ctx, connectorID)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]repository.Relationship, len(rels))
	for _, rel := range rels {
		// Keep the highest-confidence edge per profile across sources.
		if existing, ok := known[rel.ProfileID]; !ok || rel.Confidence > existing.Confidence {
			known[rel.ProfileID] = rel
		}
	}

	out := make([]EligibleProfile, 0, len(matches))
	for _, m := range matches {
		rel, ok := known[m.ProfileID]
		if !ok {
			continue
		}
		out = append(out, EligibleProfile{
			ProfileID:  m.ProfileID,
			Score:      m.Score,
			Confidence: rel.Confidence,
			Company:    rel.CompanyName,
			Evidence:   evidenceText(rel),
		})
	}
	return out, nil
}

func evidenceText(rel repository.Relationship) string {
	if rel.CompanyName == "" {
		return ""
	}
	return fmt.Sprintf("coincided at %s (%.0f months)", rel.CompanyName, rel.OverlapMonths)
}
