package dto

import (
	"time"

	"github.com/google/uuid"
)

type RecommendationPostingResponse struct {
	ID             uuid.UUID `json:"id"`
	Organization   string    `json:"organization"`
	Title          string    `json:"title"`
	Seniority      string    `json:"seniority"`
	NonNegotiables []string  `json:"non_negotiables"`
}

type RecommendationCandidateResponse struct {
	ProfileID  uuid.UUID `json:"profile_id"`
	FullName   string    `json:"full_name"`
	Score      float64   `json:"score"`
	Confidence int       `json:"confidence"`
	Evidence   string    `json:"evidence"`
}

type RecommendationViewResponse struct {
	Posting       RecommendationPostingResponse     `json:"posting"`
	ConnectorName string                            `json:"connector_name"`
	Candidates    []RecommendationCandidateResponse `json:"candidates"`
}

type RecommendationSubmittedResponse struct {
	ID        uuid.UUID `json:"id"`
	PostingID uuid.UUID `json:"posting_id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
