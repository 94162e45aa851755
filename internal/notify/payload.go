package notify

import (
	"fmt"
	"strings"
)

// Candidate is one ranked entry in a recommendation payload.
type Candidate struct {
	Name            string
	Score           float64
	EvidenceCompany string
}

// Payload carries everything the renderer needs for one connector's message.
type Payload struct {
	PostingTitle   string
	Organization   string
	RequesterName  string
	NonNegotiables []string
	Candidates     []Candidate
	DeepLink       string
}

// Subject returns the email subject line for the payload.
func (p Payload) Subject() string {
	return fmt.Sprintf("Candidates for %s at %s", p.PostingTitle, p.Organization)
}

// Render produces the message body: a ranked candidate list with overlap
// evidence, the posting's non-negotiables, and the recommendation deep link.
func (p Payload) Render() string {
	var b strings.Builder

	requester := strings.TrimSpace(p.RequesterName)
	if requester == "" {
		requester = "The hiring team"
	}

	fmt.Fprintf(&b, "%s is looking for a %s at %s and thinks you may know the right person.\n\n",
		requester, p.PostingTitle, p.Organization)

	if len(p.Candidates) > 0 {
		b.WriteString("People in your network who fit:\n")
		for i, c := range p.Candidates {
			fmt.Fprintf(&b, "%d. %s (%.0f%% match)", i+1, c.Name, c.Score)
			if c.EvidenceCompany != "" {
				fmt.Fprintf(&b, " - you coincided at %s", c.EvidenceCompany)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(p.NonNegotiables) > 0 {
		b.WriteString("Non-negotiables for this role:\n")
		for _, n := range p.NonNegotiables {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Recommend someone here: %s\n", p.DeepLink)

	return b.String()
}
