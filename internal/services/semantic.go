package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/moodlog/moodlog-backend/internal/ai"
)

// MaxCandidateTextLen bounds how much of each entry is sent to the model.
const MaxCandidateTextLen = 200

// EntryCandidate is one entry offered to the semantic matcher. The adapter is
// stateless: the caller supplies the full candidate set on every call.
type EntryCandidate struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

// SemanticSearchService asks the external model which candidate entries match
// a natural-language query by meaning rather than keyword.
type SemanticSearchService struct {
	client *ai.Client
}

func NewSemanticSearchService(client *ai.Client) *SemanticSearchService {
	return &SemanticSearchService{client: client}
}

const semanticSystemPrompt = "You match journal entries against a search query by meaning. " +
	"Given a query and a list of entries, respond with a JSON array containing the ids of the " +
	"entries whose meaning matches the query. Respond with JSON only, no prose. " +
	"If nothing matches, respond with an empty array."

// Match returns the ids of candidates the model considers semantically
// relevant to query. On any failure it returns an empty slice; callers cannot
// distinguish "no matches" from "search unavailable" and must not need to.
func (s *SemanticSearchService) Match(ctx context.Context, query string, candidates []EntryCandidate) []string {
	if len(candidates) == 0 {
		return []string{}
	}

	known := make(map[string]bool, len(candidates))
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nEntries:\n", query)
	for _, c := range candidates {
		known[c.ID] = true
		text := c.Text
		if len(text) > MaxCandidateTextLen {
			text = text[:MaxCandidateTextLen]
		}
		fmt.Fprintf(&sb, "- id: %s | tags: %s | text: %s\n", c.ID, strings.Join(c.Tags, ", "), text)
	}

	raw, err := s.client.Complete(ctx, semanticSystemPrompt, sb.String())
	if err != nil {
		log.Printf("[semantic] degraded to empty result: %v", err)
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &ids); err != nil {
		log.Printf("[semantic] unusable model output, degraded to empty result: %v", err)
		return []string{}
	}

	// Keep only ids that were actually offered
	matched := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			matched = append(matched, id)
		}
	}
	return matched
}
