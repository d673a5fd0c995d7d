package services

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/moodlog/moodlog-backend/internal/ai"
)

func newTestSemanticService() *SemanticSearchService {
	return NewSemanticSearchService(ai.NewClient("test-key", "https://model.test/v1", "test-model"))
}

func testCandidates() []EntryCandidate {
	return []EntryCandidate{
		{ID: "id1", Text: "Went for a long run by the river", Tags: []string{"exercise"}},
		{ID: "id2", Text: "Argued with my landlord about rent", Tags: []string{"money", "stress"}},
		{ID: "id3", Text: "Tried a new pasta recipe", Tags: []string{"cooking"}},
	}
}

func TestMatchReturnsModelSelection(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(200, completionBody(`"[\"id1\"]"`)))

	ids := newTestSemanticService().Match(context.Background(), "times I was active outdoors", testCandidates())
	assert.Equal(t, []string{"id1"}, ids)
}

func TestMatchStripsFencesAroundIDArray(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(200, completionBody(`"`+"```json\\n[\\\"id2\\\", \\\"id3\\\"]\\n```"+`"`)))

	ids := newTestSemanticService().Match(context.Background(), "domestic life", testCandidates())
	assert.Equal(t, []string{"id2", "id3"}, ids)
}

func TestMatchDropsUnknownIDs(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	// Model hallucinates an id that was never offered
	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(200, completionBody(`"[\"id1\", \"id999\"]"`)))

	ids := newTestSemanticService().Match(context.Background(), "anything", testCandidates())
	assert.Equal(t, []string{"id1"}, ids)
}

func TestMatchEmptyOnModelFailure(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(503, "down"))

	ids := newTestSemanticService().Match(context.Background(), "anything", testCandidates())
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestMatchEmptyOnMalformedReply(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(200, completionBody(`"these two look relevant: id1 and id2"`)))

	ids := newTestSemanticService().Match(context.Background(), "anything", testCandidates())
	assert.Empty(t, ids)
}

func TestMatchEmptyCandidates(t *testing.T) {
	// No model call should happen at all
	ids := newTestSemanticService().Match(context.Background(), "anything", nil)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestMatchWithoutClientIsEmpty(t *testing.T) {
	svc := NewSemanticSearchService(ai.NewClient("", "https://model.test/v1", "test-model"))
	ids := svc.Match(context.Background(), "anything", testCandidates())
	assert.Empty(t, ids)
}
