package services

import (
	"context"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/moodlog-backend/internal/ai"
)

const modelEndpoint = "https://model.test/v1/chat/completions"

func newTestAnnotationService() *AnnotationService {
	return NewAnnotationService(ai.NewClient("test-key", "https://model.test/v1", "test-model"))
}

func completionBody(content string) string {
	// Minimal chat-completions envelope; content must already be escaped
	return `{"choices":[{"message":{"content":` + content + `}}]}`
}

func TestAnnotateModelPath(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(200, completionBody(`"{\"moodScore\": 8, \"tags\": [\"friends\", \"outdoors\"]}"`)))

	result := newTestAnnotationService().Annotate(context.Background(), "Went hiking with friends")
	assert.False(t, result.Degraded)
	assert.Equal(t, 8, result.Annotation.MoodScore)
	assert.Equal(t, []string{"friends", "outdoors"}, result.Annotation.Tags)
}

func TestAnnotateStripsMarkdownFences(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(200, completionBody(`"`+"```json\\n{\\\"moodScore\\\": 3, \\\"tags\\\": [\\\"work\\\"]}\\n```"+`"`)))

	result := newTestAnnotationService().Annotate(context.Background(), "Rough day at work")
	assert.False(t, result.Degraded)
	assert.Equal(t, 3, result.Annotation.MoodScore)
	assert.Equal(t, []string{"work"}, result.Annotation.Tags)
}

func TestAnnotateCoercesBadModelOutput(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantScore int
		wantTags  []string
	}{
		{
			name:      "missing score defaults to neutral",
			content:   `"{\"tags\": [\"a\"]}"`,
			wantScore: NeutralMoodScore,
			wantTags:  []string{"a"},
		},
		{
			name:      "out of range score is clamped",
			content:   `"{\"moodScore\": 42, \"tags\": [\"a\"]}"`,
			wantScore: MaxMoodScore,
			wantTags:  []string{"a"},
		},
		{
			name:      "fractional score is truncated",
			content:   `"{\"moodScore\": 6.7, \"tags\": [\"a\"]}"`,
			wantScore: 6,
			wantTags:  []string{"a"},
		},
		{
			name:      "string score is coerced",
			content:   `"{\"moodScore\": \"7\", \"tags\": [\"a\"]}"`,
			wantScore: 7,
			wantTags:  []string{"a"},
		},
		{
			name:      "missing tags get the generic tag",
			content:   `"{\"moodScore\": 7}"`,
			wantScore: 7,
			wantTags:  []string{GenericTag},
		},
		{
			name:      "tags truncated to five",
			content:   `"{\"moodScore\": 7, \"tags\": [\"a\",\"b\",\"c\",\"d\",\"e\",\"f\",\"g\"]}"`,
			wantScore: 7,
			wantTags:  []string{"a", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Activate()
			t.Cleanup(httpmock.DeactivateAndReset)

			httpmock.RegisterResponder("POST", modelEndpoint,
				httpmock.NewStringResponder(200, completionBody(tt.content)))

			result := newTestAnnotationService().Annotate(context.Background(), "some text")
			assert.False(t, result.Degraded)
			assert.Equal(t, tt.wantScore, result.Annotation.MoodScore)
			assert.Equal(t, tt.wantTags, result.Annotation.Tags)
		})
	}
}

func TestAnnotateDegradesOnModelFailure(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(500, "upstream exploded"))

	result := newTestAnnotationService().Annotate(context.Background(), "I had a great day with friends")
	assert.True(t, result.Degraded)
	// 5 baseline + "great"
	assert.Equal(t, 6, result.Annotation.MoodScore)
	assert.Equal(t, []string{FallbackTag}, result.Annotation.Tags)
}

func TestAnnotateDegradesOnNonJSONReply(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", modelEndpoint,
		httpmock.NewStringResponder(200, completionBody(`"Sure! The mood here seems pretty positive."`)))

	result := newTestAnnotationService().Annotate(context.Background(), "today was good")
	assert.True(t, result.Degraded)
	assert.Equal(t, []string{FallbackTag}, result.Annotation.Tags)
}

func TestAnnotateWithoutClientUsesFallback(t *testing.T) {
	svc := NewAnnotationService(ai.NewClient("", "https://model.test/v1", "test-model"))

	result := svc.Annotate(context.Background(), "feeling happy and calm")
	assert.True(t, result.Degraded)
	assert.Equal(t, 7, result.Annotation.MoodScore)
}

func TestFallbackAnalyzeIsDeterministic(t *testing.T) {
	text := "I was tired but the evening was good"
	first := FallbackAnalyze(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FallbackAnalyze(text))
	}
}

func TestFallbackAnalyzeScoring(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"nothing notable", 5},
		{"I had a great day with friends", 6},
		{"happy happy joy", 7}, // each word counts once, "happy" and "joy"
		{"sad and tired and angry", 2},
		{"great good happy love excited joy", 10},
		{"sad bad hate tired angry anxious", 1},
		{"GREAT DAY", 6}, // case-insensitive
	}

	for _, tt := range tests {
		got := FallbackAnalyze(tt.text)
		assert.Equal(t, tt.want, got.MoodScore, "text %q", tt.text)
		assert.Equal(t, []string{FallbackTag}, got.Tags)
		require.GreaterOrEqual(t, got.MoodScore, MinMoodScore)
		require.LessOrEqual(t, got.MoodScore, MaxMoodScore)
	}
}

func TestClampMoodScore(t *testing.T) {
	assert.Equal(t, MinMoodScore, ClampMoodScore(-3))
	assert.Equal(t, MinMoodScore, ClampMoodScore(0))
	assert.Equal(t, 5, ClampMoodScore(5))
	assert.Equal(t, MaxMoodScore, ClampMoodScore(10))
	assert.Equal(t, MaxMoodScore, ClampMoodScore(99))
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```{\"a\":1}```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFences(tt.in), "input %q", tt.in)
	}
}

func TestStripCodeFencesKeepsInnerBackticks(t *testing.T) {
	in := "```json\n[\"id1\", \"id2\"]\n```"
	assert.True(t, strings.HasPrefix(StripCodeFences(in), "["))
}
