package services

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/moodlog/moodlog-backend/internal/ai"
)

const (
	// MinMoodScore and MaxMoodScore bound every score the service returns,
	// on both the model path and the fallback path.
	MinMoodScore = 1
	MaxMoodScore = 10
	// NeutralMoodScore is used when the model omits or mangles the score.
	NeutralMoodScore = 5
	// MaxTags caps the tag list from the model.
	MaxTags = 5
	// FallbackTag marks entries scored without the model.
	FallbackTag = "offline-analysis"
	// GenericTag is used when the model returns a score but unusable tags.
	GenericTag = "general"
)

// Base sentiment words for the fallback analyzer - the only source of truth.
// Matching is lowercase substring containment, so "unhappy" counts for "happy";
// that asymmetry is accepted in exchange for a zero-dependency scorer.
var basePositiveWords = []string{
	"happy",
	"good",
	"great",
	"love",
	"excited",
	"joy",
	"grateful",
	"calm",
	"fun",
	"relaxed",
}

var baseNegativeWords = []string{
	"sad",
	"bad",
	"hate",
	"tired",
	"angry",
	"anxious",
	"stressed",
	"lonely",
	"worried",
	"upset",
}

// Annotation is the derived mood data attached to an entry.
type Annotation struct {
	MoodScore int      `json:"moodScore"`
	Tags      []string `json:"tags"`
}

// AnnotationResult wraps an annotation with its provenance. Degraded means the
// model path failed and the fallback analyzer produced the values; callers
// never see this as an error.
type AnnotationResult struct {
	Annotation Annotation
	Degraded   bool
}

// AnnotationService turns raw entry text into a bounded mood score and tags.
type AnnotationService struct {
	client *ai.Client
}

func NewAnnotationService(client *ai.Client) *AnnotationService {
	return &AnnotationService{client: client}
}

const annotationSystemPrompt = "You analyze journal entries. " +
	"Respond with a JSON object containing exactly two keys: " +
	`"moodScore" (an integer from 1 to 10, where 1 is very negative and 10 is very positive) ` +
	`and "tags" (an array of at most 5 short topic tags, each 1-2 words). ` +
	"Respond with JSON only, no prose."

// Annotate never fails outward: any model or parse failure downgrades to the
// deterministic fallback analyzer.
func (s *AnnotationService) Annotate(ctx context.Context, text string) AnnotationResult {
	raw, err := s.client.Complete(ctx, annotationSystemPrompt, text)
	if err != nil {
		log.Printf("[annotation] degraded to fallback: %v", err)
		return AnnotationResult{Annotation: FallbackAnalyze(text), Degraded: true}
	}

	annotation, err := parseAnnotation(raw)
	if err != nil {
		log.Printf("[annotation] unusable model output, degraded to fallback: %v", err)
		return AnnotationResult{Annotation: FallbackAnalyze(text), Degraded: true}
	}

	return AnnotationResult{Annotation: annotation}
}

// parseAnnotation coerces the model's reply into a valid Annotation. Partial
// or mistyped fields are repaired (default score, generic tag); only
// undecodable JSON is an error.
func parseAnnotation(raw string) (Annotation, error) {
	cleaned := StripCodeFences(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Annotation{}, err
	}

	score := NeutralMoodScore
	switch v := parsed["moodScore"].(type) {
	case float64:
		score = int(v)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			score = int(n)
		}
	}
	score = ClampMoodScore(score)

	tags := make([]string, 0, MaxTags)
	if rawTags, ok := parsed["tags"].([]interface{}); ok {
		for _, rt := range rawTags {
			t, ok := rt.(string)
			if !ok {
				continue
			}
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			tags = append(tags, t)
			if len(tags) == MaxTags {
				break
			}
		}
	}
	if len(tags) == 0 {
		tags = []string{GenericTag}
	}

	return Annotation{MoodScore: score, Tags: tags}, nil
}

// FallbackAnalyze is the deterministic offline scorer: count positive and
// negative word hits and shift a neutral baseline. Pure function of text.
func FallbackAnalyze(text string) Annotation {
	lowered := strings.ToLower(text)

	score := NeutralMoodScore
	for _, w := range basePositiveWords {
		if strings.Contains(lowered, w) {
			score++
		}
	}
	for _, w := range baseNegativeWords {
		if strings.Contains(lowered, w) {
			score--
		}
	}

	return Annotation{
		MoodScore: ClampMoodScore(score),
		Tags:      []string{FallbackTag},
	}
}

// ClampMoodScore bounds a score to the valid range.
func ClampMoodScore(score int) int {
	if score < MinMoodScore {
		return MinMoodScore
	}
	if score > MaxMoodScore {
		return MaxMoodScore
	}
	return score
}

// StripCodeFences removes a single markdown code fence wrapper, with or
// without a language marker, from around a model reply.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag like "json" on the opening fence line
	if idx := strings.Index(trimmed, "\n"); idx != -1 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
