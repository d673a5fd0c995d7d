package services

import (
	"net/url"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage  = 1
	DefaultLimit = 8
	// MaxLimit keeps a single page request from dragging the whole history.
	MaxLimit = 100
)

// Mood buckets. Canonical thresholds: happy >= 7, 5 <= neutral < 7, sad < 5.
const (
	MoodAll     = "all"
	MoodHappy   = "happy"
	MoodNeutral = "neutral"
	MoodSad     = "sad"

	HappyMinScore   = 7
	NeutralMinScore = 5
)

// Sort modes. Sorting is applied before pagination.
const (
	SortLatest  = "latest"
	SortOldest  = "oldest"
	SortHighest = "highest"
	SortLowest  = "lowest"
)

// EntryFilter is the composed listing criteria for one query. All fields are
// optional; zero values mean "no constraint" except Page/Limit which carry
// defaults.
type EntryFilter struct {
	Page      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
	Mood      string
	Search    string
	SortBy    string
}

// ParseEntryFilter reads listing params from the query string, applying
// defaults and normalizing the end date to end-of-day so the range is
// inclusive.
func ParseEntryFilter(q url.Values) EntryFilter {
	f := EntryFilter{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		Mood:   MoodAll,
		SortBy: SortLatest,
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		f.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		f.Limit = v
		if f.Limit > MaxLimit {
			f.Limit = MaxLimit
		}
	}

	if t, ok := parseDate(q.Get("startDate")); ok {
		f.StartDate = &t
	}
	if t, ok := parseDate(q.Get("endDate")); ok {
		end := EndOfDay(t)
		f.EndDate = &end
	}

	switch q.Get("mood") {
	case MoodHappy, MoodNeutral, MoodSad:
		f.Mood = q.Get("mood")
	}

	f.Search = q.Get("search")

	switch q.Get("sortBy") {
	case SortOldest, SortHighest, SortLowest:
		f.SortBy = q.Get("sortBy")
	}

	return f
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// EndOfDay normalizes a date to 23:59:59.999 so an endDate bound includes the
// whole day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

// MongoFilter builds the conjunctive Mongo filter for this criteria, always
// scoped to userID. The search term is internally disjunctive across text and
// tags.
func (f EntryFilter) MongoFilter(userID string) bson.M {
	filter := bson.M{"user_id": userID}

	if f.StartDate != nil || f.EndDate != nil {
		dateRange := bson.M{}
		if f.StartDate != nil {
			dateRange["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			dateRange["$lte"] = *f.EndDate
		}
		filter["created_at"] = dateRange
	}

	switch f.Mood {
	case MoodHappy:
		filter["mood_score"] = bson.M{"$gte": HappyMinScore}
	case MoodNeutral:
		filter["mood_score"] = bson.M{"$gte": NeutralMinScore, "$lt": HappyMinScore}
	case MoodSad:
		filter["mood_score"] = bson.M{"$lt": NeutralMinScore}
	}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"text": pattern},
			bson.M{"tags": pattern},
		}
	}

	return filter
}

// FindOptions maps the sort mode and pagination onto Mongo find options.
func (f EntryFilter) FindOptions() *options.FindOptions {
	opts := options.Find()

	switch f.SortBy {
	case SortOldest:
		opts.SetSort(bson.D{{Key: "created_at", Value: 1}})
	case SortHighest:
		opts.SetSort(bson.D{{Key: "mood_score", Value: -1}})
	case SortLowest:
		opts.SetSort(bson.D{{Key: "mood_score", Value: 1}})
	default:
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}

	opts.SetSkip(int64((f.Page - 1) * f.Limit))
	opts.SetLimit(int64(f.Limit))

	return opts
}

// TotalPages is ceil(total/limit) with a floor of one page, so an empty
// history still gives the client a valid current page.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	return pages
}
