package services

import (
	"context"
	"errors"
	"time"

	"github.com/moodlog/moodlog-backend/internal/database"
	"github.com/moodlog/moodlog-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const entriesCollection = "entries"

var (
	// ErrEntryNotFound covers unknown and malformed entry ids alike.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEntryForbidden means the entry exists but belongs to someone else.
	ErrEntryForbidden = errors.New("entry belongs to another user")
)

// EntryPatch carries the owner-editable fields of an update. Nil fields are
// left unchanged.
type EntryPatch struct {
	Text      *string
	Tags      *[]string
	CreatedAt *time.Time
}

// EnsureEntryIndexes creates the indexes the listing query leans on.
func EnsureEntryIndexes(ctx context.Context) error {
	_, err := database.DB.Collection(entriesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "mood_score", Value: -1}}},
	})
	return err
}

// CreateEntry persists a freshly annotated entry and returns the stored
// record. Annotation always happens before this call; there is no
// persist-without-annotation path.
func CreateEntry(ctx context.Context, userID, text string, annotation Annotation) (*models.Entry, error) {
	now := time.Now()
	entry := models.Entry{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
		Text:      text,
		MoodScore: annotation.MoodScore,
		Tags:      annotation.Tags,
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}

	if _, err := database.DB.Collection(entriesCollection).InsertOne(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntryByID looks up a single entry. A malformed id is reported the same
// as a missing one.
func GetEntryByID(ctx context.Context, id string) (*models.Entry, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrEntryNotFound
	}

	var entry models.Entry
	err = database.DB.Collection(entriesCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// getOwnedEntry is the single ownership guard shared by every mutating
// operation: fetch, then confirm the caller owns the entry.
func getOwnedEntry(ctx context.Context, id, callerID string) (*models.Entry, error) {
	entry, err := GetEntryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != callerID {
		return nil, ErrEntryForbidden
	}
	return entry, nil
}

// UpdateEntry applies the provided fields to an owned entry. Text edits do
// not re-run annotation; the stored score and tags stand until the owner
// changes them explicitly.
func UpdateEntry(ctx context.Context, id, callerID string, patch EntryPatch) (*models.Entry, error) {
	entry, err := getOwnedEntry(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now()}
	if patch.Text != nil {
		set["text"] = *patch.Text
		entry.Text = *patch.Text
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
		entry.Tags = tags
	}
	if patch.CreatedAt != nil {
		set["created_at"] = *patch.CreatedAt
		entry.CreatedAt = *patch.CreatedAt
	}

	_, err = database.DB.Collection(entriesCollection).UpdateOne(ctx,
		bson.M{"_id": entry.ID},
		bson.M{"$set": set},
	)
	if err != nil {
		return nil, err
	}

	entry.UpdatedAt = set["updated_at"].(time.Time)
	return entry, nil
}

// DeleteEntry removes an owned entry.
func DeleteEntry(ctx context.Context, id, callerID string) error {
	entry, err := getOwnedEntry(ctx, id, callerID)
	if err != nil {
		return err
	}

	_, err = database.DB.Collection(entriesCollection).DeleteOne(ctx, bson.M{"_id": entry.ID})
	return err
}

// QueryEntries runs the composed filter for one user and returns the page
// plus the total matching count.
func QueryEntries(ctx context.Context, userID string, f EntryFilter) ([]models.Entry, int64, error) {
	coll := database.DB.Collection(entriesCollection)
	filter := f.MongoFilter(userID)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := coll.Find(ctx, filter, f.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	entries := make([]models.Entry, 0, f.Limit)
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
