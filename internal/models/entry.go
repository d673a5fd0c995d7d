package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is a single journal record. MoodScore and Tags come from the
// annotation service at creation time; CreatedAt is owner-editable so entries
// can be backdated.
type Entry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	UserID    string             `bson:"user_id" json:"user_id,omitempty"`
	Text      string             `bson:"text" json:"text"`
	MoodScore int                `bson:"mood_score" json:"mood_score"`
	Tags      []string           `bson:"tags" json:"tags"`
}
