package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact is a persistent conversation pairing one administrator-side
// participant with one client-side participant. The unordered (admin,
// client) pair is unique: creating a contact for an existing pair returns
// the existing record.
type Contact struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Admin     primitive.ObjectID `json:"admin" bson:"admin"`
	Client    primitive.ObjectID `json:"client" bson:"client"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Participants returns both participant ids.
func (c *Contact) Participants() (primitive.ObjectID, primitive.ObjectID) {
	return c.Admin, c.Client
}

// HasParticipant reports whether the user is one of the two participants.
func (c *Contact) HasParticipant(userID primitive.ObjectID) bool {
	return c.Admin == userID || c.Client == userID
}

// Counterpart returns the other participant for a given viewer. The second
// result is false when the viewer is not a participant at all.
func (c *Contact) Counterpart(viewerID primitive.ObjectID) (primitive.ObjectID, bool) {
	switch viewerID {
	case c.Admin:
		return c.Client, true
	case c.Client:
		return c.Admin, true
	}
	return primitive.NilObjectID, false
}

// ContactSummary is one row of the per-viewer contact feed: the contact with
// both participant profiles resolved, the most recent message if any, and
// the viewer's unread count. Unread is recomputed from the messages
// collection on every listing, never cached.
type ContactSummary struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Admin       Profile            `json:"admin" bson:"admin"`
	Client      Profile            `json:"client" bson:"client"`
	LastMessage *Message           `json:"last_message,omitempty" bson:"last_message,omitempty"`
	Unread      int                `json:"unread" bson:"unread"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
