package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single chat message. Immutable after insertion except for
// the read flag, which only ever transitions false to true.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Contact   primitive.ObjectID `json:"contact" bson:"contact"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Receiver  primitive.ObjectID `json:"receiver" bson:"receiver"`
	Content   string             `json:"content" bson:"content"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ChatEntry is a message with both participant profiles resolved, as served
// to chat windows over REST history and the live channel.
type ChatEntry struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Contact   primitive.ObjectID `json:"contact" bson:"contact"`
	Sender    Profile            `json:"sender" bson:"sender"`
	Receiver  Profile            `json:"receiver" bson:"receiver"`
	Content   string             `json:"content" bson:"content"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
