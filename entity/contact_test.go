package entity

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestContactCounterpart(t *testing.T) {
	admin := primitive.NewObjectID()
	client := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	contact := Contact{ID: primitive.NewObjectID(), Admin: admin, Client: client}

	if got, ok := contact.Counterpart(admin); !ok || got != client {
		t.Errorf("admin's counterpart: got %v ok=%v", got, ok)
	}
	if got, ok := contact.Counterpart(client); !ok || got != admin {
		t.Errorf("client's counterpart: got %v ok=%v", got, ok)
	}
	if _, ok := contact.Counterpart(outsider); ok {
		t.Error("outsider must have no counterpart")
	}

	if !contact.HasParticipant(admin) || !contact.HasParticipant(client) {
		t.Error("participants not recognized")
	}
	if contact.HasParticipant(outsider) {
		t.Error("outsider recognized as participant")
	}
}
