package chat

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"DonorLink/entity"
)

// fakeRepo is an in-memory stand-in for the Mongo repository.
type fakeRepo struct {
	users    map[primitive.ObjectID]entity.User
	contacts []entity.Contact
	messages []entity.Message

	failInsertMessage bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[primitive.ObjectID]entity.User)}
}

func (f *fakeRepo) addUser(username, role string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.users[id] = entity.User{ID: id, Username: username, Role: role}
	return id
}

func (f *fakeRepo) GetUserByID(id primitive.ObjectID) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (f *fakeRepo) FindContactByPair(a, b primitive.ObjectID) (*entity.Contact, error) {
	for i := range f.contacts {
		c := f.contacts[i]
		if (c.Admin == a && c.Client == b) || (c.Admin == b && c.Client == a) {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetContact(id primitive.ObjectID) (*entity.Contact, error) {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			c := f.contacts[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) InsertContact(contact entity.Contact) (primitive.ObjectID, error) {
	contact.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	f.contacts = append(f.contacts, contact)
	return contact.ID, nil
}

func (f *fakeRepo) TouchContact(id primitive.ObjectID) error {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			f.contacts[i].UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (f *fakeRepo) GetContactFeed(viewerID primitive.ObjectID) ([]entity.ContactSummary, error) {
	var feed []entity.ContactSummary
	for _, c := range f.contacts {
		if !c.HasParticipant(viewerID) {
			continue
		}
		summary := entity.ContactSummary{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if admin, _ := f.GetUserByID(c.Admin); admin != nil {
			summary.Admin = admin.Profile()
		}
		if client, _ := f.GetUserByID(c.Client); client != nil {
			summary.Client = client.Profile()
		}
		for i := range f.messages {
			msg := f.messages[i]
			if msg.Contact != c.ID {
				continue
			}
			if summary.LastMessage == nil || msg.CreatedAt.After(summary.LastMessage.CreatedAt) {
				last := msg
				summary.LastMessage = &last
			}
			if msg.Receiver == viewerID && !msg.Read {
				summary.Unread++
			}
		}
		feed = append(feed, summary)
	}
	return feed, nil
}

func (f *fakeRepo) InsertMessage(msg entity.Message) (primitive.ObjectID, error) {
	if f.failInsertMessage {
		return primitive.NilObjectID, fmt.Errorf("insert failed")
	}
	msg.ID = primitive.NewObjectID()
	f.messages = append(f.messages, msg)
	return msg.ID, nil
}

func (f *fakeRepo) GetChatHistory(contactID primitive.ObjectID) ([]entity.ChatEntry, error) {
	var entries []entity.ChatEntry
	for _, msg := range f.messages {
		if msg.Contact != contactID {
			continue
		}
		entry := entity.ChatEntry{
			ID:        msg.ID,
			Contact:   msg.Contact,
			Content:   msg.Content,
			Read:      msg.Read,
			CreatedAt: msg.CreatedAt,
		}
		if sender, _ := f.GetUserByID(msg.Sender); sender != nil {
			entry.Sender = sender.Profile()
		}
		if receiver, _ := f.GetUserByID(msg.Receiver); receiver != nil {
			entry.Receiver = receiver.Profile()
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID.Hex() < entries[j].ID.Hex()
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (f *fakeRepo) CountUnread(contactID, viewerID primitive.ObjectID) (int64, error) {
	var count int64
	for _, msg := range f.messages {
		if msg.Contact == contactID && msg.Receiver == viewerID && !msg.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkRead(contactID, senderID primitive.ObjectID) (int64, error) {
	var updated int64
	for i := range f.messages {
		msg := &f.messages[i]
		if msg.Contact == contactID && msg.Sender == senderID && !msg.Read {
			msg.Read = true
			updated++
		}
	}
	return updated, nil
}

func newTestService(repo *fakeRepo) *Service {
	svc := NewChatService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.SetRepository(repo)
	return svc
}

func TestCreateContactIdempotent(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	client := repo.addUser("donor", entity.DonorRole)
	svc := newTestService(repo)

	first, existed, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	if existed {
		t.Fatal("first creation reported as already existed")
	}

	second, existed, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("repeat create contact: %v", err)
	}
	if !existed {
		t.Fatal("repeat creation not reported as already existed")
	}
	if first.ID != second.ID {
		t.Errorf("expected same contact id, got %s and %s", first.ID.Hex(), second.ID.Hex())
	}

	// Reversed orientation must also resolve to the existing contact.
	reversed, existed, err := svc.CreateContact(client.Hex(), admin.Hex())
	if err != nil {
		t.Fatalf("reversed create contact: %v", err)
	}
	if !existed || reversed.ID != first.ID {
		t.Errorf("reversed pair created a second contact: %s vs %s", reversed.ID.Hex(), first.ID.Hex())
	}

	if len(repo.contacts) != 1 {
		t.Errorf("expected exactly one contact record, got %d", len(repo.contacts))
	}
}

func TestCreateContactValidation(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	svc := newTestService(repo)

	if _, _, err := svc.CreateContact(admin.Hex(), admin.Hex()); !errors.Is(err, ErrValidation) {
		t.Errorf("contact with self: expected ErrValidation, got %v", err)
	}

	unknown := primitive.NewObjectID()
	if _, _, err := svc.CreateContact(admin.Hex(), unknown.Hex()); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown client: expected ErrValidation, got %v", err)
	}

	if _, _, err := svc.CreateContact(admin.Hex(), "not-an-id"); !errors.Is(err, ErrValidation) {
		t.Errorf("malformed id: expected ErrValidation, got %v", err)
	}
}

func TestSendMessageAndUnreadFlow(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	client := repo.addUser("needy", entity.NeedyRole)
	svc := newTestService(repo)

	contact, _, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	// Fresh contact: visible in the feed with no last message and unread 0.
	feed, err := svc.ListContacts(client.Hex())
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 feed entry, got %d", len(feed))
	}
	if feed[0].LastMessage != nil || feed[0].Unread != 0 {
		t.Errorf("fresh contact: last=%v unread=%d", feed[0].LastMessage, feed[0].Unread)
	}

	entry, err := svc.SendMessage(admin.Hex(), contact.ID.Hex(), client.Hex(), "Hello")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if entry.Content != "Hello" || entry.Read {
		t.Errorf("unexpected entry: content=%q read=%v", entry.Content, entry.Read)
	}
	if entry.Sender.ID != admin || entry.Receiver.ID != client {
		t.Error("entry participants not resolved to sender/receiver")
	}

	history, err := svc.GetHistory(client.Hex(), contact.ID.Hex())
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 1 || history[0].Content != "Hello" {
		t.Fatalf("unexpected history: %+v", history)
	}

	unread, err := svc.Unread(client.Hex(), contact.ID.Hex())
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if unread != 1 {
		t.Errorf("expected unread 1, got %d", unread)
	}

	feed, _ = svc.ListContacts(client.Hex())
	if feed[0].Unread != 1 || feed[0].LastMessage == nil || feed[0].LastMessage.Content != "Hello" {
		t.Errorf("feed after send: unread=%d last=%+v", feed[0].Unread, feed[0].LastMessage)
	}

	updated, err := svc.MarkRead(client.Hex(), contact.ID.Hex(), admin.Hex())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated != 1 {
		t.Errorf("expected 1 updated, got %d", updated)
	}

	// Idempotent: a second call changes nothing.
	updated, err = svc.MarkRead(client.Hex(), contact.ID.Hex(), admin.Hex())
	if err != nil {
		t.Fatalf("repeat mark read: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected 0 updated on repeat, got %d", updated)
	}

	unread, _ = svc.Unread(client.Hex(), contact.ID.Hex())
	if unread != 0 {
		t.Errorf("expected unread 0 after mark read, got %d", unread)
	}
}

func TestSendMessageValidation(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	client := repo.addUser("donor", entity.DonorRole)
	outsider := repo.addUser("volunteer", entity.VolunteerRole)
	svc := newTestService(repo)

	contact, _, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	if _, err := svc.SendMessage(admin.Hex(), contact.ID.Hex(), client.Hex(), "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("blank content: expected ErrValidation, got %v", err)
	}

	missing := primitive.NewObjectID()
	if _, err := svc.SendMessage(admin.Hex(), missing.Hex(), client.Hex(), "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown contact: expected ErrNotFound, got %v", err)
	}

	if _, err := svc.SendMessage(outsider.Hex(), contact.ID.Hex(), client.Hex(), "hi"); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider sender: expected ErrForbidden, got %v", err)
	}

	if _, err := svc.SendMessage(admin.Hex(), contact.ID.Hex(), outsider.Hex(), "hi"); !errors.Is(err, ErrValidation) {
		t.Errorf("outsider receiver: expected ErrValidation, got %v", err)
	}

	if len(repo.messages) != 0 {
		t.Errorf("invalid sends persisted %d messages", len(repo.messages))
	}
}

func TestHistoryOrderingAndAccess(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	client := repo.addUser("needy", entity.NeedyRole)
	outsider := repo.addUser("donor", entity.DonorRole)
	svc := newTestService(repo)

	contact, _, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	for i := 0; i < 5; i++ {
		sender, receiver := admin, client
		if i%2 == 1 {
			sender, receiver = client, admin
		}
		if _, err := svc.SendMessage(sender.Hex(), contact.ID.Hex(), receiver.Hex(), fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	history, err := svc.GetHistory(admin.Hex(), contact.ID.Hex())
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Errorf("history out of order at %d", i)
		}
	}

	// No contact selected yet yields an empty backfill.
	empty, err := svc.GetHistory(admin.Hex(), "")
	if err != nil {
		t.Fatalf("empty contact id: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty history, got %d entries", len(empty))
	}

	if _, err := svc.GetHistory(outsider.Hex(), contact.ID.Hex()); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider history: expected ErrForbidden, got %v", err)
	}
}

func TestMarkReadBinding(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	client := repo.addUser("donor", entity.DonorRole)
	outsider := repo.addUser("volunteer", entity.VolunteerRole)
	svc := newTestService(repo)

	contact, _, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	if _, err := svc.SendMessage(admin.Hex(), contact.ID.Hex(), client.Hex(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := svc.MarkRead(outsider.Hex(), contact.ID.Hex(), admin.Hex()); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider viewer: expected ErrForbidden, got %v", err)
	}

	if _, err := svc.MarkRead(client.Hex(), contact.ID.Hex(), outsider.Hex()); !errors.Is(err, ErrValidation) {
		t.Errorf("wrong counterpart: expected ErrValidation, got %v", err)
	}

	// The viewer's own messages must never be marked by their call.
	if _, err := svc.SendMessage(client.Hex(), contact.ID.Hex(), admin.Hex(), "reply"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	updated, err := svc.MarkRead(client.Hex(), contact.ID.Hex(), admin.Hex())
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated != 1 {
		t.Errorf("expected only the admin's message marked, got %d", updated)
	}
	unreadAdmin, _ := svc.Unread(admin.Hex(), contact.ID.Hex())
	if unreadAdmin != 1 {
		t.Errorf("admin's unread from client should stay 1, got %d", unreadAdmin)
	}
}

func TestAuthorizeJoin(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	client := repo.addUser("needy", entity.NeedyRole)
	outsider := repo.addUser("donor", entity.DonorRole)
	svc := newTestService(repo)

	contact, _, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	if err := svc.AuthorizeJoin(client.Hex(), contact.ID.Hex()); err != nil {
		t.Errorf("participant join refused: %v", err)
	}
	if err := svc.AuthorizeJoin(outsider.Hex(), contact.ID.Hex()); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider join: expected ErrForbidden, got %v", err)
	}
	if err := svc.AuthorizeJoin(client.Hex(), primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown contact join: expected ErrNotFound, got %v", err)
	}
}

func TestSendMessagePersistFailure(t *testing.T) {
	repo := newFakeRepo()
	admin := repo.addUser("admin", entity.AdminRole)
	client := repo.addUser("donor", entity.DonorRole)
	svc := newTestService(repo)

	contact, _, err := svc.CreateContact(admin.Hex(), client.Hex())
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	repo.failInsertMessage = true
	if _, err := svc.SendMessage(admin.Hex(), contact.ID.Hex(), client.Hex(), "hello"); err == nil {
		t.Fatal("expected error when persistence fails")
	}
	if len(repo.messages) != 0 {
		t.Errorf("failed insert left %d messages", len(repo.messages))
	}
}
