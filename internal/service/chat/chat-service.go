package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"DonorLink/entity"
	"DonorLink/internal/lib/sl"
)

var (
	ErrNotFound   = errors.New("contact not found")
	ErrValidation = errors.New("invalid request")
	ErrForbidden  = errors.New("caller is not a participant of the contact")
)

// Repository is the durable storage behind the messaging core. Conversations
// and messages are the only shared mutable state; every mutation is a single
// document-level operation.
type Repository interface {
	GetUserByID(id primitive.ObjectID) (*entity.User, error)

	FindContactByPair(a, b primitive.ObjectID) (*entity.Contact, error)
	GetContact(id primitive.ObjectID) (*entity.Contact, error)
	InsertContact(contact entity.Contact) (primitive.ObjectID, error)
	TouchContact(id primitive.ObjectID) error
	GetContactFeed(viewerID primitive.ObjectID) ([]entity.ContactSummary, error)

	InsertMessage(msg entity.Message) (primitive.ObjectID, error)
	GetChatHistory(contactID primitive.ObjectID) ([]entity.ChatEntry, error)
	CountUnread(contactID, viewerID primitive.ObjectID) (int64, error)
	MarkRead(contactID, senderID primitive.ObjectID) (int64, error)
}

type Service struct {
	repository Repository
	log        *slog.Logger
}

func NewChatService(logger *slog.Logger) *Service {
	return &Service{
		log: logger.With(sl.Module("chat-service")),
	}
}

func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

// CreateContact opens a conversation between the calling administrator-side
// user and a client. Creation is idempotent over the unordered pair: when a
// contact already exists in either orientation it is returned unchanged with
// the second result true.
func (s *Service) CreateContact(adminID, clientID string) (*entity.Contact, bool, error) {
	admin, err := parseID(adminID)
	if err != nil {
		return nil, false, err
	}
	client, err := parseID(clientID)
	if err != nil {
		return nil, false, err
	}
	if admin == client {
		return nil, false, fmt.Errorf("%w: contact with self", ErrValidation)
	}

	for _, id := range []primitive.ObjectID{admin, client} {
		user, err := s.repository.GetUserByID(id)
		if err != nil {
			return nil, false, err
		}
		if user == nil {
			return nil, false, fmt.Errorf("%w: participant %s not found", ErrValidation, id.Hex())
		}
	}

	existing, err := s.repository.FindContactByPair(admin, client)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, true, nil
	}

	id, err := s.repository.InsertContact(entity.Contact{
		Admin:  admin,
		Client: client,
	})
	if err != nil {
		return nil, false, err
	}

	contact, err := s.repository.GetContact(id)
	if err != nil {
		return nil, false, err
	}
	if contact == nil {
		return nil, false, fmt.Errorf("contact %s vanished after insert", id.Hex())
	}

	s.log.Info("contact created",
		slog.String("contact", contact.ID.Hex()),
		slog.String("admin", admin.Hex()),
		slog.String("client", client.Hex()),
	)

	return contact, false, nil
}

// ListContacts returns the viewer's contact feed with profiles, last message
// and unread counts resolved.
func (s *Service) ListContacts(viewerID string) ([]entity.ContactSummary, error) {
	viewer, err := parseID(viewerID)
	if err != nil {
		return nil, err
	}
	return s.repository.GetContactFeed(viewer)
}

// GetHistory returns the full ordered message list of a contact. An empty
// contact id means no conversation is selected yet and yields an empty
// result. The viewer must be a participant.
func (s *Service) GetHistory(viewerID, contactID string) ([]entity.ChatEntry, error) {
	if contactID == "" || contactID == "null" {
		return []entity.ChatEntry{}, nil
	}

	viewer, err := parseID(viewerID)
	if err != nil {
		return nil, err
	}
	contact, err := s.resolveContact(contactID)
	if err != nil {
		return nil, err
	}
	if !contact.HasParticipant(viewer) {
		return nil, ErrForbidden
	}

	return s.repository.GetChatHistory(contact.ID)
}

// SendMessage is the two-phase send: the message is durably appended first,
// then re-read with participant profiles resolved so the caller can hand the
// enriched entry to the live delivery hub. A persistence failure surfaces
// before any broadcast can happen.
func (s *Service) SendMessage(senderID, contactID, receiverID, content string) (*entity.ChatEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty message content", ErrValidation)
	}

	sender, err := parseID(senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := parseID(receiverID)
	if err != nil {
		return nil, err
	}
	contact, err := s.resolveContact(contactID)
	if err != nil {
		return nil, err
	}

	if !contact.HasParticipant(sender) {
		return nil, ErrForbidden
	}
	counterpart, _ := contact.Counterpart(sender)
	if receiver != counterpart {
		return nil, fmt.Errorf("%w: receiver is not the other participant", ErrValidation)
	}

	msg := entity.Message{
		Contact:   contact.ID,
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.repository.InsertMessage(msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id

	if err := s.repository.TouchContact(contact.ID); err != nil {
		s.log.Warn("touch contact", sl.Err(err))
	}

	entry, err := s.enrich(msg)
	if err != nil {
		return nil, err
	}

	s.log.Debug("message sent",
		slog.String("contact", contact.ID.Hex()),
		slog.String("message", id.Hex()),
	)

	return entry, nil
}

// MarkRead flips every unread message the named counterpart sent into this
// contact to read and returns how many changed. Idempotent; zero updates is
// a valid outcome, not an error.
func (s *Service) MarkRead(viewerID, contactID, counterpartID string) (int64, error) {
	viewer, err := parseID(viewerID)
	if err != nil {
		return 0, err
	}
	counterpart, err := parseID(counterpartID)
	if err != nil {
		return 0, err
	}
	contact, err := s.resolveContact(contactID)
	if err != nil {
		return 0, err
	}

	expected, ok := contact.Counterpart(viewer)
	if !ok {
		return 0, ErrForbidden
	}
	if counterpart != expected {
		return 0, fmt.Errorf("%w: counterpart is not the other participant", ErrValidation)
	}

	return s.repository.MarkRead(contact.ID, counterpart)
}

// AuthorizeJoin reports whether the user may subscribe to the contact's
// live room. Implements the hub's MessageHandler.
func (s *Service) AuthorizeJoin(userID, contactID string) error {
	user, err := parseID(userID)
	if err != nil {
		return err
	}
	contact, err := s.resolveContact(contactID)
	if err != nil {
		return err
	}
	if !contact.HasParticipant(user) {
		return ErrForbidden
	}
	return nil
}

// HandleChatMessage is the live-channel entry point for sending a message.
// Implements the hub's MessageHandler.
func (s *Service) HandleChatMessage(senderID, contactID, receiverID, content string) (*entity.ChatEntry, error) {
	return s.SendMessage(senderID, contactID, receiverID, content)
}

// Unread returns the viewer's live unread count for one contact.
func (s *Service) Unread(viewerID, contactID string) (int64, error) {
	viewer, err := parseID(viewerID)
	if err != nil {
		return 0, err
	}
	contact, err := s.resolveContact(contactID)
	if err != nil {
		return 0, err
	}
	if !contact.HasParticipant(viewer) {
		return 0, ErrForbidden
	}

	return s.repository.CountUnread(contact.ID, viewer)
}

func (s *Service) resolveContact(contactID string) (*entity.Contact, error) {
	id, err := parseID(contactID)
	if err != nil {
		return nil, err
	}
	contact, err := s.repository.GetContact(id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}

func (s *Service) enrich(msg entity.Message) (*entity.ChatEntry, error) {
	sender, err := s.repository.GetUserByID(msg.Sender)
	if err != nil {
		return nil, err
	}
	receiver, err := s.repository.GetUserByID(msg.Receiver)
	if err != nil {
		return nil, err
	}
	if sender == nil || receiver == nil {
		return nil, fmt.Errorf("%w: message participant not found", ErrValidation)
	}

	return &entity.ChatEntry{
		ID:        msg.ID,
		Contact:   msg.Contact,
		Sender:    sender.Profile(),
		Receiver:  receiver.Profile(),
		Content:   msg.Content,
		Read:      msg.Read,
		CreatedAt: msg.CreatedAt,
	}, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", ErrValidation, id)
	}
	return oid, nil
}
