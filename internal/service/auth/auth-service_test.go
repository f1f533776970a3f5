package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"DonorLink/entity"
	"DonorLink/internal/config"
)

type fakeRepo struct {
	users map[primitive.ObjectID]entity.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[primitive.ObjectID]entity.User)}
}

func (f *fakeRepo) InsertUser(user entity.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeRepo) GetUserByID(id primitive.ObjectID) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (f *fakeRepo) GetUserByEmail(email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListUsersByRole(role string) ([]entity.User, error) {
	var users []entity.User
	for _, user := range f.users {
		if role == "" || user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeRepo) TouchLastLogin(_ primitive.ObjectID) error {
	return nil
}

func newTestService(ttlHours int) (*Service, *fakeRepo) {
	conf := &config.Config{}
	conf.Auth.Secret = "test-secret"
	conf.Auth.Issuer = "donorlink-test"
	conf.Auth.TokenTTLHours = ttlHours

	repo := newFakeRepo()
	svc := NewAuthService(conf, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.SetRepository(repo)
	return svc, repo
}

func registerRequest() entity.RegisterRequest {
	return entity.RegisterRequest{
		Username: "maria",
		Email:    "maria@example.com",
		Password: "hunter22",
		Role:     entity.DonorRole,
		Phone:    "555-0101",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(1)

	user, token, err := svc.Register(registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("register returned empty token")
	}
	if user.Password == "hunter22" {
		t.Fatal("password stored in plain text")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID.Hex() || claims.Role != entity.DonorRole {
		t.Errorf("unexpected claims: %+v", claims)
	}

	loggedIn, loginToken, err := svc.Login("maria@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID || loginToken == "" {
		t.Error("login did not resolve the registered user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(1)

	if _, _, err := svc.Register(registerRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Register(registerRequest()); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newTestService(1)

	if _, _, err := svc.Login("ghost@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	if _, _, err := svc.Register(registerRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login("maria@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	svc, _ := newTestService(-1) // tokens already expired

	_, token, err := svc.Register(registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestAuthenticateByToken(t *testing.T) {
	svc, _ := newTestService(1)

	user, token, err := svc.Register(registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	caller, err := svc.AuthenticateByToken(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if caller.UserID != user.ID.Hex() || caller.Username != "maria" || caller.Role != entity.DonorRole {
		t.Errorf("unexpected caller: %+v", caller)
	}

	if _, err := svc.AuthenticateByToken("not.a.token"); err == nil {
		t.Error("expected error for garbage token")
	}
}
