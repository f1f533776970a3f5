package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"DonorLink/entity"
	"DonorLink/internal/config"
	"DonorLink/internal/lib/sl"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
)

// Repository is the user storage the auth service depends on.
type Repository interface {
	InsertUser(user entity.User) (primitive.ObjectID, error)
	GetUserByID(id primitive.ObjectID) (*entity.User, error)
	GetUserByEmail(email string) (*entity.User, error)
	ListUsersByRole(role string) ([]entity.User, error)
	TouchLastLogin(id primitive.ObjectID) error
}

// Claims is the JWT claims set issued on login and registration.
type Claims struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	repository Repository
	secret     []byte
	issuer     string
	validity   time.Duration
	log        *slog.Logger
}

func NewAuthService(conf *config.Config, logger *slog.Logger) *Service {
	return &Service{
		secret:   []byte(conf.Auth.Secret),
		issuer:   conf.Auth.Issuer,
		validity: time.Duration(conf.Auth.TokenTTLHours) * time.Hour,
		log:      logger.With(sl.Module("auth-service")),
	}
}

func (s *Service) SetRepository(repository Repository) {
	s.repository = repository
}

// Register creates a user with a bcrypt-hashed password and returns the
// stored user together with a fresh access token.
func (s *Service) Register(req entity.RegisterRequest) (*entity.User, string, error) {
	existing, err := s.repository.GetUserByEmail(req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := entity.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
		Role:     req.Role,
		Phone:    req.Phone,
	}
	switch req.Role {
	case entity.NeedyRole:
		user.Address = req.Address
		user.Age = req.Age
		user.SocioEconomicStatus = req.SocioEconomicStatus
	case entity.VolunteerRole:
		user.Skills = req.Skills
		user.Availability = req.Availability
	}

	id, err := s.repository.InsertUser(user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user registered",
		slog.String("user", user.Username),
		slog.String("role", user.Role),
	)

	return &user, token, nil
}

// Login verifies the password and returns the user with a fresh access
// token. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (s *Service) Login(email, password string) (*entity.User, string, error) {
	user, err := s.repository.GetUserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.repository.TouchLastLogin(user.ID); err != nil {
		s.log.Warn("touch last login", sl.Err(err))
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUser resolves a user by hex id.
func (s *Service) GetUser(id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.repository.GetUserByID(oid)
}

// ListUsers returns the public user directory, optionally filtered by role.
func (s *Service) ListUsers(role string) ([]entity.Profile, error) {
	users, err := s.repository.ListUsersByRole(role)
	if err != nil {
		return nil, err
	}

	profiles := make([]entity.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

// GenerateToken creates a signed JWT for a user.
func (s *Service) GenerateToken(user *entity.User) (string, error) {
	claims := Claims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a JWT string.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// AuthenticateByToken resolves a bearer token into the authenticated caller.
func (s *Service) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &entity.UserAuth{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
