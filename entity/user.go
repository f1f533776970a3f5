package entity

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"DonorLink/internal/lib/validate"
)

const (
	AdminRole     = "Admin"
	DonorRole     = "Donor"
	NeedyRole     = "Needy"
	VolunteerRole = "Volunteer"
)

// User is a platform account. Role-specific profile fields are only
// populated for the matching role.
type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username string             `json:"username" bson:"username" validate:"required"`
	Email    string             `json:"email" bson:"email" validate:"required,email"`
	Password string             `json:"-" bson:"password"`
	Role     string             `json:"role" bson:"role" validate:"required,oneof=Admin Donor Needy Volunteer"`
	Phone    string             `json:"phone" bson:"phone" validate:"required"`
	Avatar   string             `json:"avatar" bson:"avatar" validate:"omitempty"`

	// Needy
	Address             string `json:"address,omitempty" bson:"address,omitempty"`
	Age                 int    `json:"age,omitempty" bson:"age,omitempty"`
	SocioEconomicStatus string `json:"socio_economic_status,omitempty" bson:"socio_economic_status,omitempty"`

	// Volunteer
	Skills       string `json:"skills,omitempty" bson:"skills,omitempty"`
	Availability string `json:"availability,omitempty" bson:"availability,omitempty"`

	LastLogin time.Time `json:"last_login" bson:"last_login"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == AdminRole
}

// Profile is the public view of a user, safe to show to other users.
type Profile struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	Email    string             `json:"email" bson:"email"`
	Role     string             `json:"role" bson:"role"`
	Avatar   string             `json:"avatar" bson:"avatar"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Avatar:   u.Avatar,
	}
}

// RegisterRequest is the registration payload. Needy and Volunteer roles
// carry extra required profile fields.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=Admin Donor Needy Volunteer"`
	Phone    string `json:"phone" validate:"required"`

	Address             string `json:"address" validate:"required_if=Role Needy"`
	Age                 int    `json:"age" validate:"required_if=Role Needy"`
	SocioEconomicStatus string `json:"socio_economic_status" validate:"required_if=Role Needy"`

	Skills       string `json:"skills" validate:"required_if=Role Volunteer"`
	Availability string `json:"availability" validate:"required_if=Role Volunteer"`
}

func (r *RegisterRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}
