package entity

// UserAuth is the authenticated caller attached to a request context by the
// authenticate middleware.
type UserAuth struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
