package users

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the local profile row for a federated identity. AuthID is the
// subject claim of the identity provider's token; credentials never live
// here.
type User struct {
	ID        int64     `json:"id"`
	AuthID    string    `json:"auth_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
