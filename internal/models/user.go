package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// User is a registered account. The persisted list lives under a single
// key as a JSON array, so the field names are part of the storage format.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Session is the login record of one browser profile.
type Session struct {
	Role      UserRole  `json:"role"`
	Email     string    `json:"email,omitempty"`
	LoginTime time.Time `json:"loginTime"`
}

// Age is how long ago the session was opened, measured at now.
func (s Session) Age(now time.Time) time.Duration {
	return now.Sub(s.LoginTime)
}
