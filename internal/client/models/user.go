package models

import "strings"

// User is the authenticated account as reported by the backend.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email,omitempty"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
	LastLogin *Timestamp `json:"last_login,omitempty"`
}

// DisplayName prefers the person's names and falls back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}
