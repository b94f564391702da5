package session

import (
	"time"
	"unicode"
)

// ID is the opaque session token handed to clients.
type ID string

// Session is who is signed in. It is created by a successful login and removed on logout.
type Session struct {
	ID        ID        `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	GuestName = "Guest"
	NoEmail   = "No email found"
)

// DisplayName falls back to GuestName when no username is stored.
func (s Session) DisplayName() string {
	if s.Username == "" {
		return GuestName
	}
	return s.Username
}

// DisplayEmail falls back to NoEmail when no email is stored.
func (s Session) DisplayEmail() string {
	if s.Email == "" {
		return NoEmail
	}
	return s.Email
}

// Initial is the avatar letter: first rune of the display name, upper-cased.
func (s Session) Initial() string {
	for _, r := range s.DisplayName() {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// UserInfo is what the upstream login endpoint reports for an employee.
type UserInfo struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status int    `json:"status"`
}

// LoginResult is the upstream login response. UserInfo is nil when the login failed.
type LoginResult struct {
	UserInfo *UserInfo `json:"userInfo"`
	Error    string    `json:"error"`
}

// Accepted reports the upstream success rule: userInfo present with status 1.
func (r LoginResult) Accepted() bool {
	return r.UserInfo != nil && r.UserInfo.Status == 1
}
