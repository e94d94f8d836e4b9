package domain

import (
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	// Identifier accepts either the username or the email address.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        *UserInfo `json:"user"`
}

type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@+-]{3,150}$`)
)

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *RegisterRequest) Validate() error {
	verr := NewValidationError()
	if r.Username == "" {
		verr.Add("username", "username is required")
	} else if !usernameRegex.MatchString(r.Username) {
		verr.Add("username", "username must be 3-150 characters: letters, digits and @ . + - _")
	}
	if r.Email == "" {
		verr.Add("email", "email is required")
	} else if !emailRegex.MatchString(r.Email) {
		verr.Add("email", "invalid email format")
	}
	if r.Password == "" {
		verr.Add("password", "password is required")
	} else if len(r.Password) < 8 {
		verr.Add("password", "password must be at least 8 characters")
	}
	if r.ConfirmPassword != r.Password {
		verr.Add("confirm_password", "passwords do not match")
	}
	return verr.OrNil()
}

func (r *LoginRequest) Normalize() {
	r.Identifier = strings.TrimSpace(r.Identifier)
}

func (r *LoginRequest) Validate() error {
	verr := NewValidationError()
	if r.Identifier == "" {
		verr.Add("identifier", "username or email is required")
	}
	if r.Password == "" {
		verr.Add("password", "password is required")
	}
	return verr.OrNil()
}

// Role returns the JWT role for this user. Staff accounts get access to the
// admin route group.
func (u *User) Role() string {
	if u.IsStaff {
		return "admin"
	}
	return "member"
}

// ToUserInfo converts User to UserInfo (without sensitive data)
func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsActive: u.IsActive,
	}
}
