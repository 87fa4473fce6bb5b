// Package models holds the request and response bodies of the HTTP API.
package models

import "github.com/patric-chuzhbe/socialgood/internal/user"

// FieldValidationRequest asks for a single field to be checked. Field comes
// from the URL, Value from the JSON body.
type FieldValidationRequest struct {
	Field string `json:"-" validate:"required,oneof=name id password emailAddress homeAddress"`
	Value string `json:"value"`
}

type FieldValidationResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// FormValidationResponse maps every failing field to its message.
type FormValidationResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// UserRequest is the body of registration, update and whole-form validation
// requests. Field presence is checked by the user validators, not by tags, so
// that clients get the user-facing messages.
type UserRequest struct {
	Name         string    `json:"name"`
	ID           string    `json:"id"`
	Password     string    `json:"password"`
	EmailAddress string    `json:"emailAddress"`
	HomeAddress  string    `json:"homeAddress"`
	Title        string    `json:"title"`
	UserRole     user.Role `json:"userRole" validate:"userrole"`
}

// ToUser builds a user record. An empty role becomes user.RoleUser.
func (r UserRequest) ToUser() user.User {
	role := r.UserRole
	if role == "" {
		role = user.RoleUser
	}

	u := user.New(r.Name, r.ID, r.Password, role)
	u.SetEmailAddress(r.EmailAddress)
	u.SetHomeAddress(r.HomeAddress)
	u.SetTitle(r.Title)

	return *u
}

// UserResponse is a user record as returned to clients; it never carries the password.
type UserResponse struct {
	Name         string    `json:"name"`
	ID           string    `json:"id"`
	EmailAddress string    `json:"emailAddress"`
	HomeAddress  string    `json:"homeAddress"`
	Title        string    `json:"title"`
	UserRole     user.Role `json:"userRole"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		Name:         u.GetName(),
		ID:           u.GetID(),
		EmailAddress: u.GetEmailAddress(),
		HomeAddress:  u.GetHomeAddress(),
		Title:        u.GetTitle(),
		UserRole:     u.GetUserRole(),
	}
}

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type InternalStatsResponse struct {
	Users int `json:"users"`
}
