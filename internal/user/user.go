// Package user defines the user record shared by the registration, profile
// and login flows, together with the validators those flows run on user input.
package user

// User is a user profile.
// Field names in the JSON tags are read and written by external persistence
// collaborators and must stay stable.
type User struct {
	// Name is the user's real (display) name.
	Name string `json:"name"`

	// ID is the unique username.
	ID string `json:"id"`

	// Password is stored as given (plaintext).
	Password string `json:"password"`

	// EmailAddress is the contact email.
	EmailAddress string `json:"emailAddress"`

	// HomeAddress is a free-form postal address.
	HomeAddress string `json:"homeAddress"`

	// Title is an honorific such as Mr or Mrs.
	Title string `json:"title"`

	// UserRole is the role of the user in the system.
	UserRole Role `json:"userRole"`
}

// New creates a user with the fields known at sign-up.
// The remaining fields are filled in later through the setters.
func New(name, id, password string, role Role) *User {
	return &User{
		Name:     name,
		ID:       id,
		Password: password,
		UserRole: role,
	}
}

func (u *User) GetName() string { return u.Name }

func (u *User) SetName(name string) { u.Name = name }

func (u *User) GetID() string { return u.ID }

func (u *User) SetID(id string) { u.ID = id }

// GetPassword returns the stored password. Persistence collaborators rely on it.
func (u *User) GetPassword() string { return u.Password }

func (u *User) SetPassword(password string) { u.Password = password }

func (u *User) GetEmailAddress() string { return u.EmailAddress }

func (u *User) SetEmailAddress(emailAddress string) { u.EmailAddress = emailAddress }

func (u *User) GetHomeAddress() string { return u.HomeAddress }

func (u *User) SetHomeAddress(homeAddress string) { u.HomeAddress = homeAddress }

func (u *User) GetTitle() string { return u.Title }

func (u *User) SetTitle(title string) { u.Title = title }

func (u *User) GetUserRole() Role { return u.UserRole }

func (u *User) SetUserRole(role Role) { u.UserRole = role }
