package model

import "strings"

// User is an account as the API exposes it. Uniqueness of ID and Username is the
// server's business.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"fullName"`
	ProfilePicURL  string `json:"profilePicUrl,omitempty"`
	PrivateAccount bool   `json:"privateAccount"`
}

// Visibility is the label shown on profile headers.
func (u User) Visibility() string {
	if u.PrivateAccount {
		return "Private account"
	}
	return "Public account"
}

// ContainsUser reports whether a user with the given ID is present in users.
func ContainsUser(users []User, id int64) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// AuthResponse is returned by POST /auth/login.
type AuthResponse struct {
	Token string `json:"token"`
}

// SignUpResponse is returned by POST /auth/signup.
type SignUpResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginPayload is the body of POST /auth/login.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both fields are present. Whitespace-only counts as missing.
func (p LoginPayload) Validate() error {
	fe := FieldErrors{}
	if isBlank(p.Username) {
		fe["username"] = ErrUsernameRequired
	}
	if isBlank(p.Password) {
		fe["password"] = ErrPasswordRequired
	}
	return fe.orNil()
}

// SignupPayload is the body of POST /auth/signup.
type SignupPayload struct {
	FullName       string `json:"fullName"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	ProfilePicURL  string `json:"profilePicUrl,omitempty"`
	PrivateAccount bool   `json:"privateAccount"`
}

func (p SignupPayload) Validate() error {
	fe := FieldErrors{}
	if isBlank(p.FullName) {
		fe["fullName"] = ErrFullNameRequired
	}
	if isBlank(p.Username) {
		fe["username"] = ErrUsernameRequired
	}
	if len(p.Password) < MinPasswordLength {
		fe["password"] = ErrPasswordTooShort
	}
	if p.ProfilePicURL != "" && !IsHTTPURL(p.ProfilePicURL) {
		fe["profilePicUrl"] = ErrInvalidProfilePicURL
	}
	return fe.orNil()
}

// Credentials returns the login payload matching this signup.
func (p SignupPayload) Credentials() LoginPayload {
	return LoginPayload{Username: p.Username, Password: p.Password}
}

// UpdateUserPayload is the body of PUT /users/{id}. Nil fields are left unchanged.
type UpdateUserPayload struct {
	FullName       *string `json:"fullName,omitempty"`
	Username       *string `json:"username,omitempty"`
	Password       *string `json:"password,omitempty"`
	ProfilePicURL  *string `json:"profilePicUrl,omitempty"`
	PrivateAccount *bool   `json:"privateAccount,omitempty"`
}

func (p UpdateUserPayload) Validate() error {
	fe := FieldErrors{}
	if p.FullName != nil && isBlank(*p.FullName) {
		fe["fullName"] = ErrFullNameRequired
	}
	if p.Username != nil && isBlank(*p.Username) {
		fe["username"] = ErrUsernameRequired
	}
	if p.Password != nil && len(*p.Password) < MinPasswordLength {
		fe["password"] = ErrPasswordTooShort
	}
	if p.ProfilePicURL != nil && *p.ProfilePicURL != "" && !IsHTTPURL(*p.ProfilePicURL) {
		fe["profilePicUrl"] = ErrInvalidProfilePicURL
	}
	return fe.orNil()
}

// NormalizeUsername trims what users type into username inputs.
func NormalizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}
