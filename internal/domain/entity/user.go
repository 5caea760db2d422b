package entity

// User is the account profile reported by the accounts API.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// AuthStatus is the result of an authentication status check.
type AuthStatus struct {
	Authenticated bool
	User          *User
}

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is submitted to the signup endpoint.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
