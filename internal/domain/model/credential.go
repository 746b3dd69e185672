package model

// Credentials is the login request body accepted by the backend.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the payload of a successful login response.
type LoginResult struct {
	Token string `json:"token"`
}
