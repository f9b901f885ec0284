package models

// AuthResponse is returned by a successful sign-in
type AuthResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterResponse acknowledges a queued registration
type RegisterResponse struct {
	Message string `json:"message"`
}
