package authapi

import "placemate/cmd/identity"

type signupRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	College        *string `json:"college,omitempty"`
	GraduationYear *int    `json:"graduationYear,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest and logoutRequest accept the token in the body for clients
// that do not use the cookie transport.
type refreshRequest struct {
	RefreshToken *string `json:"refreshToken,omitempty"`
}

type logoutRequest struct {
	RefreshToken *string `json:"refreshToken,omitempty"`
}

// authData is the payload for signup and login responses. RefreshToken is
// populated only when the cookie transport is disabled.
type authData struct {
	User         identity.User `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken,omitempty"`
}

type refreshData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type meData struct {
	User identity.User `json:"user"`
}
