package models

// TokenPair is what a successful register/login/refresh returns: a short
// lived JWT plus an opaque single-use refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}
