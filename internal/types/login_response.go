package types

// LoginResponse is the wire shape returned by the login endpoint. The
// token is minted at the HTTP layer after the engine has verified the
// credentials.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	Error    string `json:"error,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}
