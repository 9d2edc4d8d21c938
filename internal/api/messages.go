// Package api defines the gophauth.AuthService gRPC contract: request and
// response messages, a JSON wire codec, the service descriptor and a client.
package api

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetUserRequest struct {
	ID int64 `json:"id"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

type DeleteUserRequest struct {
	ID int64 `json:"id"`
}

type DeleteUserResponse struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
