package dto

import "github.com/hongminglow/all-in-dash/internal/models"

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// MessageResponse is the body of calls that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// NotificationTokenRequest registers the device token push notifications go to.
type NotificationTokenRequest struct {
	Token string `json:"token"`
}
