package dto

import "github.com/payvost/payvost-web-sub011/internal/models"

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Country     string `json:"country"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
