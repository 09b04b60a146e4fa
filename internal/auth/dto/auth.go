package dto

type RegisterFCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
