package domain

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// User is the directory record stored at users/{uid}
type User struct {
	ID          string    `json:"id" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"displayName" firestore:"displayName"`
	FCMToken    string    `json:"-" firestore:"fcmToken,omitempty"` // Don't expose token in JSON
	CreatedAt   time.Time `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
}

// PushCredential returns the device credential, if the user enabled push.
func (u *User) PushCredential() (string, bool) {
	if u == nil || u.FCMToken == "" {
		return "", false
	}
	return u.FCMToken, true
}

// MaskToken shortens a credential for logs.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}
