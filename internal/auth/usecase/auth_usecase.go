package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	authdomain "teamtodo-backend/internal/auth/domain"
	"teamtodo-backend/internal/auth/repository"

	"firebase.google.com/go/v4/auth"
)

// AuthUsecase defines identity and push-registration operations
type AuthUsecase interface {
	// ValidateToken verifies a Firebase ID token and returns the stable user id
	ValidateToken(ctx context.Context, idToken string) (string, error)

	// Me returns the caller's directory record, nil if not yet synced
	Me(ctx context.Context, userID string) (*authdomain.User, error)

	RegisterFCMToken(ctx context.Context, userID, token string) error
	UnregisterFCMToken(ctx context.Context, userID string) error
}

// TokenVerifier is satisfied by *auth.Client
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	verifier TokenVerifier
	userRepo repository.UserRepository
	fcmRepo  repository.FCMTokenRepository
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(verifier TokenVerifier, userRepo repository.UserRepository, fcmRepo repository.FCMTokenRepository) AuthUsecase {
	return &authUsecase{
		verifier: verifier,
		userRepo: userRepo,
		fcmRepo:  fcmRepo,
	}
}

func (u *authUsecase) ValidateToken(ctx context.Context, idToken string) (string, error) {
	if u.verifier == nil {
		return "", errors.New("token verifier not configured")
	}
	token, err := u.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", authdomain.ErrInvalidToken, err)
	}
	if token.UID == "" {
		return "", authdomain.ErrInvalidToken
	}
	return token.UID, nil
}

func (u *authUsecase) Me(ctx context.Context, userID string) (*authdomain.User, error) {
	return u.userRepo.FindByID(ctx, userID)
}

func (u *authUsecase) RegisterFCMToken(ctx context.Context, userID, token string) error {
	if err := u.fcmRepo.SaveToken(ctx, userID, token); err != nil {
		return err
	}
	log.Printf("[Auth] FCM token %s registered for user %s", authdomain.MaskToken(token), userID)
	return nil
}

func (u *authUsecase) UnregisterFCMToken(ctx context.Context, userID string) error {
	return u.fcmRepo.DeleteToken(ctx, userID)
}
