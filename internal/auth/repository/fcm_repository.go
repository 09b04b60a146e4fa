package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FCMTokenRepository defines the interface for push credential registration
type FCMTokenRepository interface {
	SaveToken(ctx context.Context, userID, token string) error
	DeleteToken(ctx context.Context, userID string) error
}

// fcmTokenRepository keeps the single device token on the user document
type fcmTokenRepository struct {
	client *firestore.Client
}

// NewFCMTokenRepository creates a new instance of fcmTokenRepository
func NewFCMTokenRepository(client *firestore.Client) FCMTokenRepository {
	return &fcmTokenRepository{
		client: client,
	}
}

// SaveToken merges fcmToken into users/{uid}, creating the document if needed
func (r *fcmTokenRepository) SaveToken(ctx context.Context, userID, token string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"fcmToken": token,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save fcm token for %s: %w", userID, err)
	}
	return nil
}

// DeleteToken removes the token so the user stops receiving pushes on sign-out
func (r *fcmTokenRepository) DeleteToken(ctx context.Context, userID string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "fcmToken", Value: firestore.Delete},
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete fcm token for %s: %w", userID, err)
	}
	return nil
}
