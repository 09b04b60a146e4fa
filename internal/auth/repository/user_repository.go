package repository

import (
	"context"
	"fmt"

	authdomain "teamtodo-backend/internal/auth/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// UserRepository resolves directory records
type UserRepository interface {
	// FindByID returns nil, nil when the user does not exist
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
}

// firestoreUserRepository implements UserRepository on users/{uid}
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a new Firestore-backed UserRepository
func NewUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	if id == "" {
		return nil, nil
	}
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	var user authdomain.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	user.ID = doc.Ref.ID
	return &user, nil
}
