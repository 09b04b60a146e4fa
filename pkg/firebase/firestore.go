package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

const DefaultDatabase = "(default)"

// NewFirestore opens the task store. Named databases need a direct client
// because the Firebase app only exposes the default one.
func NewFirestore(ctx context.Context, app *fb.App, projectID, database, credentialsFile string) (*firestore.Client, error) {
	if database == "" || database == DefaultDatabase {
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firestore: %w", err)
		}
		return client, nil
	}

	if projectID == "" {
		return nil, fmt.Errorf("project id is required for Firestore database %q", database)
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore database %s: %w", database, err)
	}
	return client, nil
}
