package firebase

import (
	"context"
	"fmt"
	"log"

	fb "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewApp initializes the Firebase app. An empty credentialsFile falls back to
// application default credentials.
func NewApp(ctx context.Context, projectID, credentialsFile string) (*fb.App, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	var cfg *fb.Config
	if projectID != "" {
		cfg = &fb.Config{ProjectID: projectID}
	}

	app, err := fb.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	log.Println("[Firebase] App initialized")
	return app, nil
}
