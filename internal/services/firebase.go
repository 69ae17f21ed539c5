package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewFirebaseApp initialises the Firebase app shared by push messaging and
// file storage. Base64 credentials win over the credentials file, which is
// useful for cloud deployments (Railway, Fly.io, Render) where you can't
// upload files easily. It returns (nil, nil) when neither is available.
func NewFirebaseApp(ctx context.Context, credentialsFile, credentialsBase64, bucket string) (*firebase.App, error) {
	var opt option.ClientOption
	switch {
	case credentialsBase64 != "":
		credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(credentialsJSON)
	case credentialsFile != "":
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, nil
		}
		opt = option.WithCredentialsFile(credentialsFile)
	default:
		return nil, nil
	}

	var cfg *firebase.Config
	if bucket != "" {
		cfg = &firebase.Config{StorageBucket: bucket}
	}
	app, err := firebase.NewApp(ctx, cfg, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	return app, nil
}
