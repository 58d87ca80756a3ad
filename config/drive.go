package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewDriveService builds a Google Drive client from a service account.
// GOOGLE_DRIVE_CREDENTIALS_BASE64 takes precedence over the credentials file.
func NewDriveService(ctx context.Context, cfg *Config) (*drive.Service, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveFileScope)}

	if cfg.DriveCredentialsBase64 != "" {
		log.Printf("Using Drive credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(cfg.DriveCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decoding drive credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decoded))
	} else {
		if _, err := os.Stat(cfg.DriveCredentialsFile); err != nil {
			return nil, fmt.Errorf("drive credentials file: %w", err)
		}
		log.Printf("Using Drive credentials file: %s", cfg.DriveCredentialsFile)
		opts = append(opts, option.WithCredentialsFile(cfg.DriveCredentialsFile))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return svc, nil
}
