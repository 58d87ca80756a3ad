package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/evea/evea_backend/models"
)

var (
	errDriveQuota     = errors.New("drive: storage quota or rate limit exceeded")
	errDriveForbidden = errors.New("drive: service account lacks permission")
)

// DriveDocumentStore uploads documents into a Google Drive folder owned by a service account
type DriveDocumentStore struct {
	svc         *drive.Service
	folderID    string
	publicLinks bool
}

func NewDriveDocumentStore(svc *drive.Service, folderID string, publicLinks bool) *DriveDocumentStore {
	return &DriveDocumentStore{svc: svc, folderID: folderID, publicLinks: publicLinks}
}

func (s *DriveDocumentStore) Upload(ctx context.Context, file models.FileUpload) (models.FileRef, error) {
	meta := &drive.File{Name: file.Name, MimeType: file.MimeType}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	created, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(file.Data), googleapi.ContentType(file.MimeType)).
		SupportsAllDrives(true).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return models.FileRef{}, wrapDriveError("upload "+file.Name, err)
	}

	if s.publicLinks {
		perm := &drive.Permission{Type: "anyone", Role: "reader"}
		if _, err := s.svc.Permissions.Create(created.Id, perm).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
			// the file is still reachable by reviewers with folder access
			log.Printf("Failed to share drive file %s: %v", created.Id, err)
		}
	}

	url := created.WebViewLink
	if url == "" {
		url = "https://drive.google.com/file/d/" + created.Id + "/view"
	}
	return models.FileRef{ID: created.Id, URL: url}, nil
}

func (s *DriveDocumentStore) Delete(ctx context.Context, id string) error {
	err := s.svc.Files.Delete(id).SupportsAllDrives(true).Context(ctx).Do()
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return nil
	}
	return wrapDriveError("delete "+id, err)
}

// wrapDriveError folds quota and permission failures into stable sentinels
func wrapDriveError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %v", op, errDriveQuota, err)
		case http.StatusForbidden:
			for _, item := range gerr.Errors {
				switch item.Reason {
				case "storageQuotaExceeded", "userRateLimitExceeded", "rateLimitExceeded", "quotaExceeded":
					return fmt.Errorf("%s: %w: %v", op, errDriveQuota, err)
				}
			}
			return fmt.Errorf("%s: %w: %v", op, errDriveForbidden, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
