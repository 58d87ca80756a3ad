package services

import (
	"context"
	"path"
	"strings"

	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/utils"
)

// DiskDocumentStore keeps documents under a local upload directory.
// Used when no Drive credentials are configured.
type DiskDocumentStore struct {
	baseDir string
	baseURL string
}

func NewDiskDocumentStore(baseDir, baseURL string) *DiskDocumentStore {
	return &DiskDocumentStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskDocumentStore) Upload(ctx context.Context, file models.FileUpload) (models.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return models.FileRef{}, err
	}
	rel, err := utils.SaveFileToPath(s.baseDir, "documents", file.Name, file.Data)
	if err != nil {
		return models.FileRef{}, err
	}
	return models.FileRef{ID: rel, URL: s.baseURL + "/" + path.Join("uploads", rel)}, nil
}

func (s *DiskDocumentStore) Delete(ctx context.Context, id string) error {
	return utils.RemoveFileFromPath(s.baseDir, id)
}
