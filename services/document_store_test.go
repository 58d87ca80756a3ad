package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/evea/evea_backend/models"
	"github.com/evea/evea_backend/testutil"
)

func TestDiskDocumentStore(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskDocumentStore(dir, "http://localhost:8080/")

	ref, err := store.Upload(context.Background(), models.FileUpload{
		Name: "../../etc/reg_pan.pdf", MimeType: "application/pdf", Data: testutil.PDFBytes(64),
	})
	require.NoError(t, err)
	assert.Equal(t, "documents/reg_pan.pdf", ref.ID)
	assert.Equal(t, "http://localhost:8080/uploads/documents/reg_pan.pdf", ref.URL)

	data, err := os.ReadFile(filepath.Join(dir, "documents", "reg_pan.pdf"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	require.NoError(t, store.Delete(context.Background(), ref.ID))
	_, err = os.Stat(filepath.Join(dir, "documents", "reg_pan.pdf"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(context.Background(), ref.ID))
}

func TestWrapDriveError(t *testing.T) {
	quota := &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "storageQuotaExceeded"}}}
	assert.True(t, errors.Is(wrapDriveError("upload", quota), errDriveQuota))

	limited := &googleapi.Error{Code: http.StatusTooManyRequests}
	assert.True(t, errors.Is(wrapDriveError("upload", limited), errDriveQuota))

	forbidden := &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "insufficientFilePermissions"}}}
	err := wrapDriveError("upload", forbidden)
	assert.True(t, errors.Is(err, errDriveForbidden))
	assert.False(t, errors.Is(err, errDriveQuota))

	plain := errors.New("connection reset")
	assert.ErrorIs(t, wrapDriveError("delete x", plain), plain)
}
