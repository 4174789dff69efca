package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"cookplanner/internal/config"
)

// DriveFile is the metadata we track for a file in the watched folder.
type DriveFile struct {
	ID           string
	Name         string
	MimeType     string
	ModifiedTime string
	Size         int64
}

// CloudFiles lists and downloads files from the cookbook folder.
type CloudFiles interface {
	List(ctx context.Context) ([]DriveFile, error)
	Download(ctx context.Context, fileID, dest string) error
}

// DriveClient reads the configured Google Drive folder using a service
// account with read-only scope.
type DriveClient struct {
	service  *drive.Service
	folderID string
}

// NewDriveClient authenticates against the Drive API with the configured
// service account credentials file.
func NewDriveClient(ctx context.Context, cfg *config.Config) (*DriveClient, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(cfg.DriveCredentialsFile),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &DriveClient{service: service, folderID: cfg.DriveFolderID}, nil
}

// List returns every non-trashed file in the watched folder, following
// pagination.
func (c *DriveClient) List(ctx context.Context) ([]DriveFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", c.folderID)

	var files []DriveFile
	pageToken := ""
	for {
		call := c.service.Files.List().
			Context(ctx).
			Q(query).
			PageSize(100).
			Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list Drive folder: %w", err)
		}
		for _, f := range result.Files {
			files = append(files, DriveFile{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}

		pageToken = result.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

// Download fetches the file content and writes it to dest, creating parent
// directories as needed.
func (c *DriveClient) Download(ctx context.Context, fileID, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// isSupportedFile reports whether a Drive entry is a cookbook source we can
// process (PDF or page image).
func isSupportedFile(mimeType, name string) bool {
	switch mimeType {
	case "application/pdf", "image/jpeg", "image/jpg", "image/png":
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// fileType classifies a Drive entry as pdf, jpeg, png or unknown.
func fileType(mimeType, name string) string {
	mime := strings.ToLower(mimeType)
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(mime, "pdf") || strings.HasSuffix(lower, ".pdf"):
		return "pdf"
	case strings.Contains(mime, "jpeg") || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg"):
		return "jpeg"
	case strings.Contains(mime, "png") || strings.HasSuffix(lower, ".png"):
		return "png"
	}
	return "unknown"
}
