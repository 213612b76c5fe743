package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore uploads objects into one Google Drive folder and shares them
// read-only with anyone holding the link.
type DriveStore struct {
	svc      *drive.Service
	folderID string
}

// NewDriveStore authenticates with a service account read from
// credentialsPath, or from credentialsJSON when the path is empty.
func NewDriveStore(ctx context.Context, credentialsPath, credentialsJSON, folderID string) (*DriveStore, error) {
	raw := []byte(credentialsJSON)
	if credentialsPath != "" {
		b, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("GDRIVE_CREDENTIALS_PATH or GDRIVE_CREDENTIALS_JSON must be set")
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("load drive credentials: %w", err)
	}
	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	log.Printf("storage_drive_ready folder_id=%s", folderID)
	return &DriveStore{svc: svc, folderID: folderID}, nil
}

func (s *DriveStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	meta := &drive.File{Name: key, MimeType: contentType}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	f, err := s.svc.Files.Create(meta).
		Media(r, googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive upload: %w", err)
	}

	_, err = s.svc.Permissions.Create(f.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		// an unshared file is useless to the catalog
		_ = s.svc.Files.Delete(f.Id).Context(ctx).Do()
		return "", fmt.Errorf("drive share: %w", err)
	}

	return DrivePublicURL(f.Id), nil
}

// DrivePublicURL is the direct-view link for a shared file.
func DrivePublicURL(fileID string) string {
	return "https://drive.google.com/uc?id=" + fileID
}
