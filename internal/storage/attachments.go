package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// AttachmentStore uploads message attachments and returns the opaque ref
// (a tokened download URL) that the messaging core stores untouched.
type AttachmentStore struct {
	client *gcs.Client
	bucket string
}

func NewAttachmentStore(client *gcs.Client, bucket string) *AttachmentStore {
	return &AttachmentStore{client: client, bucket: bucket}
}

func (s *AttachmentStore) Ready() bool {
	return s != nil && s.client != nil && s.bucket != ""
}

// Upload streams the file to attachments/<uuid> with a firebase-style
// download token and returns the public URL as the attachment ref.
func (s *AttachmentStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if !s.Ready() {
		return "", fmt.Errorf("attachment storage not configured")
	}
	objectPath := "attachments/" + uuid.NewString()
	token := uuid.NewString()

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
		"originalName":                  filename,
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	ref := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.bucket, url.PathEscape(objectPath), token)
	return ref, nil
}
