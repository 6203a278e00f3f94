// Package storage persists uploaded incident attachments on disk.  Files
// are written before the incident row is inserted; when the row insert
// fails afterwards the stored files are simply orphaned, there is no
// compensating delete.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/guardpost/security-patrol/internal/model"
)

// MaxAttachmentBytes is the per-file upload limit (10MB).
const MaxAttachmentBytes = 10 << 20

// allowedExtensions maps the accepted file extensions to the mime type
// recorded on the attachment.  Images and videos only.
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
}

// AttachmentStore writes uploaded files beneath a root directory.  Stored
// paths are relative to the root so the database stays portable across
// deployments.
type AttachmentStore struct {
	Root string
}

// NewAttachmentStore returns a store rooted at dir.
func NewAttachmentStore(dir string) *AttachmentStore { return &AttachmentStore{Root: dir} }

// ValidateUpload checks one uploaded file against the size and type
// rules.  The returned error message is safe to show to the caller.
func ValidateUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxAttachmentBytes {
		return fmt.Errorf("%s: each file must be smaller than 10MB", fh.Filename)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("%s: only images and videos are allowed", fh.Filename)
	}
	return nil
}

// mimeFor resolves the recorded mime type for an upload, preferring the
// extension mapping over the client-supplied Content-Type header.
func mimeFor(fh *multipart.FileHeader) string {
	if m, ok := allowedExtensions[strings.ToLower(filepath.Ext(fh.Filename))]; ok {
		return m
	}
	return fh.Header.Get("Content-Type")
}

// SaveAll validates every upload first and only then writes them, so a
// bad file in the batch rejects the whole request before any bytes land
// on disk.  Each file is stored under incident-attachments/ with a random
// hex name; the original filename survives only in the returned metadata.
func (s *AttachmentStore) SaveAll(files []*multipart.FileHeader) ([]model.Attachment, error) {
	for _, fh := range files {
		if err := ValidateUpload(fh); err != nil {
			return nil, err
		}
	}
	out := make([]model.Attachment, 0, len(files))
	for _, fh := range files {
		att, err := s.saveOne(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, nil
}

func (s *AttachmentStore) saveOne(fh *multipart.FileHeader) (model.Attachment, error) {
	name, err := randomHex(20)
	if err != nil {
		return model.Attachment{}, err
	}
	rel := path.Join("incident-attachments", name+strings.ToLower(filepath.Ext(fh.Filename)))
	abs := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return model.Attachment{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return model.Attachment{}, err
	}
	defer src.Close()

	dst, err := os.Create(abs)
	if err != nil {
		return model.Attachment{}, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return model.Attachment{}, err
	}
	return model.Attachment{
		Name: fh.Filename,
		Path: rel,
		Type: mimeFor(fh),
	}, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data, used for stored filenames.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
