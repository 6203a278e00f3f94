package storage

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildUpload creates a real multipart.FileHeader by round-tripping a
// form through the stdlib reader, so Open() works in SaveAll.
func buildUpload(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="attachments"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["attachments"][0]
}

func TestValidateUploadRejectsUnknownType(t *testing.T) {
	fh := buildUpload(t, "notes.txt", []byte("hello"))
	err := ValidateUpload(fh)
	if err == nil || !strings.Contains(err.Error(), "only images and videos") {
		t.Errorf("got %v", err)
	}
}

func TestValidateUploadRejectsOversize(t *testing.T) {
	fh := buildUpload(t, "clip.mp4", []byte("x"))
	fh.Size = MaxAttachmentBytes + 1
	err := ValidateUpload(fh)
	if err == nil || !strings.Contains(err.Error(), "smaller than 10MB") {
		t.Errorf("got %v", err)
	}
}

func TestValidateUploadAcceptsAllowedTypes(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.gif", "e.mp4", "f.mov", "g.avi"} {
		if err := ValidateUpload(buildUpload(t, name, []byte("data"))); err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}
}

func TestSaveAllRejectsBatchBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	store := NewAttachmentStore(dir)
	files := []*multipart.FileHeader{
		buildUpload(t, "scene.jpg", []byte("img")),
		buildUpload(t, "malware.exe", []byte("nope")),
	}
	if _, err := store.SaveAll(files); err == nil {
		t.Fatal("expected validation error for the batch")
	}
	// The valid file must not have been written either.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no writes, found %d entries", len(entries))
	}
}

func TestSaveAllStoresMetadata(t *testing.T) {
	dir := t.TempDir()
	store := NewAttachmentStore(dir)
	files := []*multipart.FileHeader{
		buildUpload(t, "front gate.jpg", []byte("photo-1")),
		buildUpload(t, "patrol.mp4", []byte("clip-1")),
	}
	atts, err := store.SaveAll(files)
	if err != nil {
		t.Fatal(err)
	}
	if len(atts) != 2 {
		t.Fatalf("got %d attachments", len(atts))
	}
	if atts[0].Name != "front gate.jpg" || atts[0].Type != "image/jpeg" {
		t.Errorf("first attachment metadata: %+v", atts[0])
	}
	if atts[1].Name != "patrol.mp4" || atts[1].Type != "video/mp4" {
		t.Errorf("second attachment metadata: %+v", atts[1])
	}
	for _, a := range atts {
		if a.Path == "" || !strings.HasPrefix(a.Path, "incident-attachments/") {
			t.Errorf("unexpected stored path %q", a.Path)
		}
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(a.Path))); err != nil {
			t.Errorf("stored file missing: %v", err)
		}
	}
}
