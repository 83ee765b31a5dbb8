package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func uploadHeader(t *testing.T, field, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File[field][0]
}

func TestSave(t *testing.T) {
	store := NewFileStore(t.TempDir())
	fh := uploadHeader(t, "foto", "Retrato.JPG", "fake image bytes")

	ref, err := store.Save("fotos", fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "fotos/") || !strings.HasSuffix(ref, ".jpg") {
		t.Fatalf("ref = %q, want fotos/<hex>.jpg", ref)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir, filepath.FromSlash(ref)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestRemove(t *testing.T) {
	store := NewFileStore(t.TempDir())
	fh := uploadHeader(t, "pdf", "diploma.pdf", "%PDF-1.4")

	ref, err := store.Save("certificados", fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Remove(ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir, filepath.FromSlash(ref))); !os.IsNotExist(err) {
		t.Fatalf("file still present after remove: %v", err)
	}
}

func TestSaveUniqueNames(t *testing.T) {
	store := NewFileStore(t.TempDir())
	fh := uploadHeader(t, "pdf", "diploma.pdf", "%PDF-1.4")

	a, err := store.Save("certificados", fh)
	if err != nil {
		t.Fatalf("save a: %v", err)
	}
	b, err := store.Save("certificados", fh)
	if err != nil {
		t.Fatalf("save b: %v", err)
	}
	if a == b {
		t.Fatalf("two saves produced the same reference %q", a)
	}
}
