package fetch

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kstenerud/builder-go/internal/logging"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip member %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write zip member %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write tar member %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestExtractZip(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "src.zip")
	data := buildZip(t, map[string]string{
		"Cargo.toml":  "[package]\n",
		"src/main.rs": "fn main() {}\n",
	})
	if err := os.WriteFile(archive, data, 0644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	dest := t.TempDir()
	if err := extractArchive(archive, dest); err != nil {
		t.Fatalf("extractArchive: %v", err)
	}

	assertFileContent(t, filepath.Join(dest, "Cargo.toml"), "[package]\n")
	assertFileContent(t, filepath.Join(dest, "src", "main.rs"), "fn main() {}\n")
}

func TestExtractTarGz(t *testing.T) {
	for _, ext := range []string{".tar.gz", ".tgz"} {
		t.Run(ext, func(t *testing.T) {
			archive := filepath.Join(t.TempDir(), "src"+ext)
			data := buildTarGz(t, map[string]string{
				"Cargo.toml":  "[package]\n",
				"src/main.rs": "fn main() {}\n",
			})
			if err := os.WriteFile(archive, data, 0644); err != nil {
				t.Fatalf("write archive: %v", err)
			}

			dest := t.TempDir()
			if err := extractArchive(archive, dest); err != nil {
				t.Fatalf("extractArchive: %v", err)
			}

			assertFileContent(t, filepath.Join(dest, "Cargo.toml"), "[package]\n")
			assertFileContent(t, filepath.Join(dest, "src", "main.rs"), "fn main() {}\n")
		})
	}
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.tar.gz")
	data := buildTarGz(t, map[string]string{
		"../escape.txt": "gotcha",
	})
	if err := os.WriteFile(archive, data, 0644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	dest := t.TempDir()
	if err := extractArchive(archive, dest); err == nil {
		t.Error("extraction of a path-escaping archive succeeded")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt")); err == nil {
		t.Error("path-escaping member was written outside the destination")
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	err := extractArchive(filepath.Join(t.TempDir(), "src.rar"), t.TempDir())
	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Errorf("extractArchive error = %v, want ErrUnsupportedArchive", err)
	}
}

func TestFetchRemoteZip(t *testing.T) {
	data := buildZip(t, map[string]string{"Cargo.toml": "[package]\n"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	f := NewFetcher(logging.Nop())
	dest := t.TempDir()

	if err := f.Fetch(context.Background(), server.URL+"/builder.zip", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	assertFileContent(t, filepath.Join(dest, "Cargo.toml"), "[package]\n")
}

func TestFetchRemoteTarGz(t *testing.T) {
	data := buildTarGz(t, map[string]string{"Cargo.toml": "[package]\n"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	f := NewFetcher(logging.Nop())
	dest := t.TempDir()

	if err := f.Fetch(context.Background(), server.URL+"/builder.tar.gz", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	assertFileContent(t, filepath.Join(dest, "Cargo.toml"), "[package]\n")
}

func TestFetchRemoteUnsupportedExtensionNoRequest(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	f := NewFetcher(logging.Nop())
	err := f.Fetch(context.Background(), server.URL+"/builder.rar", t.TempDir())

	if !errors.Is(err, ErrUnsupportedArchive) {
		t.Errorf("Fetch error = %v, want ErrUnsupportedArchive", err)
	}
	if requests.Load() != 0 {
		t.Errorf("server received %d requests, want 0", requests.Load())
	}
}

func TestFetchRemoteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewFetcher(logging.Nop())
	err := f.Fetch(context.Background(), server.URL+"/builder.zip", t.TempDir())
	if err == nil {
		t.Error("Fetch succeeded despite HTTP 404")
	}
}
