package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const userAgent = "builder/1.0"

// downloadAndExtract fetches a remote archive and extracts it into
// destDir. The download lands in a temporary file whose suffix matches
// the archive format; the file is removed whether or not extraction
// succeeds.
func (f *Fetcher) downloadAndExtract(ctx context.Context, url, destDir string) error {
	var suffix string
	switch {
	case strings.HasSuffix(url, ".zip"):
		suffix = ".zip"
	case strings.HasSuffix(url, ".tar.gz"):
		suffix = ".tar.gz"
	case strings.HasSuffix(url, ".tgz"):
		suffix = ".tgz"
	default:
		return unsupportedFormatError("URL " + url)
	}

	f.logger.Info("downloading builder source", "url", url)

	tmpFile, err := os.CreateTemp("", "builder-download-*"+suffix)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := download(ctx, url, tmpFile); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	return extractArchive(tmpPath, destDir)
}

func download(ctx context.Context, url string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download archive: unexpected status code %d", resp.StatusCode)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}
