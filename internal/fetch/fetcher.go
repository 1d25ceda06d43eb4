// Package fetch acquires builder source into a destination directory.
//
// A locator is dispatched on shape alone: file:// URLs and path-shaped
// strings are local, locators ending in .git (before any #ref suffix) are
// Git repositories, and everything else is treated as a remote archive.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kstenerud/builder-go/internal/logging"
)

// SupportedArchiveFormats names the accepted archive extensions in error
// messages.
const SupportedArchiveFormats = ".zip, .tar.gz, .tgz"

var (
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	ErrSourceNotFound     = errors.New("file or directory not found")
)

// Fetcher downloads, clones, extracts, or copies builder source.
type Fetcher struct {
	git    *GitCloner
	logger logging.Logger
}

// NewFetcher creates a fetcher. A nil logger falls back to the no-op
// logger.
func NewFetcher(logger logging.Logger) *Fetcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Fetcher{
		git:    NewGitCloner(logger),
		logger: logger,
	}
}

type sourceKind int

const (
	kindLocal sourceKind = iota
	kindGit
	kindArchive
)

// classify decides how a locator will be acquired. For local kinds the
// returned path is the filesystem path to use (file:// prefix stripped).
func classify(locator string) (sourceKind, string) {
	if strings.HasPrefix(locator, "file://") {
		return kindLocal, strings.TrimPrefix(locator, "file://")
	}
	if isLocalPath(locator) {
		return kindLocal, locator
	}

	gitURL, _ := SplitGitRef(locator)
	if strings.HasSuffix(gitURL, ".git") {
		return kindGit, ""
	}

	return kindArchive, ""
}

// isLocalPath reports whether the locator is a bare filesystem path:
// absolute, ./-relative, ../-relative, or Windows drive-letter prefixed.
func isLocalPath(locator string) bool {
	if strings.HasPrefix(locator, "/") ||
		strings.HasPrefix(locator, "./") ||
		strings.HasPrefix(locator, "../") {
		return true
	}
	return len(locator) > 1 && locator[1] == ':'
}

// SplitGitRef splits a locator on the first '#' into the Git URL and the
// optional reference.
func SplitGitRef(locator string) (gitURL, ref string) {
	if i := strings.Index(locator, "#"); i >= 0 {
		return locator[:i], locator[i+1:]
	}
	return locator, ""
}

// Fetch acquires the source identified by the locator into destDir.
func (f *Fetcher) Fetch(ctx context.Context, locator, destDir string) error {
	switch kind, path := classify(locator); kind {
	case kindLocal:
		return f.fetchLocal(path, destDir)
	case kindGit:
		return f.git.CloneAndCheckout(ctx, locator, destDir)
	default:
		return f.downloadAndExtract(ctx, locator, destDir)
	}
}

// isArchivePath reports whether a path or URL carries one of the
// supported archive extensions.
func isArchivePath(s string) bool {
	return strings.HasSuffix(s, ".zip") ||
		strings.HasSuffix(s, ".tar.gz") ||
		strings.HasSuffix(s, ".tgz")
}

func unsupportedFormatError(subject string) error {
	return fmt.Errorf("%w for %s: supported formats: %s",
		ErrUnsupportedArchive, subject, SupportedArchiveFormats)
}
