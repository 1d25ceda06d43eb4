package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// fetchLocal handles locators naming a local archive file or directory.
func (f *Fetcher) fetchLocal(path, destDir string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return fmt.Errorf("inspect local source: %w", err)
	}

	switch {
	case info.Mode().IsRegular() && isArchivePath(path):
		f.logger.Info("extracting local archive", "path", path)
		return extractArchive(path, destDir)
	case info.IsDir():
		f.logger.Info("copying local directory", "path", path)
		return copyTree(path, destDir)
	default:
		return fmt.Errorf("unsupported file type %s: expected directory or archive (%s)",
			path, SupportedArchiveFormats)
	}
}

// copyTree recursively copies the contents of srcDir into destDir,
// merging with whatever is already there and overwriting on collision.
func copyTree(srcDir, destDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		target := filepath.Join(destDir, rel)

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			return nil

		case d.Type()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("read symlink %s: %w", path, err)
			}
			os.Remove(target)
			if err := os.Symlink(link, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
			return nil

		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			return copyFileMode(path, target, info.Mode().Perm())

		default:
			// Sockets, devices, and the like are skipped.
			return nil
		}
	})
}

func copyFileMode(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return out.Close()
}
