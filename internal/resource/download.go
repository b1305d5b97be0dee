package resource

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/born-ml/expkit/internal/metrics"
)

// download fetches res into the download directory. Files are written under a
// temporary name and renamed into place, so Find never sees a partial file.
func (c *Cache) download(ctx context.Context, res Resource) error {
	target := filepath.Join(c.cfg.DownloadDir, filepath.FromSlash(res.Name))
	if res.Kind == Zip {
		target += ".zip"
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("resource: create cache directory: %w", err)
	}

	tmp, err := c.fetch(ctx, res, target)
	if err != nil {
		return err
	}
	defer os.Remove(tmp) // no-op once renamed

	if res.Kind == Zip {
		if err := extractZip(tmp, filepath.Dir(target)); err != nil {
			return fmt.Errorf("resource: extract %s: %w", res.Name, err)
		}
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("resource: install %s: %w", res.Name, err)
	}
	return nil
}

// fetch streams res.URL into a temporary file next to target and returns its path.
func (c *Cache) fetch(ctx context.Context, res Resource, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.URL, nil)
	if err != nil {
		return "", fmt.Errorf("resource: download %s: %w", res.Name, err)
	}
	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resource: download %s: %w", res.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resource: download %s: %w: %s", res.Name, ErrBadStatus, resp.Status)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", target, uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("resource: create temporary file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("resource: download %s: %w", res.Name, err)
	}

	metrics.ResourceDownloadBytes.Add(float64(n))
	return tmp, nil
}

// extractZip unpacks archive into a staging directory inside dir and then moves
// each top-level entry into dir. Entries already present in dir are kept.
func extractZip(archive, dir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	staging, err := os.MkdirTemp(dir, ".staging-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	for _, zf := range zr.File {
		if err := extractEntry(zf, staging); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, e := range entries {
		dst := filepath.Join(dir, e.Name())
		if _, err := os.Lstat(dst); err == nil {
			continue
		}
		if err := os.Rename(filepath.Join(staging, e.Name()), dst); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(zf *zip.File, root string) error {
	path := filepath.Join(root, filepath.FromSlash(zf.Name))
	if !strings.HasPrefix(path, filepath.Clean(root)+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrZipEntry, zf.Name)
	}

	if zf.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	src, err := zf.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
