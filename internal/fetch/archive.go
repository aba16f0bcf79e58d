package fetch

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedArchive is returned for URLs without a known archive suffix.
var ErrUnsupportedArchive = errors.New("unsupported archive format (use .zip, .tar.gz, .tgz or .tar)")

// Archive downloads and unpacks source archives over HTTP.
type Archive struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures an Archive fetcher.
type Option func(*Archive)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(a *Archive) {
		a.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with downloads.
func WithUserAgent(ua string) Option {
	return func(a *Archive) {
		a.userAgent = ua
	}
}

// NewArchive creates an Archive fetcher with the given options.
func NewArchive(opts ...Option) *Archive {
	a := &Archive{
		httpClient: http.DefaultClient,
		userAgent:  "esp8266-setup",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch downloads url and unpacks it into dest. A single top-level
// directory in the archive is stripped. ref is ignored.
func (a *Archive) Fetch(ctx context.Context, url, ref, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%s already exists", dest)
	}
	staged, err := a.stage(ctx, url, filepath.Dir(dest))
	if err != nil {
		return err
	}
	if err := os.Rename(staged, dest); err != nil {
		_ = os.RemoveAll(staged)
		return fmt.Errorf("moving unpacked archive to %s: %w", dest, err)
	}
	return nil
}

// Update downloads url again and replaces dest with the fresh tree. dest
// is left untouched when the download or unpacking fails.
func (a *Archive) Update(ctx context.Context, url, ref, dest string) error {
	staged, err := a.stage(ctx, url, filepath.Dir(dest))
	if err != nil {
		return err
	}

	old := dest + ".old"
	_ = os.RemoveAll(old)
	if err := os.Rename(dest, old); err != nil && !os.IsNotExist(err) {
		_ = os.RemoveAll(staged)
		return fmt.Errorf("replacing %s: %w", dest, err)
	}
	if err := os.Rename(staged, dest); err != nil {
		_ = os.Rename(old, dest)
		_ = os.RemoveAll(staged)
		return fmt.Errorf("replacing %s: %w", dest, err)
	}
	_ = os.RemoveAll(old)
	return nil
}

// stage downloads and unpacks url into a new temporary directory under
// parent and returns the directory holding the unpacked tree.
func (a *Archive) stage(ctx context.Context, url, parent string) (string, error) {
	ext := ArchiveExtension(url)
	if ext == "" {
		return "", fmt.Errorf("%s: %w", url, ErrUnsupportedArchive)
	}
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", parent, err)
	}

	work, err := os.MkdirTemp(parent, ".download-*")
	if err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	defer os.RemoveAll(work)

	archivePath := filepath.Join(work, "archive"+ext)
	if err := a.download(ctx, url, archivePath); err != nil {
		return "", err
	}

	unpacked, err := os.MkdirTemp(parent, ".unpack-*")
	if err != nil {
		return "", fmt.Errorf("creating unpack directory: %w", err)
	}
	if err := Extract(archivePath, unpacked); err != nil {
		_ = os.RemoveAll(unpacked)
		return "", fmt.Errorf("unpacking %s: %w", url, err)
	}

	root, err := stripSingleDir(unpacked)
	if err != nil {
		_ = os.RemoveAll(unpacked)
		return "", err
	}
	return root, nil
}

func (a *Archive) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("downloading %s: status %d\n%s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("reading download stream: %w", err)
	}
	return f.Close()
}

// stripSingleDir returns the only entry of dir when that entry is a
// directory, moving it out to a sibling so dir can be discarded.
func stripSingleDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return dir, nil
	}

	inner := filepath.Join(dir, entries[0].Name())
	moved := dir + ".root"
	if err := os.Rename(inner, moved); err != nil {
		return "", fmt.Errorf("stripping top-level directory: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	return moved, nil
}

// Extract unpacks a .zip, .tar.gz, .tgz or .tar archive into destDir.
// Entries that would land outside destDir are rejected. Symlinks and
// other special files are skipped.
func Extract(archivePath, destDir string) error {
	switch ArchiveExtension(archivePath) {
	case ".zip":
		return extractZip(archivePath, destDir)
	case ".tar.gz", ".tgz":
		return extractTar(archivePath, destDir, true)
	case ".tar":
		return extractTar(archivePath, destDir, false)
	default:
		return fmt.Errorf("%s: %w", archivePath, ErrUnsupportedArchive)
	}
}

func extractTar(archivePath, destDir string, gzipped bool) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		}
	}
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry: %w", err)
		}
		err = writeEntry(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0200)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", target, err)
	}
	return out.Close()
}

// safeJoin joins an archive entry name onto destDir, rejecting absolute
// names and names that climb out of destDir.
func safeJoin(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the destination directory", name)
	}
	return filepath.Join(destDir, clean), nil
}
