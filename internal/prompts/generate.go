// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompts

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Downloader streams a generated prompt archive. *api.Client implements it.
type Downloader interface {
	DownloadPrompts(ctx context.Context, storageName string, limit int, w io.Writer) (int64, error)
}

// Generate asks the service to generate prompts from storageName and writes
// the zip archive to zipPath as received. Any failure is returned; the
// archive is not validated here.
func Generate(ctx context.Context, d Downloader, storageName, zipPath string, limit int) error {
	if dir := filepath.Dir(zipPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", zipPath, err)
	}
	_, dlErr := d.DownloadPrompts(ctx, storageName, limit, f)
	closeErr := f.Close()
	if dlErr != nil {
		return fmt.Errorf("generating prompts for %s: %w", storageName, dlErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", zipPath, closeErr)
	}
	return nil
}

// Extract writes every entry of the archive at zipPath under destDir and
// returns the extracted file paths. A malformed archive or an entry that
// would land outside destDir is an error.
func Extract(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("opening prompt archive %s: %w", zipPath, err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", destDir, err)
	}

	var extracted []string
	for _, zf := range r.File {
		target := filepath.Join(root, filepath.FromSlash(zf.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return extracted, fmt.Errorf("archive entry %q escapes %s", zf.Name, destDir)
		}

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return extracted, fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(zf, target); err != nil {
			return extracted, err
		}
		extracted = append(extracted, target)
	}
	return extracted, nil
}

func extractFile(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	src, err := zf.Open()
	if err != nil {
		return fmt.Errorf("reading archive entry %s: %w", zf.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil {
		return fmt.Errorf("extracting %s: %w", zf.Name, copyErr)
	}
	return closeErr
}

// GenerateAndExtract runs Generate followed by Extract.
func GenerateAndExtract(ctx context.Context, d Downloader, storageName, zipPath, destDir string, limit int) ([]string, error) {
	if err := Generate(ctx, d, storageName, zipPath, limit); err != nil {
		return nil, err
	}
	return Extract(zipPath, destDir)
}
