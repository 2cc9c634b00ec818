// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// WriteBundle writes a gzipped tar stream of the given paths to w.
// Paths are resolved relative to root and stored with root-relative
// names, so extracting with "tar xzf" inside the instance workdir
// reproduces the local layout. Directories are walked recursively;
// symlinks are stored as links.
func WriteBundle(w io.Writer, root string, paths []string) error {
	gzipWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzipWriter)

	for _, path := range paths {
		absolute := filepath.Join(root, path)
		walkErr := filepath.Walk(absolute, func(current string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			return addEntry(tarWriter, root, current, info)
		})
		if walkErr != nil {
			return fmt.Errorf("bundling %s: %w", path, walkErr)
		}
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("finalizing tar: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("finalizing gzip: %w", err)
	}
	return nil
}

// addEntry writes one filesystem entry into the tar stream.
func addEntry(tarWriter *tar.Writer, root, path string, info os.FileInfo) error {
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	var linkTarget string
	if info.Mode()&os.ModeSymlink != 0 {
		if linkTarget, err = os.Readlink(path); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, linkTarget)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(relative)
	if info.IsDir() {
		header.Name += "/"
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(tarWriter, file); err != nil {
		return fmt.Errorf("copying %s: %w", relative, err)
	}
	return nil
}

// BundleName returns the remote file name for a deploy bundle.
func BundleName() string {
	return "deploy-bundle.tar.gz"
}

// ExtractCommand returns the remote command line that unpacks a bundle
// uploaded to the given workdir and removes it afterwards.
func ExtractCommand(workdir string) string {
	return strings.Join([]string{
		"cd " + workdir,
		"tar xzf " + BundleName(),
		"rm -f " + BundleName(),
	}, " && ")
}
