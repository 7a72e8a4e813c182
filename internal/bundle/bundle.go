// Copyright (c) tbprobe contributors
// Licensed under the MIT license

// Package bundle unpacks a distributed .tar.xz archive of prebuilt Syzygy
// table files into a directory, so a caller can provision a table
// directory without a separate download tool. It only unpacks an already
// produced, externally published artifact: it does not generate or modify
// tablebases (spec.md's Non-goals).
package bundle

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/therootcompany/xz"
)

// ErrUnsafePath is returned when an archive entry would escape destDir.
var ErrUnsafePath = errors.New("bundle: archive entry escapes destination directory")

// Extract streams r (a .tar.xz bundle) into destDir, creating it if
// necessary. Only regular files and directories are extracted; table
// files commonly end in .rtbw/.rtbz but Extract does not filter by
// extension, so mixed bundles (WDL+DTZ+readme) unpack in one pass.
func Extract(r io.Reader, destDir string) error {
	xr, err := xz.NewReader(r)
	if err != nil {
		return fmt.Errorf("bundle: %w", err)
	}
	tr := tar.NewReader(xr)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("bundle: %w", err)
		}

		name := ptrim(filepath.ToSlash(hdr.Name))
		if hasDotDotComponent(name) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}
		target := filepath.Join(destDir, filepath.Clean("/"+hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			_, copyErr := io.Copy(out, tr)
			closeErr := out.Close()
			if copyErr != nil {
				return fmt.Errorf("bundle: %w", copyErr)
			}
			if closeErr != nil {
				return closeErr
			}
		}
	}
}
