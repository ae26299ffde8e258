// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docgen

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// scanLimits bounds one project walk.
type scanLimits struct {
	extensions  []string
	excludeDirs []string
	maxFileSize int64
	maxFiles    int
	maxTotal    int64
}

// collectSourceFiles walks the project tree and returns every documentable
// file path.
//
// Description:
//
//	Directories named in excludeDirs are pruned entirely. Files are
//	filtered by extension, oversized files are skipped silently (they
//	would fail the parser's size gate anyway), and unreadable entries are
//	skipped rather than failing the walk. The walk aborts with
//	ErrProjectTooLarge when the file count or total size limit is
//	exceeded, and with the context error on cancellation.
func collectSourceFiles(ctx context.Context, projectRoot string, limits scanLimits) ([]string, error) {
	var (
		files     []string
		totalSize int64
	)

	err := filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission problems and races with deletes are not fatal.
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != projectRoot && excludedDir(d.Name(), limits.excludeDirs) {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasExtension(path, limits.extensions) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if limits.maxFileSize > 0 && info.Size() > limits.maxFileSize {
			return nil
		}

		totalSize += info.Size()
		if limits.maxTotal > 0 && totalSize > limits.maxTotal {
			return ErrProjectTooLarge
		}

		files = append(files, path)
		if limits.maxFiles > 0 && len(files) > limits.maxFiles {
			return ErrProjectTooLarge
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// excludedDir reports whether a directory name is on the exclusion list.
func excludedDir(name string, excludeDirs []string) bool {
	for _, ex := range excludeDirs {
		if name == ex {
			return true
		}
	}
	return false
}

// hasExtension reports whether the path ends in one of the extensions.
func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
