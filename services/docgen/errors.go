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

import "errors"

// Sentinel errors for the documentation service.
var (
	// ErrRelativePath indicates the project root was a relative path.
	ErrRelativePath = errors.New("project root must be absolute path")

	// ErrPathTraversal indicates path contains .. traversal sequences.
	ErrPathTraversal = errors.New("path contains traversal sequences")

	// ErrProjectTooLarge indicates the project exceeds size limits.
	ErrProjectTooLarge = errors.New("project exceeds size limits")

	// ErrScanInProgress indicates another scan is already running for
	// this project root.
	ErrScanInProgress = errors.New("project scan in progress")

	// ErrUnsupportedFile indicates the file extension is not a
	// documentable source type.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrPersistenceDisabled indicates no persistence layer is attached,
	// so snapshot and restore are unavailable.
	ErrPersistenceDisabled = errors.New("persistence not configured")
)
