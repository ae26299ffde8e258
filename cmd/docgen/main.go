// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command docgen generates JSDoc-style documentation objects from the
// command line.
//
// Usage:
//
//	docgen generate ./src                  # scan a project
//	docgen generate app.js --json          # single file, docs as JSON
//	docgen generate ./src --out ./docdb    # persist docs to BadgerDB
//	docgen stats --db ./docdb              # inspect a persisted store
//	docgen watch ./src                     # regenerate on file change
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
