// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
	"github.com/AleutianAI/AleutianDocs/services/docgen/docdb"
)

// docKeyPrefix namespaces doc records so other keys can share the database.
const docKeyPrefix = "doc:"

// docKey encodes a doc ID as a fixed-width hex key so iteration order
// matches ID order.
func docKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%016x", docKeyPrefix, id))
}

// Snapshot writes the full store contents to the database, replacing any
// previous snapshot.
//
// Description:
//
//	Drops all existing doc records, then writes every doc as a JSON value
//	keyed by its ID. Uses a write batch so large stores don't exceed
//	transaction limits.
//
// Inputs:
//
//	ctx - Cancellation is checked between phases, not per key.
//	db - The snapshot database.
//	store - The store to persist.
//
// Outputs:
//
//	error - Non-nil on marshal or write failure.
func Snapshot(ctx context.Context, db *DB, store *docdb.Store) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	if err := db.DropPrefix([]byte(docKeyPrefix)); err != nil {
		return fmt.Errorf("drop previous snapshot: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for _, d := range store.All() {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal doc %d (%s): %w", d.ID, d.Longname, err)
		}
		if err := wb.Set(docKey(d.ID), data); err != nil {
			return fmt.Errorf("write doc %d: %w", d.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}

// Restore loads a snapshot into the store and advances the process ID
// counter past the highest restored ID.
//
// Description:
//
//	Iterates every doc record in ID order and inserts it into the store.
//	The store should be empty; restored docs keep their persisted IDs.
//
// Outputs:
//
//	int - Number of docs restored.
//	error - Non-nil on read, unmarshal or insert failure.
func Restore(ctx context.Context, db *DB, store *docdb.Store) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}

	var (
		restored int
		maxID    int64
	)
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var d doc.Doc
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &d)
			})
			if err != nil {
				return fmt.Errorf("decode doc at %s: %w", it.Item().Key(), err)
			}
			if err := store.Insert(&d); err != nil {
				return fmt.Errorf("restore doc %d (%s): %w", d.ID, d.Longname, err)
			}
			if d.ID > maxID {
				maxID = d.ID
			}
			restored++
		}
		return nil
	})
	if err != nil {
		return restored, err
	}

	docdb.AdvanceIDTo(maxID)
	return restored, nil
}
