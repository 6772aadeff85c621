// Copyright 2025 The LUCI Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spanner

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	gspanner "cloud.google.com/go/spanner"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// Singer is a row of the Singers table.
type Singer struct {
	ID        int64
	FirstName string
	LastName  string
}

// Album is a row of the Albums table.
type Album struct {
	SingerID int64
	ID       int64
	Title    string
}

// SampleSingers and SampleAlbums are loaded by WriteSampleData.
var (
	SampleSingers = []Singer{
		{1, "Marc", "Richards"},
		{2, "Catalina", "Smith"},
		{3, "Alice", "Trentor"},
		{4, "Lea", "Martin"},
		{5, "David", "Lomond"},
	}
	SampleAlbums = []Album{
		{1, 1, "Total Junk"},
		{1, 2, "Go, Go, Go"},
		{2, 1, "Green"},
		{2, 2, "Forever Hold Your Peace"},
		{2, 3, "Terrified"},
	}
)

// WriteSampleData inserts or updates the sample singers and albums in a
// single transaction.
func WriteSampleData(ctx context.Context, w io.Writer, data DataAPI) error {
	var ms []*gspanner.Mutation
	for _, s := range SampleSingers {
		ms = append(ms, gspanner.InsertOrUpdate("Singers",
			[]string{"SingerId", "FirstName", "LastName"},
			[]any{s.ID, s.FirstName, s.LastName}))
	}
	for _, a := range SampleAlbums {
		ms = append(ms, gspanner.InsertOrUpdate("Albums",
			[]string{"SingerId", "AlbumId", "AlbumTitle"},
			[]any{a.SingerID, a.ID, a.Title}))
	}
	if _, err := data.Apply(ctx, ms); err != nil {
		return errors.Fmt("failed to write sample data: %w", err)
	}
	fmt.Fprintln(w, "Inserted data.")
	return nil
}

// BatchReadStats counts what a batch read processed.
type BatchReadStats struct {
	Partitions int64
	Rows       int64
}

// BatchReadSingers reads the Singers table with a partitioned query,
// processing every partition in its own goroutine.
func BatchReadSingers(ctx context.Context, w io.Writer, data DataAPI) (BatchReadStats, error) {
	txn, err := data.BatchReadOnlyTransaction(ctx)
	if err != nil {
		return BatchReadStats{}, errors.Fmt("failed to start batch read: %w", err)
	}
	defer txn.Close()

	stmt := gspanner.Statement{SQL: "SELECT SingerId, FirstName, LastName FROM Singers"}
	partitions, err := txn.PartitionQuery(ctx, stmt)
	if err != nil {
		return BatchReadStats{}, errors.Fmt("failed to partition query: %w", err)
	}

	var nPartitions, nRows atomic.Int64
	eg, ectx := errgroup.WithContext(ctx)
	for i, p := range partitions {
		eg.Go(func() error {
			logging.Debugf(ectx, "Started processing partition %d", i)
			rows := 0
			err := txn.Execute(ectx, p, func(r *gspanner.Row) error {
				var s Singer
				if err := r.Columns(&s.ID, &s.FirstName, &s.LastName); err != nil {
					return err
				}
				rows++
				return nil
			})
			if err != nil {
				return errors.Fmt("partition %d: %w", i, err)
			}
			logging.Debugf(ectx, "Finished processing partition %d: %d rows", i, rows)
			nPartitions.Add(1)
			nRows.Add(int64(rows))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return BatchReadStats{}, errors.Fmt("failed to read partitions: %w", err)
	}

	stats := BatchReadStats{Partitions: nPartitions.Load(), Rows: nRows.Load()}
	fmt.Fprintf(w, "Total partitions: %d\n", stats.Partitions)
	fmt.Fprintf(w, "Total records: %d\n", stats.Rows)
	return stats, nil
}
