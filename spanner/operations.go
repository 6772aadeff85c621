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

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	adminpb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"google.golang.org/protobuf/proto"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

func metadataFilter(m proto.Message) string {
	return fmt.Sprintf("(metadata.@type:type.googleapis.com/%s)", m.ProtoReflect().Descriptor().FullName())
}

// metadata decodes the metadata of each operation into a new T, skipping
// operations carrying another type.
func metadata[T proto.Message](ctx context.Context, ops []*longrunningpb.Operation, newT func() T) []T {
	var res []T
	for _, op := range ops {
		md := newT()
		if err := op.GetMetadata().UnmarshalTo(md); err != nil {
			logging.Warningf(ctx, "Skipping operation %s: %s", op.GetName(), err)
			continue
		}
		res = append(res, md)
	}
	return res
}

// ListBackupOperations prints the progress of the backups of a database
// being created, and of the copies of backupID if not empty.
func ListBackupOperations(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID, backupID string) error {
	parent := InstanceName(project, instanceID)
	ops, err := api.ListBackupOperations(ctx, &adminpb.ListBackupOperationsRequest{
		Parent: parent,
		Filter: fmt.Sprintf("%s AND (metadata.database:%s)",
			metadataFilter(&adminpb.CreateBackupMetadata{}), DatabaseName(project, instanceID, dbID)),
	})
	if err != nil {
		return errors.Fmt("failed to list backup operations: %w", err)
	}
	for _, md := range metadata(ctx, ops, func() *adminpb.CreateBackupMetadata { return &adminpb.CreateBackupMetadata{} }) {
		fmt.Fprintf(w, "Backup %s on database %s is %d%% complete.\n",
			md.GetName(), md.GetDatabase(), md.GetProgress().GetProgressPercent())
	}
	if backupID == "" {
		return nil
	}

	ops, err = api.ListBackupOperations(ctx, &adminpb.ListBackupOperationsRequest{
		Parent: parent,
		Filter: fmt.Sprintf("%s AND (metadata.source_backup:%s)",
			metadataFilter(&adminpb.CopyBackupMetadata{}), BackupName(project, instanceID, backupID)),
	})
	if err != nil {
		return errors.Fmt("failed to list backup operations: %w", err)
	}
	for _, md := range metadata(ctx, ops, func() *adminpb.CopyBackupMetadata { return &adminpb.CopyBackupMetadata{} }) {
		fmt.Fprintf(w, "Backup %s copied from %s is %d%% complete.\n",
			md.GetName(), md.GetSourceBackup(), md.GetProgress().GetProgressPercent())
	}
	return nil
}

// ListDatabaseOperations prints the progress of the optimizations running
// on databases restored from backups.
func ListDatabaseOperations(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID string) error {
	ops, err := api.ListDatabaseOperations(ctx, &adminpb.ListDatabaseOperationsRequest{
		Parent: InstanceName(project, instanceID),
		Filter: metadataFilter(&adminpb.OptimizeRestoredDatabaseMetadata{}),
	})
	if err != nil {
		return errors.Fmt("failed to list database operations: %w", err)
	}
	for _, md := range metadata(ctx, ops, func() *adminpb.OptimizeRestoredDatabaseMetadata { return &adminpb.OptimizeRestoredDatabaseMetadata{} }) {
		fmt.Fprintf(w, "Database %s restored from backup is %d%% optimized.\n",
			md.GetName(), md.GetProgress().GetProgressPercent())
	}
	return nil
}
