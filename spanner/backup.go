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
	"time"

	adminpb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"go.chromium.org/cloudsamples/internal/retryrobot"
)

const (
	// BackupRetention is how long new backups are kept.
	BackupRetention = 14 * 24 * time.Hour
	// BackupExtension is added to the expiry of a backup by UpdateBackup.
	BackupExtension = 30 * 24 * time.Hour
)

const timeFormat = time.RFC3339

func backupRequest(ctx context.Context, project, instanceID, dbID, backupID string, versionTime time.Time) *adminpb.CreateBackupRequest {
	now := clock.Now(ctx).UTC()
	if versionTime.IsZero() {
		versionTime = now
	}
	return &adminpb.CreateBackupRequest{
		Parent:   InstanceName(project, instanceID),
		BackupId: backupID,
		Backup: &adminpb.Backup{
			Database:    DatabaseName(project, instanceID, dbID),
			ExpireTime:  timestamppb.New(now.Add(BackupRetention)),
			VersionTime: timestamppb.New(versionTime),
		},
	}
}

// CreateBackup backs up a database as of versionTime (now if zero) and waits
// for the backup to be ready. Starting the backup is retried while the
// instance has too many backups in progress.
func CreateBackup(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID, backupID string, versionTime time.Time) (*adminpb.Backup, error) {
	req := backupRequest(ctx, project, instanceID, dbID, backupID, versionTime)
	op, err := retryrobot.Eval(ctx, CreateRetry, func() (string, error) {
		return api.StartCreateBackup(ctx, req)
	})
	if err != nil {
		return nil, errors.Fmt("failed to create backup: %w", err)
	}
	logging.Infof(ctx, "Waiting for %s", op)
	b, err := api.WaitCreateBackup(ctx, op)
	if err != nil {
		return nil, errors.Fmt("failed to create backup: %w", err)
	}
	fmt.Fprintf(w, "Backup %s of size %d bytes was created at %s with version time %s\n",
		b.GetName(), b.GetSizeBytes(),
		b.GetCreateTime().AsTime().Format(timeFormat),
		b.GetVersionTime().AsTime().Format(timeFormat))
	return b, nil
}

// CancelBackup starts a backup and cancels it right away. If the backup
// completed before the cancellation took effect, it is deleted.
func CancelBackup(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID, backupID string) error {
	req := backupRequest(ctx, project, instanceID, dbID, backupID, time.Time{})
	op, err := api.StartCreateBackup(ctx, req)
	if err != nil {
		return errors.Fmt("failed to create backup: %w", err)
	}
	if err := api.CancelOperation(ctx, op); err != nil {
		return errors.Fmt("failed to cancel backup creation: %w", err)
	}
	b, err := api.WaitCreateBackup(ctx, op)
	switch {
	case status.Code(err) == codes.Canceled:
		fmt.Fprintf(w, "Backup creation was successfully cancelled\n")
		return nil
	case err != nil:
		return errors.Fmt("failed to wait for backup creation: %w", err)
	}
	if err := api.DeleteBackup(ctx, &adminpb.DeleteBackupRequest{Name: b.GetName()}); err != nil {
		return errors.Fmt("failed to delete completed backup: %w", err)
	}
	fmt.Fprintf(w, "Backup %s completed before cancellation and was deleted\n", b.GetName())
	return nil
}

// CopyBackup copies a backup, possibly to another instance. The copy
// expires after BackupRetention.
func CopyBackup(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, backupID, sourceBackup string) (*adminpb.Backup, error) {
	b, err := api.CopyBackup(ctx, &adminpb.CopyBackupRequest{
		Parent:       InstanceName(project, instanceID),
		BackupId:     backupID,
		SourceBackup: sourceBackup,
		ExpireTime:   timestamppb.New(clock.Now(ctx).UTC().Add(BackupRetention)),
	})
	if err != nil {
		return nil, errors.Fmt("failed to copy backup: %w", err)
	}
	fmt.Fprintf(w, "Backup %s of size %d bytes was created at %s with version time %s\n",
		b.GetName(), b.GetSizeBytes(),
		b.GetCreateTime().AsTime().Format(timeFormat),
		b.GetVersionTime().AsTime().Format(timeFormat))
	return b, nil
}

func printBackup(w io.Writer, b *adminpb.Backup) {
	fmt.Fprintf(w, "Backup %s of database %s: state %s, size %d bytes, expires at %s\n",
		b.GetName(), b.GetDatabase(), b.GetState(), b.GetSizeBytes(),
		b.GetExpireTime().AsTime().Format(timeFormat))
}

// GetBackup prints a backup.
func GetBackup(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, backupID string) (*adminpb.Backup, error) {
	b, err := api.GetBackup(ctx, &adminpb.GetBackupRequest{Name: BackupName(project, instanceID, backupID)})
	if err != nil {
		return nil, errors.Fmt("failed to get backup: %w", err)
	}
	printBackup(w, b)
	return b, nil
}

// ListBackups prints the backups of an instance matching filter, e.g.
// "database:my-db" or "state:READY". An empty filter matches all backups.
func ListBackups(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, filter string) ([]*adminpb.Backup, error) {
	res, err := api.ListBackups(ctx, &adminpb.ListBackupsRequest{
		Parent: InstanceName(project, instanceID),
		Filter: filter,
	})
	if err != nil {
		return nil, errors.Fmt("failed to list backups: %w", err)
	}
	for _, b := range res {
		printBackup(w, b)
	}
	return res, nil
}

// UpdateBackup extends the expiry of a backup by BackupExtension, without
// going past its maximum expire time.
func UpdateBackup(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, backupID string) (*adminpb.Backup, error) {
	name := BackupName(project, instanceID, backupID)
	b, err := api.GetBackup(ctx, &adminpb.GetBackupRequest{Name: name})
	if err != nil {
		return nil, errors.Fmt("failed to get backup: %w", err)
	}
	expire := b.GetExpireTime().AsTime().Add(BackupExtension)
	if b.MaxExpireTime != nil && expire.After(b.MaxExpireTime.AsTime()) {
		expire = b.MaxExpireTime.AsTime()
	}
	b, err = api.UpdateBackup(ctx, &adminpb.UpdateBackupRequest{
		Backup: &adminpb.Backup{
			Name:       name,
			ExpireTime: timestamppb.New(expire),
		},
		UpdateMask: &fieldmaskpb.FieldMask{Paths: []string{"expire_time"}},
	})
	if err != nil {
		return nil, errors.Fmt("failed to update backup: %w", err)
	}
	fmt.Fprintf(w, "Updated backup %s with expire time %s\n", b.GetName(), b.GetExpireTime().AsTime().Format(timeFormat))
	return b, nil
}

// DeleteBackup deletes a backup.
func DeleteBackup(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, backupID string) error {
	name := BackupName(project, instanceID, backupID)
	if err := api.DeleteBackup(ctx, &adminpb.DeleteBackupRequest{Name: name}); err != nil {
		return errors.Fmt("failed to delete backup: %w", err)
	}
	fmt.Fprintf(w, "Deleted backup %s\n", name)
	return nil
}

// RestoreBackup restores a backup into a new database of the same instance.
func RestoreBackup(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID, backupID string) (*adminpb.Database, error) {
	db, err := api.RestoreDatabase(ctx, &adminpb.RestoreDatabaseRequest{
		Parent:     InstanceName(project, instanceID),
		DatabaseId: dbID,
		Source: &adminpb.RestoreDatabaseRequest_Backup{
			Backup: BackupName(project, instanceID, backupID),
		},
	})
	if err != nil {
		return nil, errors.Fmt("failed to restore backup: %w", err)
	}
	info := db.GetRestoreInfo().GetBackupInfo()
	fmt.Fprintf(w, "Database %s restored from backup %s of database %s\n",
		db.GetName(), info.GetBackup(), info.GetSourceDatabase())
	return db, nil
}
