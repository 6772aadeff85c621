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

package cli

import (
	"context"

	"go.chromium.org/cloudsamples/spanner"
)

// spVerb returns a verb whose first two arguments are the project and the
// instance ID.
func spVerb(name string, args []string, help string, run func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error) *Verb {
	return &Verb{
		Name: name,
		Args: append([]string{"project", "instance-id"}, args...),
		Help: help,
		Run: func(ctx context.Context, e *Env, args []string) error {
			p, err := project(args[0])
			if err != nil {
				return err
			}
			api, err := e.Conn.SpannerAdmin(ctx)
			if err != nil {
				return err
			}
			return run(ctx, e, api, p, args[1], args[2:])
		},
	}
}

// spDataVerb returns a verb running against the database named by its
// project, instance-id and database-id arguments.
func spDataVerb(name, help string, run func(ctx context.Context, e *Env, data spanner.DataAPI) error) *Verb {
	return &Verb{
		Name: name,
		Args: []string{"project", "instance-id", "database-id"},
		Help: help,
		Run: func(ctx context.Context, e *Env, args []string) error {
			p, err := project(args[0])
			if err != nil {
				return err
			}
			data, err := e.Conn.SpannerData(ctx, spanner.DatabaseName(p, args[1], args[2]))
			if err != nil {
				return err
			}
			return run(ctx, e, data)
		},
	}
}

func spannerVerbs() []*Verb {
	return []*Verb{
		{
			Name: "spanner-list-instance-configs",
			Args: []string{"project"},
			Help: "lists the instance configurations available to a project",
			Run: func(ctx context.Context, e *Env, args []string) error {
				p, err := project(args[0])
				if err != nil {
					return err
				}
				api, err := e.Conn.SpannerAdmin(ctx)
				if err != nil {
					return err
				}
				_, err = spanner.ListInstanceConfigs(ctx, e.Out, api, p)
				return err
			},
		},
		spVerb("spanner-create-instance", []string{"[config]"},
			"creates a one node instance, in regional-us-central1 by default\nCreation is retried while the project is at its quota of concurrent operations.",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.CreateInstance(ctx, e.Out, api, p, inst, args[0])
				return err
			}),
		spVerb("spanner-delete-instance", nil,
			"deletes an instance with all its databases and backups",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				return spanner.DeleteInstance(ctx, e.Out, api, p, inst)
			}),
		spVerb("spanner-create-database", []string{"database-id"},
			"creates a database with the Singers and Albums tables",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.CreateDatabase(ctx, e.Out, api, p, inst, args[0])
				return err
			}),
		spVerb("spanner-create-database-cmek", []string{"database-id", "kms-key"},
			"creates a database encrypted with a Cloud KMS key",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.CreateDatabaseWithEncryptionKey(ctx, e.Out, api, p, inst, args[0], args[1])
				return err
			}),
		spVerb("spanner-add-column", []string{"database-id"},
			"adds the MarketingBudget column to the Albums table",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				return spanner.AddColumn(ctx, e.Out, api, p, inst, args[0])
			}),
		spVerb("spanner-get-ddl", []string{"database-id"},
			"prints the schema of a database",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.GetDatabaseDDL(ctx, e.Out, api, p, inst, args[0])
				return err
			}),
		spVerb("spanner-drop-database", []string{"database-id"},
			"drops a database",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				return spanner.DropDatabase(ctx, e.Out, api, p, inst, args[0])
			}),
		spVerb("spanner-create-backup", []string{"database-id", "backup-id", "[version-time]"},
			"backs up a database and waits for the backup\nVERSION-TIME is an RFC 3339 time, now by default.",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				vt, err := timestamp("version-time", args[2])
				if err != nil {
					return err
				}
				_, err = spanner.CreateBackup(ctx, e.Out, api, p, inst, args[0], args[1], vt)
				return err
			}),
		spVerb("spanner-cancel-backup", []string{"database-id", "backup-id"},
			"starts a backup and cancels it",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				return spanner.CancelBackup(ctx, e.Out, api, p, inst, args[0], args[1])
			}),
		spVerb("spanner-copy-backup", []string{"backup-id", "source-backup"},
			"copies a backup given by its full name into the instance",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.CopyBackup(ctx, e.Out, api, p, inst, args[0], args[1])
				return err
			}),
		spVerb("spanner-get-backup", []string{"backup-id"},
			"prints a backup",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.GetBackup(ctx, e.Out, api, p, inst, args[0])
				return err
			}),
		spVerb("spanner-list-backups", []string{"[filter]"},
			"lists backups, optionally filtered, e.g. \"database:Singers\"",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.ListBackups(ctx, e.Out, api, p, inst, args[0])
				return err
			}),
		spVerb("spanner-update-backup", []string{"backup-id"},
			"extends the expire time of a backup by 30 days",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.UpdateBackup(ctx, e.Out, api, p, inst, args[0])
				return err
			}),
		spVerb("spanner-delete-backup", []string{"backup-id"},
			"deletes a backup",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				return spanner.DeleteBackup(ctx, e.Out, api, p, inst, args[0])
			}),
		spVerb("spanner-restore-backup", []string{"database-id", "backup-id"},
			"restores a backup into a new database",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				_, err := spanner.RestoreBackup(ctx, e.Out, api, p, inst, args[0], args[1])
				return err
			}),
		spVerb("spanner-list-backup-ops", []string{"database-id", "[backup-id]"},
			"lists the backup operations of a database\nWith BACKUP-ID, also lists the operations copying that backup.",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				return spanner.ListBackupOperations(ctx, e.Out, api, p, inst, args[0], args[1])
			}),
		spVerb("spanner-list-database-ops", nil,
			"lists the operations optimizing restored databases",
			func(ctx context.Context, e *Env, api spanner.AdminAPI, p, inst string, args []string) error {
				return spanner.ListDatabaseOperations(ctx, e.Out, api, p, inst)
			}),
		spDataVerb("spanner-write-data",
			"writes the sample Singers and Albums rows",
			func(ctx context.Context, e *Env, data spanner.DataAPI) error {
				return spanner.WriteSampleData(ctx, e.Out, data)
			}),
		spDataVerb("spanner-batch-read",
			"reads all singers with a partitioned query, one goroutine per partition",
			func(ctx context.Context, e *Env, data spanner.DataAPI) error {
				_, err := spanner.BatchReadSingers(ctx, e.Out, data)
				return err
			}),
	}
}
