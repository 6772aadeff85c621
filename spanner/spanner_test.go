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
	"bytes"
	"context"
	"testing"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	gspanner "cloud.google.com/go/spanner"
	adminpb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/clock/testclock"
	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
)

const (
	inst = "projects/p/instances/i"
	db   = inst + "/databases/db"
)

// fakeSleeps returns a context whose clock advances instantly on every timer
// and records the requested durations.
func fakeSleeps() (context.Context, *[]time.Duration) {
	ctx, tc := testclock.UseTime(context.Background(), testclock.TestRecentTimeUTC)
	sleeps := &[]time.Duration{}
	tc.SetTimerCallback(func(d time.Duration, _ clock.Timer) {
		*sleeps = append(*sleeps, d)
		tc.Add(d)
	})
	return ctx, sleeps
}

func TestNames(t *testing.T) {
	t.Parallel()

	ftt.Run("Names", t, func(t *ftt.Test) {
		assert.Loosely(t, InstanceName("p", "i"), should.Equal(inst))
		assert.Loosely(t, InstanceConfigName("p", "c"), should.Equal("projects/p/instanceConfigs/c"))
		assert.Loosely(t, DatabaseName("p", "i", "db"), should.Equal(db))
		assert.Loosely(t, BackupName("p", "i", "b"), should.Equal(inst+"/backups/b"))
	})
}

func TestInstances(t *testing.T) {
	t.Parallel()

	ftt.Run("With a fake admin API", t, func(t *ftt.Test) {
		ctx, sleeps := fakeSleeps()
		api := newFakeAdmin()
		out := &bytes.Buffer{}

		t.Run("CreateInstance", func(t *ftt.Test) {
			res, err := CreateInstance(ctx, out, api, "p", "i", "")
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, res.Name, should.Equal(inst))
			assert.Loosely(t, res.Config, should.Equal("projects/p/instanceConfigs/"+DefaultInstanceConfig))
			assert.Loosely(t, res.NodeCount, should.Equal(int32(1)))
			assert.Loosely(t, out.String(), should.Equal("Created instance [i]\n"))
			assert.Loosely(t, *sleeps, should.HaveLength(0))

			t.Run("then DeleteInstance", func(t *ftt.Test) {
				assert.Loosely(t, DeleteInstance(ctx, out, api, "p", "i"), should.BeNil)
				assert.Loosely(t, api.instances, should.HaveLength(0))
			})
		})

		t.Run("CreateInstance retries on quota errors", func(t *ftt.Test) {
			api.startErrs = []error{
				status.Error(codes.ResourceExhausted, "quota"),
				status.Error(codes.ResourceExhausted, "quota"),
			}
			_, err := CreateInstance(ctx, out, api, "p", "i", "")
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, api.starts, should.Equal(3))
			assert.Loosely(t, *sleeps, should.Match([]time.Duration{15 * time.Second, 30 * time.Second}))
		})

		t.Run("CreateInstance does not retry other errors", func(t *ftt.Test) {
			api.startErrs = []error{status.Error(codes.PermissionDenied, "no")}
			_, err := CreateInstance(ctx, out, api, "p", "i", "")
			assert.Loosely(t, status.Code(err), should.Equal(codes.PermissionDenied))
			assert.Loosely(t, api.starts, should.Equal(1))
		})

		t.Run("ListInstanceConfigs", func(t *ftt.Test) {
			api.configs = []*instancepb.InstanceConfig{{
				Name:          "projects/p/instanceConfigs/nam6",
				LeaderOptions: []string{"us-central1", "us-east1"},
			}}
			res, err := ListInstanceConfigs(ctx, out, api, "p")
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, res, should.HaveLength(1))
			assert.Loosely(t, out.String(), should.Equal(
				"Available leader options for instance config projects/p/instanceConfigs/nam6: [us-central1 us-east1]\n"))
		})
	})
}

func TestDatabases(t *testing.T) {
	t.Parallel()

	ftt.Run("With a fake admin API", t, func(t *ftt.Test) {
		ctx := context.Background()
		api := newFakeAdmin()
		out := &bytes.Buffer{}

		res, err := CreateDatabase(ctx, out, api, "p", "i", "db")
		assert.Loosely(t, err, should.BeNil)
		assert.Loosely(t, res.Name, should.Equal(db))
		assert.Loosely(t, out.String(), should.Equal("Created database ["+db+"]\n"))

		t.Run("AddColumn and GetDatabaseDDL", func(t *ftt.Test) {
			assert.Loosely(t, AddColumn(ctx, out, api, "p", "i", "db"), should.BeNil)
			out.Reset()
			ddl, err := GetDatabaseDDL(ctx, out, api, "p", "i", "db")
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, ddl, should.HaveLength(3))
			assert.Loosely(t, ddl[2], should.ContainSubstring("MarketingBudget"))
			assert.Loosely(t, out.String(), should.HavePrefix("Retrieved database DDL for "+db+"\nCREATE TABLE Singers"))
		})

		t.Run("Duplicates fail", func(t *ftt.Test) {
			_, err := CreateDatabase(ctx, out, api, "p", "i", "db")
			assert.Loosely(t, status.Code(err), should.Equal(codes.AlreadyExists))
			assert.Loosely(t, err, should.ErrLike("failed to create database"))
		})

		t.Run("CreateDatabaseWithEncryptionKey", func(t *ftt.Test) {
			const key = "projects/p/locations/l/keyRings/r/cryptoKeys/k"
			out.Reset()
			res, err := CreateDatabaseWithEncryptionKey(ctx, out, api, "p", "i", "enc", key)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, res.EncryptionConfig.KmsKeyName, should.Equal(key))
			assert.Loosely(t, out.String(), should.Equal("Database "+inst+"/databases/enc created with encryption key "+key+"\n"))

			_, err = CreateDatabaseWithEncryptionKey(ctx, out, api, "p", "i", "enc2", "")
			assert.Loosely(t, err, should.ErrLike("KMS key name is required"))
		})

		t.Run("DropDatabase", func(t *ftt.Test) {
			assert.Loosely(t, DropDatabase(ctx, out, api, "p", "i", "db"), should.BeNil)
			err := DropDatabase(ctx, out, api, "p", "i", "db")
			assert.Loosely(t, status.Code(err), should.Equal(codes.NotFound))
		})
	})
}

func TestBackups(t *testing.T) {
	t.Parallel()

	ftt.Run("With a database", t, func(t *ftt.Test) {
		ctx, sleeps := fakeSleeps()
		now := clock.Now(ctx).UTC()
		api := newFakeAdmin()
		out := &bytes.Buffer{}
		_, err := CreateDatabase(ctx, out, api, "p", "i", "db")
		assert.Loosely(t, err, should.BeNil)
		out.Reset()

		t.Run("CreateBackup", func(t *ftt.Test) {
			b, err := CreateBackup(ctx, out, api, "p", "i", "db", "b", time.Time{})
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, b.Name, should.Equal(inst+"/backups/b"))
			assert.Loosely(t, b.Database, should.Equal(db))
			assert.Loosely(t, b.VersionTime.AsTime(), should.Match(now))
			assert.Loosely(t, b.ExpireTime.AsTime(), should.Match(now.Add(BackupRetention)))
			assert.Loosely(t, out.String(), should.HavePrefix("Backup "+inst+"/backups/b of size 1024 bytes"))

			t.Run("GetBackup and ListBackups", func(t *ftt.Test) {
				_, err := GetBackup(ctx, out, api, "p", "i", "b")
				assert.Loosely(t, err, should.BeNil)

				res, err := ListBackups(ctx, out, api, "p", "i", "database:db")
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, res, should.HaveLength(1))
				res, err = ListBackups(ctx, out, api, "p", "i", "database:other")
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, res, should.HaveLength(0))
			})

			t.Run("UpdateBackup extends the expiry", func(t *ftt.Test) {
				b, err := UpdateBackup(ctx, out, api, "p", "i", "b")
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, b.ExpireTime.AsTime(), should.Match(now.Add(BackupRetention+BackupExtension)))
			})

			t.Run("UpdateBackup stops at the max expire time", func(t *ftt.Test) {
				api.backups[b.Name].ExpireTime = api.backups[b.Name].MaxExpireTime
				res, err := UpdateBackup(ctx, out, api, "p", "i", "b")
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, res.ExpireTime.AsTime(), should.Match(b.MaxExpireTime.AsTime()))
			})

			t.Run("CopyBackup", func(t *ftt.Test) {
				c, err := CopyBackup(ctx, out, api, "p", "i2", "copy", b.Name)
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, c.Name, should.Equal("projects/p/instances/i2/backups/copy"))
				assert.Loosely(t, c.Database, should.Equal(db))
			})

			t.Run("RestoreBackup", func(t *ftt.Test) {
				out.Reset()
				res, err := RestoreBackup(ctx, out, api, "p", "i", "restored", "b")
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, res.GetRestoreInfo().GetBackupInfo().GetBackup(), should.Equal(b.Name))
				assert.Loosely(t, out.String(), should.Equal(
					"Database "+inst+"/databases/restored restored from backup "+b.Name+" of database "+db+"\n"))
			})

			t.Run("DeleteBackup", func(t *ftt.Test) {
				assert.Loosely(t, DeleteBackup(ctx, out, api, "p", "i", "b"), should.BeNil)
				_, err := GetBackup(ctx, out, api, "p", "i", "b")
				assert.Loosely(t, status.Code(err), should.Equal(codes.NotFound))
			})
		})

		t.Run("CreateBackup at a version time", func(t *ftt.Test) {
			vt := now.Add(-time.Hour)
			b, err := CreateBackup(ctx, out, api, "p", "i", "db", "b", vt)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, b.VersionTime.AsTime(), should.Match(vt))
		})

		t.Run("CreateBackup retries while backups are in progress", func(t *ftt.Test) {
			api.startErrs = []error{
				status.Error(codes.FailedPrecondition, "too many pending backups"),
				status.Error(codes.ResourceExhausted, "quota"),
			}
			_, err := CreateBackup(ctx, out, api, "p", "i", "db", "b", time.Time{})
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, *sleeps, should.Match([]time.Duration{15 * time.Second, 30 * time.Second}))
		})

		t.Run("CreateBackup gives up eventually", func(t *ftt.Test) {
			for range CreateRetry.MaxAttempts {
				api.startErrs = append(api.startErrs, status.Error(codes.FailedPrecondition, "busy"))
			}
			_, err := CreateBackup(ctx, out, api, "p", "i", "db", "b", time.Time{})
			assert.Loosely(t, status.Code(err), should.Equal(codes.FailedPrecondition))
			assert.Loosely(t, api.starts, should.Equal(CreateRetry.MaxAttempts))
			assert.Loosely(t, *sleeps, should.HaveLength(CreateRetry.MaxAttempts-1))
		})

		t.Run("CancelBackup", func(t *ftt.Test) {
			assert.Loosely(t, CancelBackup(ctx, out, api, "p", "i", "db", "b"), should.BeNil)
			assert.Loosely(t, out.String(), should.Equal("Backup creation was successfully cancelled\n"))
			assert.Loosely(t, api.backups, should.HaveLength(0))
		})

		t.Run("CancelBackup deletes backups completed anyway", func(t *ftt.Test) {
			api.finishBeforeCancel = true
			assert.Loosely(t, CancelBackup(ctx, out, api, "p", "i", "db", "b"), should.BeNil)
			assert.Loosely(t, out.String(), should.Equal(
				"Backup "+inst+"/backups/b completed before cancellation and was deleted\n"))
			assert.Loosely(t, api.backups, should.HaveLength(0))
		})
	})
}

func mustAny(t testing.TB, m proto.Message) *anypb.Any {
	a, err := anypb.New(m)
	assert.Loosely(t, err, should.BeNil)
	return a
}

func TestOperations(t *testing.T) {
	t.Parallel()

	ftt.Run("With a fake admin API", t, func(t *ftt.Test) {
		ctx := context.Background()
		api := newFakeAdmin()
		out := &bytes.Buffer{}

		t.Run("ListBackupOperations", func(t *ftt.Test) {
			api.backupOps = []*longrunningpb.Operation{
				{Name: "op1", Metadata: mustAny(t, &adminpb.CreateBackupMetadata{
					Name:     inst + "/backups/b",
					Database: db,
					Progress: &adminpb.OperationProgress{ProgressPercent: 40},
				})},
				{Name: "op2", Metadata: mustAny(t, &adminpb.OptimizeRestoredDatabaseMetadata{})},
			}
			assert.Loosely(t, ListBackupOperations(ctx, out, api, "p", "i", "db", ""), should.BeNil)
			assert.Loosely(t, out.String(), should.Equal(
				"Backup "+inst+"/backups/b on database "+db+" is 40% complete.\n"))
			assert.Loosely(t, api.filters, should.Match([]string{
				"(metadata.@type:type.googleapis.com/google.spanner.admin.database.v1.CreateBackupMetadata) AND (metadata.database:" + db + ")",
			}))

			t.Run("and copies", func(t *ftt.Test) {
				api.backupOps = []*longrunningpb.Operation{
					{Name: "op3", Metadata: mustAny(t, &adminpb.CopyBackupMetadata{
						Name:         inst + "/backups/copy",
						SourceBackup: inst + "/backups/b",
						Progress:     &adminpb.OperationProgress{ProgressPercent: 100},
					})},
				}
				api.filters = nil
				out.Reset()
				assert.Loosely(t, ListBackupOperations(ctx, out, api, "p", "i", "db", "b"), should.BeNil)
				assert.Loosely(t, out.String(), should.Equal(
					"Backup "+inst+"/backups/copy copied from "+inst+"/backups/b is 100% complete.\n"))
				assert.Loosely(t, api.filters, should.HaveLength(2))
				assert.Loosely(t, api.filters[0], should.ContainSubstring("CreateBackupMetadata"))
				assert.Loosely(t, api.filters[1], should.ContainSubstring("metadata.source_backup:"+inst+"/backups/b"))
			})
		})

		t.Run("ListDatabaseOperations", func(t *ftt.Test) {
			api.databaseOps = []*longrunningpb.Operation{
				{Name: "op1", Metadata: mustAny(t, &adminpb.OptimizeRestoredDatabaseMetadata{
					Name:     inst + "/databases/restored",
					Progress: &adminpb.OperationProgress{ProgressPercent: 75},
				})},
				{Name: "op2"},
			}
			assert.Loosely(t, ListDatabaseOperations(ctx, out, api, "p", "i"), should.BeNil)
			assert.Loosely(t, out.String(), should.Equal(
				"Database "+inst+"/databases/restored restored from backup is 75% optimized.\n"))
		})
	})
}

func singerRows(t testing.TB, singers ...Singer) []*gspanner.Row {
	var rows []*gspanner.Row
	for _, s := range singers {
		r, err := gspanner.NewRow([]string{"SingerId", "FirstName", "LastName"}, []any{s.ID, s.FirstName, s.LastName})
		assert.Loosely(t, err, should.BeNil)
		rows = append(rows, r)
	}
	return rows
}

func TestData(t *testing.T) {
	t.Parallel()

	ftt.Run("With a fake database", t, func(t *ftt.Test) {
		ctx := context.Background()
		data := &fakeData{}
		out := &bytes.Buffer{}

		t.Run("WriteSampleData", func(t *ftt.Test) {
			assert.Loosely(t, WriteSampleData(ctx, out, data), should.BeNil)
			assert.Loosely(t, data.applied, should.HaveLength(len(SampleSingers)+len(SampleAlbums)))
			assert.Loosely(t, out.String(), should.Equal("Inserted data.\n"))
		})

		t.Run("BatchReadSingers", func(t *ftt.Test) {
			data.partitions = [][]*gspanner.Row{
				singerRows(t, SampleSingers[:2]...),
				singerRows(t, SampleSingers[2:]...),
				nil,
			}
			stats, err := BatchReadSingers(ctx, out, data)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, stats, should.Match(BatchReadStats{Partitions: 3, Rows: 5}))
			assert.Loosely(t, out.String(), should.Equal("Total partitions: 3\nTotal records: 5\n"))
			assert.Loosely(t, data.closed, should.BeTrue)
		})

		t.Run("BatchReadSingers fails on bad rows", func(t *ftt.Test) {
			r, err := gspanner.NewRow([]string{"SingerId"}, []any{int64(1)})
			assert.Loosely(t, err, should.BeNil)
			data.partitions = [][]*gspanner.Row{singerRows(t, SampleSingers[0]), {r}}
			_, err = BatchReadSingers(ctx, out, data)
			assert.Loosely(t, err, should.ErrLike("failed to read partitions"))
			assert.Loosely(t, out.String(), should.BeEmpty)
			assert.Loosely(t, data.closed, should.BeTrue)
		})

		t.Run("BatchReadSingers with no partitions", func(t *ftt.Test) {
			stats, err := BatchReadSingers(ctx, out, data)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, stats, should.Match(BatchReadStats{}))
		})
	})
}

func TestRPCTimeout(t *testing.T) {
	t.Parallel()

	ftt.Run("WithRPCTimeout", t, func(t *ftt.Test) {
		ctx, _ := testclock.UseTime(context.Background(), testclock.TestRecentTimeUTC)
		data := &fakeData{partitions: [][]*gspanner.Row{singerRows(t, SampleSingers...)}}

		t.Run("bounds every call", func(t *ftt.Test) {
			timed := WithRPCTimeout(data, time.Minute)
			assert.Loosely(t, WriteSampleData(ctx, &bytes.Buffer{}, timed), should.BeNil)
			stats, err := BatchReadSingers(ctx, &bytes.Buffer{}, timed)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, stats.Rows, should.Equal(int64(len(SampleSingers))))

			deadline := testclock.TestRecentTimeUTC.Add(time.Minute)
			assert.Loosely(t, data.deadlines, should.Match([]time.Time{
				deadline, // Apply
				deadline, // BatchReadOnlyTransaction
				deadline, // PartitionQuery
				deadline, // Execute
			}))
		})

		t.Run("zero timeout adds no deadline", func(t *ftt.Test) {
			assert.Loosely(t, WithRPCTimeout(data, 0), should.Equal[DataAPI](data))
			assert.Loosely(t, WriteSampleData(ctx, &bytes.Buffer{}, WithRPCTimeout(data, 0)), should.BeNil)
			assert.Loosely(t, data.deadlines, should.BeEmpty)
		})
	})
}
