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
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	gspanner "cloud.google.com/go/spanner"
	adminpb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// fakeAdmin is an in-memory Spanner admin API.
type fakeAdmin struct {
	instances map[string]*instancepb.Instance
	configs   []*instancepb.InstanceConfig
	databases map[string]*adminpb.Database
	ddl       map[string][]string
	backups   map[string]*adminpb.Backup
	pending   map[string]*adminpb.Backup // backup creations by operation name

	// startErrs are returned, in order, by the first calls to
	// StartCreateBackup and CreateInstance.
	startErrs []error
	starts    int
	// finishBeforeCancel makes cancelled backups complete anyway.
	finishBeforeCancel bool
	cancelled          map[string]bool

	backupOps   []*longrunningpb.Operation
	databaseOps []*longrunningpb.Operation
	filters     []string
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		instances: map[string]*instancepb.Instance{},
		databases: map[string]*adminpb.Database{},
		ddl:       map[string][]string{},
		backups:   map[string]*adminpb.Backup{},
		pending:   map[string]*adminpb.Backup{},
		cancelled: map[string]bool{},
	}
}

var _ AdminAPI = (*fakeAdmin)(nil)

func notFound(name string) error {
	return status.Errorf(codes.NotFound, "%s not found", name)
}

func (f *fakeAdmin) startErr() error {
	f.starts++
	if len(f.startErrs) == 0 {
		return nil
	}
	err := f.startErrs[0]
	f.startErrs = f.startErrs[1:]
	return err
}

func (f *fakeAdmin) CreateInstance(ctx context.Context, req *instancepb.CreateInstanceRequest) (*instancepb.Instance, error) {
	if err := f.startErr(); err != nil {
		return nil, err
	}
	inst := proto.Clone(req.Instance).(*instancepb.Instance)
	inst.Name = req.Parent + "/instances/" + req.InstanceId
	inst.State = instancepb.Instance_READY
	f.instances[inst.Name] = inst
	return proto.Clone(inst).(*instancepb.Instance), nil
}

func (f *fakeAdmin) DeleteInstance(ctx context.Context, req *instancepb.DeleteInstanceRequest) error {
	if _, ok := f.instances[req.Name]; !ok {
		return notFound(req.Name)
	}
	delete(f.instances, req.Name)
	return nil
}

func (f *fakeAdmin) ListInstanceConfigs(ctx context.Context, req *instancepb.ListInstanceConfigsRequest) ([]*instancepb.InstanceConfig, error) {
	return f.configs, nil
}

func (f *fakeAdmin) CreateDatabase(ctx context.Context, req *adminpb.CreateDatabaseRequest) (*adminpb.Database, error) {
	id := strings.Trim(strings.TrimPrefix(req.CreateStatement, "CREATE DATABASE "), "`")
	name := req.Parent + "/databases/" + id
	if _, ok := f.databases[name]; ok {
		return nil, status.Errorf(codes.AlreadyExists, "%s already exists", name)
	}
	db := &adminpb.Database{
		Name:             name,
		State:            adminpb.Database_READY,
		EncryptionConfig: req.EncryptionConfig,
	}
	f.databases[name] = db
	f.ddl[name] = append([]string(nil), req.ExtraStatements...)
	return proto.Clone(db).(*adminpb.Database), nil
}

func (f *fakeAdmin) GetDatabase(ctx context.Context, req *adminpb.GetDatabaseRequest) (*adminpb.Database, error) {
	db, ok := f.databases[req.Name]
	if !ok {
		return nil, notFound(req.Name)
	}
	return proto.Clone(db).(*adminpb.Database), nil
}

func (f *fakeAdmin) UpdateDatabaseDdl(ctx context.Context, req *adminpb.UpdateDatabaseDdlRequest) error {
	if _, ok := f.databases[req.Database]; !ok {
		return notFound(req.Database)
	}
	f.ddl[req.Database] = append(f.ddl[req.Database], req.Statements...)
	return nil
}

func (f *fakeAdmin) GetDatabaseDdl(ctx context.Context, req *adminpb.GetDatabaseDdlRequest) ([]string, error) {
	if _, ok := f.databases[req.Database]; !ok {
		return nil, notFound(req.Database)
	}
	return f.ddl[req.Database], nil
}

func (f *fakeAdmin) DropDatabase(ctx context.Context, req *adminpb.DropDatabaseRequest) error {
	if _, ok := f.databases[req.Database]; !ok {
		return notFound(req.Database)
	}
	delete(f.databases, req.Database)
	delete(f.ddl, req.Database)
	return nil
}

func (f *fakeAdmin) RestoreDatabase(ctx context.Context, req *adminpb.RestoreDatabaseRequest) (*adminpb.Database, error) {
	b, ok := f.backups[req.GetBackup()]
	if !ok {
		return nil, notFound(req.GetBackup())
	}
	db := &adminpb.Database{
		Name:  req.Parent + "/databases/" + req.DatabaseId,
		State: adminpb.Database_READY_OPTIMIZING,
		RestoreInfo: &adminpb.RestoreInfo{
			SourceType: adminpb.RestoreSourceType_BACKUP,
			SourceInfo: &adminpb.RestoreInfo_BackupInfo{
				BackupInfo: &adminpb.BackupInfo{
					Backup:         b.Name,
					SourceDatabase: b.Database,
				},
			},
		},
	}
	f.databases[db.Name] = db
	return proto.Clone(db).(*adminpb.Database), nil
}

func (f *fakeAdmin) StartCreateBackup(ctx context.Context, req *adminpb.CreateBackupRequest) (string, error) {
	if err := f.startErr(); err != nil {
		return "", err
	}
	if _, ok := f.databases[req.Backup.GetDatabase()]; !ok {
		return "", notFound(req.Backup.GetDatabase())
	}
	b := proto.Clone(req.Backup).(*adminpb.Backup)
	b.Name = req.Parent + "/backups/" + req.BackupId
	b.State = adminpb.Backup_READY
	b.SizeBytes = 1024
	b.CreateTime = b.VersionTime
	b.MaxExpireTime = timestamppb.New(b.VersionTime.AsTime().Add(366 * 24 * time.Hour))
	op := b.Name + "/operations/create"
	f.pending[op] = b
	return op, nil
}

func (f *fakeAdmin) WaitCreateBackup(ctx context.Context, op string) (*adminpb.Backup, error) {
	b, ok := f.pending[op]
	if !ok {
		return nil, notFound(op)
	}
	delete(f.pending, op)
	if f.cancelled[op] && !f.finishBeforeCancel {
		return nil, status.Errorf(codes.Canceled, "operation cancelled")
	}
	f.backups[b.Name] = b
	return proto.Clone(b).(*adminpb.Backup), nil
}

func (f *fakeAdmin) CancelOperation(ctx context.Context, op string) error {
	if _, ok := f.pending[op]; !ok {
		return notFound(op)
	}
	f.cancelled[op] = true
	return nil
}

func (f *fakeAdmin) CopyBackup(ctx context.Context, req *adminpb.CopyBackupRequest) (*adminpb.Backup, error) {
	src, ok := f.backups[req.SourceBackup]
	if !ok {
		return nil, notFound(req.SourceBackup)
	}
	b := proto.Clone(src).(*adminpb.Backup)
	b.Name = req.Parent + "/backups/" + req.BackupId
	b.ExpireTime = req.ExpireTime
	f.backups[b.Name] = b
	return proto.Clone(b).(*adminpb.Backup), nil
}

func (f *fakeAdmin) GetBackup(ctx context.Context, req *adminpb.GetBackupRequest) (*adminpb.Backup, error) {
	b, ok := f.backups[req.Name]
	if !ok {
		return nil, notFound(req.Name)
	}
	return proto.Clone(b).(*adminpb.Backup), nil
}

func (f *fakeAdmin) UpdateBackup(ctx context.Context, req *adminpb.UpdateBackupRequest) (*adminpb.Backup, error) {
	b, ok := f.backups[req.Backup.GetName()]
	if !ok {
		return nil, notFound(req.Backup.GetName())
	}
	for _, p := range req.UpdateMask.GetPaths() {
		if p != "expire_time" {
			return nil, status.Errorf(codes.InvalidArgument, "cannot update %q", p)
		}
		b.ExpireTime = req.Backup.ExpireTime
	}
	return proto.Clone(b).(*adminpb.Backup), nil
}

func (f *fakeAdmin) DeleteBackup(ctx context.Context, req *adminpb.DeleteBackupRequest) error {
	if _, ok := f.backups[req.Name]; !ok {
		return notFound(req.Name)
	}
	delete(f.backups, req.Name)
	return nil
}

func (f *fakeAdmin) ListBackups(ctx context.Context, req *adminpb.ListBackupsRequest) ([]*adminpb.Backup, error) {
	var res []*adminpb.Backup
	for name, b := range f.backups {
		if !strings.HasPrefix(name, req.Parent+"/") {
			continue
		}
		if db, ok := strings.CutPrefix(req.Filter, "database:"); ok && !strings.HasSuffix(b.Database, "/"+db) {
			continue
		}
		res = append(res, proto.Clone(b).(*adminpb.Backup))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (f *fakeAdmin) ListBackupOperations(ctx context.Context, req *adminpb.ListBackupOperationsRequest) ([]*longrunningpb.Operation, error) {
	f.filters = append(f.filters, req.Filter)
	return f.backupOps, nil
}

func (f *fakeAdmin) ListDatabaseOperations(ctx context.Context, req *adminpb.ListDatabaseOperationsRequest) ([]*longrunningpb.Operation, error) {
	f.filters = append(f.filters, req.Filter)
	return f.databaseOps, nil
}

// fakeData is an in-memory Spanner database whose batch reads return
// preset partitions.
type fakeData struct {
	applied    []*gspanner.Mutation
	partitions [][]*gspanner.Row
	closed     bool

	m         sync.Mutex
	deadlines []time.Time // of every call made with a deadline
}

func (f *fakeData) record(ctx context.Context) {
	if d, ok := ctx.Deadline(); ok {
		f.m.Lock()
		f.deadlines = append(f.deadlines, d)
		f.m.Unlock()
	}
}

var _ DataAPI = (*fakeData)(nil)

func (f *fakeData) Apply(ctx context.Context, ms []*gspanner.Mutation) (time.Time, error) {
	f.record(ctx)
	f.applied = append(f.applied, ms...)
	return time.Time{}, nil
}

func (f *fakeData) BatchReadOnlyTransaction(ctx context.Context) (BatchReadTxn, error) {
	f.record(ctx)
	txn := &fakeTxn{data: f, rows: map[*gspanner.Partition][]*gspanner.Row{}}
	for _, rows := range f.partitions {
		txn.rows[&gspanner.Partition{}] = rows
	}
	return txn, nil
}

type fakeTxn struct {
	data *fakeData
	rows map[*gspanner.Partition][]*gspanner.Row
}

func (t *fakeTxn) PartitionQuery(ctx context.Context, stmt gspanner.Statement) ([]*gspanner.Partition, error) {
	t.data.record(ctx)
	if !strings.HasPrefix(stmt.SQL, "SELECT ") {
		return nil, status.Errorf(codes.InvalidArgument, "not a query: %s", stmt.SQL)
	}
	var ps []*gspanner.Partition
	for p := range t.rows {
		ps = append(ps, p)
	}
	return ps, nil
}

func (t *fakeTxn) Execute(ctx context.Context, p *gspanner.Partition, fn func(*gspanner.Row) error) error {
	t.data.record(ctx)
	rows, ok := t.rows[p]
	if !ok {
		return status.Errorf(codes.InvalidArgument, "unknown partition")
	}
	for _, r := range rows {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (t *fakeTxn) Close() {
	t.data.closed = true
}
