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

// Package spanner contains samples calling the Spanner database and instance
// admin APIs, along with a partitioned batch read of sample data.
package spanner

import (
	"context"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	gspanner "cloud.google.com/go/spanner"
	database "cloud.google.com/go/spanner/admin/database/apiv1"
	adminpb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/gapic"
	"go.chromium.org/cloudsamples/internal/resname"
)

// AdminAPI is the part of the Spanner admin APIs used by the samples.
//
// Long-running operations are awaited by the implementation, except for
// backup creation which is split in two so it can be cancelled.
type AdminAPI interface {
	CreateInstance(ctx context.Context, req *instancepb.CreateInstanceRequest) (*instancepb.Instance, error)
	DeleteInstance(ctx context.Context, req *instancepb.DeleteInstanceRequest) error
	ListInstanceConfigs(ctx context.Context, req *instancepb.ListInstanceConfigsRequest) ([]*instancepb.InstanceConfig, error)

	CreateDatabase(ctx context.Context, req *adminpb.CreateDatabaseRequest) (*adminpb.Database, error)
	GetDatabase(ctx context.Context, req *adminpb.GetDatabaseRequest) (*adminpb.Database, error)
	UpdateDatabaseDdl(ctx context.Context, req *adminpb.UpdateDatabaseDdlRequest) error
	GetDatabaseDdl(ctx context.Context, req *adminpb.GetDatabaseDdlRequest) ([]string, error)
	DropDatabase(ctx context.Context, req *adminpb.DropDatabaseRequest) error
	RestoreDatabase(ctx context.Context, req *adminpb.RestoreDatabaseRequest) (*adminpb.Database, error)

	// StartCreateBackup starts a backup and returns its operation name.
	StartCreateBackup(ctx context.Context, req *adminpb.CreateBackupRequest) (string, error)
	// WaitCreateBackup waits for an operation started by StartCreateBackup.
	WaitCreateBackup(ctx context.Context, op string) (*adminpb.Backup, error)
	CopyBackup(ctx context.Context, req *adminpb.CopyBackupRequest) (*adminpb.Backup, error)
	GetBackup(ctx context.Context, req *adminpb.GetBackupRequest) (*adminpb.Backup, error)
	UpdateBackup(ctx context.Context, req *adminpb.UpdateBackupRequest) (*adminpb.Backup, error)
	DeleteBackup(ctx context.Context, req *adminpb.DeleteBackupRequest) error
	ListBackups(ctx context.Context, req *adminpb.ListBackupsRequest) ([]*adminpb.Backup, error)

	ListBackupOperations(ctx context.Context, req *adminpb.ListBackupOperationsRequest) ([]*longrunningpb.Operation, error)
	ListDatabaseOperations(ctx context.Context, req *adminpb.ListDatabaseOperationsRequest) ([]*longrunningpb.Operation, error)
	CancelOperation(ctx context.Context, op string) error
}

// AdminClient implements AdminAPI on top of the generated admin clients.
type AdminClient struct {
	db   *database.DatabaseAdminClient
	inst *instance.InstanceAdminClient
	opts []gax.CallOption
}

var _ AdminAPI = (*AdminClient)(nil)

// NewAdminClient dials the Spanner database and instance admin APIs.
func NewAdminClient(ctx context.Context, callOpts []gax.CallOption, opts ...option.ClientOption) (*AdminClient, error) {
	db, err := database.NewDatabaseAdminClient(ctx, opts...)
	if err != nil {
		return nil, errors.Fmt("creating database admin client: %w", err)
	}
	inst, err := instance.NewInstanceAdminClient(ctx, opts...)
	if err != nil {
		db.Close()
		return nil, errors.Fmt("creating instance admin client: %w", err)
	}
	return &AdminClient{db: db, inst: inst, opts: callOpts}, nil
}

// Close closes both underlying connections.
func (c *AdminClient) Close() error {
	err := c.db.Close()
	if ierr := c.inst.Close(); err == nil {
		err = ierr
	}
	return err
}

func (c *AdminClient) CreateInstance(ctx context.Context, req *instancepb.CreateInstanceRequest) (*instancepb.Instance, error) {
	op, err := c.inst.CreateInstance(ctx, req, c.opts...)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *AdminClient) DeleteInstance(ctx context.Context, req *instancepb.DeleteInstanceRequest) error {
	return c.inst.DeleteInstance(ctx, req, c.opts...)
}

func (c *AdminClient) ListInstanceConfigs(ctx context.Context, req *instancepb.ListInstanceConfigsRequest) ([]*instancepb.InstanceConfig, error) {
	return gapic.Collect(c.inst.ListInstanceConfigs(ctx, req, c.opts...).Next)
}

func (c *AdminClient) CreateDatabase(ctx context.Context, req *adminpb.CreateDatabaseRequest) (*adminpb.Database, error) {
	op, err := c.db.CreateDatabase(ctx, req, c.opts...)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *AdminClient) GetDatabase(ctx context.Context, req *adminpb.GetDatabaseRequest) (*adminpb.Database, error) {
	return c.db.GetDatabase(ctx, req, c.opts...)
}

func (c *AdminClient) UpdateDatabaseDdl(ctx context.Context, req *adminpb.UpdateDatabaseDdlRequest) error {
	op, err := c.db.UpdateDatabaseDdl(ctx, req, c.opts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *AdminClient) GetDatabaseDdl(ctx context.Context, req *adminpb.GetDatabaseDdlRequest) ([]string, error) {
	res, err := c.db.GetDatabaseDdl(ctx, req, c.opts...)
	if err != nil {
		return nil, err
	}
	return res.Statements, nil
}

func (c *AdminClient) DropDatabase(ctx context.Context, req *adminpb.DropDatabaseRequest) error {
	return c.db.DropDatabase(ctx, req, c.opts...)
}

func (c *AdminClient) RestoreDatabase(ctx context.Context, req *adminpb.RestoreDatabaseRequest) (*adminpb.Database, error) {
	op, err := c.db.RestoreDatabase(ctx, req, c.opts...)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *AdminClient) StartCreateBackup(ctx context.Context, req *adminpb.CreateBackupRequest) (string, error) {
	op, err := c.db.CreateBackup(ctx, req, c.opts...)
	if err != nil {
		return "", err
	}
	return op.Name(), nil
}

func (c *AdminClient) WaitCreateBackup(ctx context.Context, op string) (*adminpb.Backup, error) {
	return c.db.CreateBackupOperation(op).Wait(ctx, c.opts...)
}

func (c *AdminClient) CopyBackup(ctx context.Context, req *adminpb.CopyBackupRequest) (*adminpb.Backup, error) {
	op, err := c.db.CopyBackup(ctx, req, c.opts...)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *AdminClient) GetBackup(ctx context.Context, req *adminpb.GetBackupRequest) (*adminpb.Backup, error) {
	return c.db.GetBackup(ctx, req, c.opts...)
}

func (c *AdminClient) UpdateBackup(ctx context.Context, req *adminpb.UpdateBackupRequest) (*adminpb.Backup, error) {
	return c.db.UpdateBackup(ctx, req, c.opts...)
}

func (c *AdminClient) DeleteBackup(ctx context.Context, req *adminpb.DeleteBackupRequest) error {
	return c.db.DeleteBackup(ctx, req, c.opts...)
}

func (c *AdminClient) ListBackups(ctx context.Context, req *adminpb.ListBackupsRequest) ([]*adminpb.Backup, error) {
	return gapic.Collect(c.db.ListBackups(ctx, req, c.opts...).Next)
}

func (c *AdminClient) ListBackupOperations(ctx context.Context, req *adminpb.ListBackupOperationsRequest) ([]*longrunningpb.Operation, error) {
	return gapic.Collect(c.db.ListBackupOperations(ctx, req, c.opts...).Next)
}

func (c *AdminClient) ListDatabaseOperations(ctx context.Context, req *adminpb.ListDatabaseOperationsRequest) ([]*longrunningpb.Operation, error) {
	return gapic.Collect(c.db.ListDatabaseOperations(ctx, req, c.opts...).Next)
}

func (c *AdminClient) CancelOperation(ctx context.Context, op string) error {
	return c.db.LROClient.CancelOperation(ctx, &longrunningpb.CancelOperationRequest{Name: op}, c.opts...)
}

// DataAPI is the part of the Spanner data API used by the samples.
type DataAPI interface {
	Apply(ctx context.Context, ms []*gspanner.Mutation) (time.Time, error)
	BatchReadOnlyTransaction(ctx context.Context) (BatchReadTxn, error)
}

// BatchReadTxn is a read-only transaction whose queries can be split into
// partitions executed independently.
type BatchReadTxn interface {
	PartitionQuery(ctx context.Context, stmt gspanner.Statement) ([]*gspanner.Partition, error)
	// Execute calls fn for every row of a partition.
	Execute(ctx context.Context, p *gspanner.Partition, fn func(*gspanner.Row) error) error
	Close()
}

// DataClient implements DataAPI on top of a Spanner session pool bound to
// one database.
type DataClient struct {
	c *gspanner.Client
}

var _ DataAPI = (*DataClient)(nil)

// NewDataClient connects to a database, given its full name.
func NewDataClient(ctx context.Context, db string, opts ...option.ClientOption) (*DataClient, error) {
	if err := resname.Parse(db, databasePattern, new(string), new(string), new(string)); err != nil {
		return nil, err
	}
	c, err := gspanner.NewClient(ctx, db, opts...)
	if err != nil {
		return nil, errors.Fmt("creating Spanner client: %w", err)
	}
	return &DataClient{c: c}, nil
}

// Close releases the session pool.
func (c *DataClient) Close() {
	c.c.Close()
}

func (c *DataClient) Apply(ctx context.Context, ms []*gspanner.Mutation) (time.Time, error) {
	return c.c.Apply(ctx, ms)
}

func (c *DataClient) BatchReadOnlyTransaction(ctx context.Context) (BatchReadTxn, error) {
	txn, err := c.c.BatchReadOnlyTransaction(ctx, gspanner.StrongRead())
	if err != nil {
		return nil, err
	}
	return batchTxn{txn}, nil
}

type batchTxn struct {
	txn *gspanner.BatchReadOnlyTransaction
}

func (b batchTxn) PartitionQuery(ctx context.Context, stmt gspanner.Statement) ([]*gspanner.Partition, error) {
	return b.txn.PartitionQuery(ctx, stmt, gspanner.PartitionOptions{})
}

func (b batchTxn) Execute(ctx context.Context, p *gspanner.Partition, fn func(*gspanner.Row) error) error {
	return b.txn.Execute(ctx, p).Do(fn)
}

func (b batchTxn) Close() {
	b.txn.Close()
}

// WithRPCTimeout bounds every call made through data, including the calls of
// its transactions, by timeout. A zero timeout returns data unchanged.
//
// The data client has no per-call options, so the deadline goes on the
// context instead.
func WithRPCTimeout(data DataAPI, timeout time.Duration) DataAPI {
	if timeout <= 0 {
		return data
	}
	return timedData{data, timeout}
}

type timedData struct {
	data    DataAPI
	timeout time.Duration
}

func (d timedData) Apply(ctx context.Context, ms []*gspanner.Mutation) (time.Time, error) {
	ctx, cancel := clock.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.data.Apply(ctx, ms)
}

func (d timedData) BatchReadOnlyTransaction(ctx context.Context) (BatchReadTxn, error) {
	tctx, cancel := clock.WithTimeout(ctx, d.timeout)
	defer cancel()
	txn, err := d.data.BatchReadOnlyTransaction(tctx)
	if err != nil {
		return nil, err
	}
	return timedTxn{txn, d.timeout}, nil
}

type timedTxn struct {
	txn     BatchReadTxn
	timeout time.Duration
}

func (t timedTxn) PartitionQuery(ctx context.Context, stmt gspanner.Statement) ([]*gspanner.Partition, error) {
	ctx, cancel := clock.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.txn.PartitionQuery(ctx, stmt)
}

func (t timedTxn) Execute(ctx context.Context, p *gspanner.Partition, fn func(*gspanner.Row) error) error {
	ctx, cancel := clock.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.txn.Execute(ctx, p, fn)
}

func (t timedTxn) Close() {
	t.txn.Close()
}
