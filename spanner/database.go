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

	adminpb "cloud.google.com/go/spanner/admin/database/apiv1/databasepb"

	"go.chromium.org/luci/common/errors"
)

// Schema is the DDL of the sample database.
var Schema = []string{
	`CREATE TABLE Singers (
		SingerId   INT64 NOT NULL,
		FirstName  STRING(1024),
		LastName   STRING(1024),
		SingerInfo BYTES(MAX)
	) PRIMARY KEY (SingerId)`,
	`CREATE TABLE Albums (
		SingerId   INT64 NOT NULL,
		AlbumId    INT64 NOT NULL,
		AlbumTitle STRING(MAX)
	) PRIMARY KEY (SingerId, AlbumId),
	INTERLEAVE IN PARENT Singers ON DELETE CASCADE`,
}

func createDatabase(ctx context.Context, api AdminAPI, project, instanceID, dbID string, enc *adminpb.EncryptionConfig) (*adminpb.Database, error) {
	db, err := api.CreateDatabase(ctx, &adminpb.CreateDatabaseRequest{
		Parent:           InstanceName(project, instanceID),
		CreateStatement:  "CREATE DATABASE `" + dbID + "`",
		ExtraStatements:  Schema,
		EncryptionConfig: enc,
	})
	if err != nil {
		return nil, errors.Fmt("failed to create database: %w", err)
	}
	return db, nil
}

// CreateDatabase creates a database with the Singers and Albums tables.
func CreateDatabase(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID string) (*adminpb.Database, error) {
	db, err := createDatabase(ctx, api, project, instanceID, dbID, nil)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Created database [%s]\n", db.GetName())
	return db, nil
}

// CreateDatabaseWithEncryptionKey creates the sample database encrypted with
// a Cloud KMS key.
func CreateDatabaseWithEncryptionKey(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID, kmsKeyName string) (*adminpb.Database, error) {
	if kmsKeyName == "" {
		return nil, errors.New("a KMS key name is required")
	}
	db, err := createDatabase(ctx, api, project, instanceID, dbID, &adminpb.EncryptionConfig{KmsKeyName: kmsKeyName})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Database %s created with encryption key %s\n", db.GetName(), db.GetEncryptionConfig().GetKmsKeyName())
	return db, nil
}

// AddColumn adds a MarketingBudget column to the Albums table.
func AddColumn(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID string) error {
	err := api.UpdateDatabaseDdl(ctx, &adminpb.UpdateDatabaseDdlRequest{
		Database:   DatabaseName(project, instanceID, dbID),
		Statements: []string{"ALTER TABLE Albums ADD COLUMN MarketingBudget INT64"},
	})
	if err != nil {
		return errors.Fmt("failed to update database DDL: %w", err)
	}
	fmt.Fprintln(w, "Added MarketingBudget column")
	return nil
}

// GetDatabaseDDL prints the DDL statements of a database.
func GetDatabaseDDL(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID string) ([]string, error) {
	name := DatabaseName(project, instanceID, dbID)
	res, err := api.GetDatabaseDdl(ctx, &adminpb.GetDatabaseDdlRequest{Database: name})
	if err != nil {
		return nil, errors.Fmt("failed to get database DDL: %w", err)
	}
	fmt.Fprintf(w, "Retrieved database DDL for %s\n", name)
	for _, s := range res {
		fmt.Fprintln(w, s)
	}
	return res, nil
}

// DropDatabase deletes a database.
func DropDatabase(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, dbID string) error {
	name := DatabaseName(project, instanceID, dbID)
	if err := api.DropDatabase(ctx, &adminpb.DropDatabaseRequest{Database: name}); err != nil {
		return errors.Fmt("failed to drop database: %w", err)
	}
	fmt.Fprintf(w, "Dropped database [%s]\n", name)
	return nil
}
