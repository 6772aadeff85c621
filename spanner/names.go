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
	"go.einride.tech/aip/resourcename"

	"go.chromium.org/cloudsamples/internal/resname"
)

const (
	instancePattern = "projects/{project}/instances/{instance}"
	databasePattern = "projects/{project}/instances/{instance}/databases/{database}"
)

// InstanceName returns "projects/{project}/instances/{instance}".
func InstanceName(project, instance string) string {
	return resourcename.Sprint(instancePattern, project, instance)
}

// InstanceConfigName returns "projects/{project}/instanceConfigs/{config}".
func InstanceConfigName(project, config string) string {
	return resname.Child(resname.Project(project), "instanceConfigs", config)
}

// DatabaseName returns the full resource name of a database.
func DatabaseName(project, instance, db string) string {
	return resourcename.Sprint(databasePattern, project, instance, db)
}

// BackupName returns the full resource name of a backup.
func BackupName(project, instance, backup string) string {
	return resname.Child(InstanceName(project, instance), "backups", backup)
}
