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

package secretmanager

import (
	"go.chromium.org/cloudsamples/internal/resname"
)

// Parent returns the resource that owns secrets: the project for global
// secrets, or the project location for regional ones.
func Parent(project, location string) string {
	if location == "" {
		return resname.Project(project)
	}
	return resname.Location(project, location)
}

// SecretName returns the full resource name of a secret.
func SecretName(project, location, secret string) string {
	return resname.Child(Parent(project, location), "secrets", secret)
}

// VersionName returns the full resource name of a secret version. version
// may be a number, an alias or "latest".
func VersionName(secretName, version string) string {
	return resname.Child(secretName, "versions", version)
}
