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

// Package resname formats and parses the resource names shared by the
// samples, e.g. "projects/{project}/locations/{location}".
package resname

import (
	"strings"

	"go.einride.tech/aip/resourcename"

	"go.chromium.org/luci/common/errors"
)

// Patterns of the parent resources used across services.
const (
	ProjectPattern  = "projects/{project}"
	LocationPattern = "projects/{project}/locations/{location}"
)

// Project returns "projects/{project}".
func Project(project string) string {
	return resourcename.Sprint(ProjectPattern, project)
}

// Location returns "projects/{project}/locations/{location}".
func Location(project, location string) string {
	return resourcename.Sprint(LocationPattern, project, location)
}

// Child appends "/{collection}/{id}" to parent.
func Child(parent, collection, id string) string {
	return parent + "/" + collection + "/" + id
}

// Parse extracts the variables of pattern from name.
//
// It fails if name doesn't match pattern or any variable is empty.
func Parse(name, pattern string, vars ...*string) error {
	if !resourcename.Match(pattern, name) {
		return errors.Fmt("resource name %q does not match %q", name, pattern)
	}
	if err := resourcename.Sscan(name, pattern, vars...); err != nil {
		return errors.Fmt("parsing %q: %w", name, err)
	}
	for _, v := range vars {
		if *v == "" {
			return errors.Fmt("resource name %q has an empty segment", name)
		}
	}
	return nil
}

// LastID returns the last segment of a resource name, e.g. the secret ID of
// "projects/p/secrets/s".
func LastID(name string) string {
	return name[strings.LastIndexByte(name, '/')+1:]
}
