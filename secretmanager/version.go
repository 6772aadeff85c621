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
	"context"
	"fmt"
	"hash/crc32"
	"io"

	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	"go.chromium.org/luci/common/errors"
)

var crc32c = crc32.MakeTable(crc32.Castagnoli)

// ErrDataCorruption is returned when an accessed payload does not match the
// checksum the service sent along with it.
var ErrDataCorruption = errors.New("data corruption detected")

// checksum is the CRC32C of data in the form the API expects.
func checksum(data []byte) int64 {
	return int64(crc32.Checksum(data, crc32c))
}

// AddSecretVersion adds a version holding payload to secretName.
//
// The payload checksum is sent too, so the service rejects the version if it
// gets corrupted on the way.
func AddSecretVersion(ctx context.Context, w io.Writer, api API, secretName string, payload []byte) (*smpb.SecretVersion, error) {
	sum := checksum(payload)
	res, err := api.AddSecretVersion(ctx, &smpb.AddSecretVersionRequest{
		Parent: secretName,
		Payload: &smpb.SecretPayload{
			Data:       payload,
			DataCrc32C: &sum,
		},
	})
	if err != nil {
		return nil, errors.Fmt("failed to add secret version: %w", err)
	}
	fmt.Fprintf(w, "Added secret version: %s\n", res.Name)
	return res, nil
}

// AccessSecretVersion returns the payload of versionName, verifying its
// checksum.
//
// The payload is printed, which is fine for samples and nothing else.
func AccessSecretVersion(ctx context.Context, w io.Writer, api API, versionName string) ([]byte, error) {
	res, err := api.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{Name: versionName})
	if err != nil {
		return nil, errors.Fmt("failed to access secret version: %w", err)
	}
	data := res.GetPayload().GetData()
	if want := res.GetPayload().DataCrc32C; want != nil && checksum(data) != *want {
		return nil, ErrDataCorruption
	}
	fmt.Fprintf(w, "Plaintext: %s\n", data)
	return data, nil
}

// GetSecretVersion prints the metadata of versionName.
func GetSecretVersion(ctx context.Context, w io.Writer, api API, versionName string) (*smpb.SecretVersion, error) {
	res, err := api.GetSecretVersion(ctx, &smpb.GetSecretVersionRequest{Name: versionName})
	if err != nil {
		return nil, errors.Fmt("failed to get secret version: %w", err)
	}
	fmt.Fprintf(w, "Found secret version %s with state %s\n", res.Name, res.State)
	return res, nil
}

// ListSecretVersions prints the versions of secretName matching filter.
// An empty filter matches everything, e.g. "state:ENABLED" lists only
// enabled versions.
func ListSecretVersions(ctx context.Context, w io.Writer, api API, secretName, filter string) ([]*smpb.SecretVersion, error) {
	res, err := api.ListSecretVersions(ctx, &smpb.ListSecretVersionsRequest{
		Parent: secretName,
		Filter: filter,
	})
	if err != nil {
		return nil, errors.Fmt("failed to list secret versions: %w", err)
	}
	for _, v := range res {
		fmt.Fprintf(w, "Found secret version %s with state %s\n", v.Name, v.State)
	}
	return res, nil
}

// EnableSecretVersion enables a disabled version. A non-empty etag makes the
// call conditional on the version not having changed.
func EnableSecretVersion(ctx context.Context, w io.Writer, api API, versionName, etag string) (*smpb.SecretVersion, error) {
	res, err := api.EnableSecretVersion(ctx, &smpb.EnableSecretVersionRequest{Name: versionName, Etag: etag})
	if err != nil {
		return nil, errors.Fmt("failed to enable secret version: %w", err)
	}
	fmt.Fprintf(w, "Enabled secret version: %s\n", res.Name)
	return res, nil
}

// DisableSecretVersion disables a version. Disabled versions can't be
// accessed but can be enabled again.
func DisableSecretVersion(ctx context.Context, w io.Writer, api API, versionName, etag string) (*smpb.SecretVersion, error) {
	res, err := api.DisableSecretVersion(ctx, &smpb.DisableSecretVersionRequest{Name: versionName, Etag: etag})
	if err != nil {
		return nil, errors.Fmt("failed to disable secret version: %w", err)
	}
	fmt.Fprintf(w, "Disabled secret version: %s\n", res.Name)
	return res, nil
}

// DestroySecretVersion irreversibly destroys the payload of a version.
func DestroySecretVersion(ctx context.Context, w io.Writer, api API, versionName, etag string) (*smpb.SecretVersion, error) {
	res, err := api.DestroySecretVersion(ctx, &smpb.DestroySecretVersionRequest{Name: versionName, Etag: etag})
	if err != nil {
		return nil, errors.Fmt("failed to destroy secret version: %w", err)
	}
	fmt.Fprintf(w, "Destroyed secret version: %s\n", res.Name)
	return res, nil
}
