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
	"io"

	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"go.chromium.org/luci/common/errors"
)

// GetSecret prints the metadata of secretName.
func GetSecret(ctx context.Context, w io.Writer, api API, secretName string) (*smpb.Secret, error) {
	res, err := api.GetSecret(ctx, &smpb.GetSecretRequest{Name: secretName})
	if err != nil {
		return nil, errors.Fmt("failed to get secret: %w", err)
	}
	fmt.Fprintf(w, "Found secret %s with replication policy %s\n", res.Name, replicationPolicy(res))
	return res, nil
}

func replicationPolicy(s *smpb.Secret) string {
	switch s.GetReplication().GetReplication().(type) {
	case *smpb.Replication_Automatic_:
		return "automatic"
	case *smpb.Replication_UserManaged_:
		return "user-managed"
	default:
		return "none (regional)"
	}
}

// ListSecrets prints the secrets under the parent selected by location that
// match filter, e.g. "labels.env:prod".
func ListSecrets(ctx context.Context, w io.Writer, api API, project, location, filter string) ([]*smpb.Secret, error) {
	res, err := api.ListSecrets(ctx, &smpb.ListSecretsRequest{
		Parent: Parent(project, location),
		Filter: filter,
	})
	if err != nil {
		return nil, errors.Fmt("failed to list secrets: %w", err)
	}
	for _, s := range res {
		fmt.Fprintf(w, "Found secret %s\n", s.Name)
	}
	return res, nil
}

// updateSecret sends the fields of s listed in paths.
func updateSecret(ctx context.Context, w io.Writer, api API, s *smpb.Secret, paths ...string) (*smpb.Secret, error) {
	res, err := api.UpdateSecret(ctx, &smpb.UpdateSecretRequest{
		Secret:     s,
		UpdateMask: &fieldmaskpb.FieldMask{Paths: paths},
	})
	if err != nil {
		return nil, errors.Fmt("failed to update secret: %w", err)
	}
	fmt.Fprintf(w, "Updated secret: %s\n", res.Name)
	return res, nil
}

// UpdateSecret replaces the labels of secretName.
func UpdateSecret(ctx context.Context, w io.Writer, api API, secretName string, labels map[string]string) (*smpb.Secret, error) {
	return updateSecret(ctx, w, api, &smpb.Secret{Name: secretName, Labels: labels}, "labels")
}

// UpdateSecretWithETag replaces the labels of secretName only if the secret
// has not changed since it was read.
func UpdateSecretWithETag(ctx context.Context, w io.Writer, api API, secretName, etag string, labels map[string]string) (*smpb.Secret, error) {
	return updateSecret(ctx, w, api, &smpb.Secret{Name: secretName, Etag: etag, Labels: labels}, "labels")
}

// UpdateSecretWithAlias points alias at version number of secretName.
func UpdateSecretWithAlias(ctx context.Context, w io.Writer, api API, secretName, alias string, version int64) (*smpb.Secret, error) {
	if version <= 0 {
		return nil, errors.Fmt("version must be positive, got %d", version)
	}
	return updateSecret(ctx, w, api, &smpb.Secret{
		Name:           secretName,
		VersionAliases: map[string]int64{alias: version},
	}, "version_aliases")
}

// EditSecretLabel sets one label, keeping the others.
func EditSecretLabel(ctx context.Context, w io.Writer, api API, secretName, key, value string) (*smpb.Secret, error) {
	cur, err := api.GetSecret(ctx, &smpb.GetSecretRequest{Name: secretName})
	if err != nil {
		return nil, errors.Fmt("failed to get secret: %w", err)
	}
	labels := make(map[string]string, len(cur.Labels)+1)
	for k, v := range cur.Labels {
		labels[k] = v
	}
	labels[key] = value
	return updateSecret(ctx, w, api, &smpb.Secret{Name: secretName, Etag: cur.Etag, Labels: labels}, "labels")
}

// DeleteSecretLabel removes one label, keeping the others.
func DeleteSecretLabel(ctx context.Context, w io.Writer, api API, secretName, key string) (*smpb.Secret, error) {
	cur, err := api.GetSecret(ctx, &smpb.GetSecretRequest{Name: secretName})
	if err != nil {
		return nil, errors.Fmt("failed to get secret: %w", err)
	}
	labels := make(map[string]string, len(cur.Labels))
	for k, v := range cur.Labels {
		if k != key {
			labels[k] = v
		}
	}
	return updateSecret(ctx, w, api, &smpb.Secret{Name: secretName, Etag: cur.Etag, Labels: labels}, "labels")
}

// EditSecretAnnotation sets one annotation, keeping the others.
func EditSecretAnnotation(ctx context.Context, w io.Writer, api API, secretName, key, value string) (*smpb.Secret, error) {
	cur, err := api.GetSecret(ctx, &smpb.GetSecretRequest{Name: secretName})
	if err != nil {
		return nil, errors.Fmt("failed to get secret: %w", err)
	}
	annotations := make(map[string]string, len(cur.Annotations)+1)
	for k, v := range cur.Annotations {
		annotations[k] = v
	}
	annotations[key] = value
	return updateSecret(ctx, w, api, &smpb.Secret{Name: secretName, Etag: cur.Etag, Annotations: annotations}, "annotations")
}

// DeleteSecret deletes secretName and all its versions. A non-empty etag
// makes the deletion conditional.
func DeleteSecret(ctx context.Context, w io.Writer, api API, secretName, etag string) error {
	if err := api.DeleteSecret(ctx, &smpb.DeleteSecretRequest{Name: secretName, Etag: etag}); err != nil {
		return errors.Fmt("failed to delete secret: %w", err)
	}
	fmt.Fprintf(w, "Deleted secret: %s\n", secretName)
	return nil
}
