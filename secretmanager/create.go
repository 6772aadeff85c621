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
	"time"

	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/errors"
)

// createSecret creates secretID under the parent selected by location.
//
// Global secrets get automatic replication unless secret already specifies
// a policy. Regional secrets must not carry one.
func createSecret(ctx context.Context, w io.Writer, api API, project, location, secretID string, secret *smpb.Secret) (*smpb.Secret, error) {
	if location == "" && secret.Replication == nil {
		secret.Replication = &smpb.Replication{
			Replication: &smpb.Replication_Automatic_{
				Automatic: &smpb.Replication_Automatic{},
			},
		}
	}
	res, err := api.CreateSecret(ctx, &smpb.CreateSecretRequest{
		Parent:   Parent(project, location),
		SecretId: secretID,
		Secret:   secret,
	})
	if err != nil {
		return nil, errors.Fmt("failed to create secret: %w", err)
	}
	fmt.Fprintf(w, "Created secret: %s\n", res.Name)
	return res, nil
}

// CreateSecret creates a secret with automatic replication, or a regional
// secret if location is not empty.
func CreateSecret(ctx context.Context, w io.Writer, api API, project, location, secretID string) (*smpb.Secret, error) {
	return createSecret(ctx, w, api, project, location, secretID, &smpb.Secret{})
}

// CreateUserManagedReplicationSecret creates a secret replicated only to
// the given locations.
func CreateUserManagedReplicationSecret(ctx context.Context, w io.Writer, api API, project, secretID string, locations []string) (*smpb.Secret, error) {
	if len(locations) == 0 {
		return nil, errors.New("at least one replica location is required")
	}
	// The service rejects duplicate replicas.
	locations = stringset.NewFromSlice(locations...).ToSortedSlice()
	replicas := make([]*smpb.Replication_UserManaged_Replica, len(locations))
	for i, loc := range locations {
		replicas[i] = &smpb.Replication_UserManaged_Replica{Location: loc}
	}
	return createSecret(ctx, w, api, project, "", secretID, &smpb.Secret{
		Replication: &smpb.Replication{
			Replication: &smpb.Replication_UserManaged_{
				UserManaged: &smpb.Replication_UserManaged{Replicas: replicas},
			},
		},
	})
}

// CreateSecretWithLabels creates a secret carrying the given labels.
func CreateSecretWithLabels(ctx context.Context, w io.Writer, api API, project, location, secretID string, labels map[string]string) (*smpb.Secret, error) {
	return createSecret(ctx, w, api, project, location, secretID, &smpb.Secret{Labels: labels})
}

// CreateSecretWithAnnotations creates a secret carrying the given
// annotations.
func CreateSecretWithAnnotations(ctx context.Context, w io.Writer, api API, project, location, secretID string, annotations map[string]string) (*smpb.Secret, error) {
	return createSecret(ctx, w, api, project, location, secretID, &smpb.Secret{Annotations: annotations})
}

// CreateSecretWithTTL creates a secret that expires after ttl.
func CreateSecretWithTTL(ctx context.Context, w io.Writer, api API, project, location, secretID string, ttl time.Duration) (*smpb.Secret, error) {
	if ttl <= 0 {
		return nil, errors.Fmt("ttl must be positive, got %s", ttl)
	}
	return createSecret(ctx, w, api, project, location, secretID, &smpb.Secret{
		Expiration: &smpb.Secret_Ttl{Ttl: durationpb.New(ttl)},
	})
}

// CreateSecretWithCMEK creates a global secret whose payloads are encrypted
// with a customer-managed Cloud KMS key.
//
// kmsKeyName has the form
// "projects/{p}/locations/global/keyRings/{r}/cryptoKeys/{k}".
func CreateSecretWithCMEK(ctx context.Context, w io.Writer, api API, project, secretID, kmsKeyName string) (*smpb.Secret, error) {
	return createSecret(ctx, w, api, project, "", secretID, &smpb.Secret{
		Replication: &smpb.Replication{
			Replication: &smpb.Replication_Automatic_{
				Automatic: &smpb.Replication_Automatic{
					CustomerManagedEncryption: &smpb.CustomerManagedEncryption{
						KmsKeyName: kmsKeyName,
					},
				},
			},
		},
	})
}

// CreateSecretWithTopic creates a secret that publishes change events to a
// Pub/Sub topic ("projects/{p}/topics/{t}").
func CreateSecretWithTopic(ctx context.Context, w io.Writer, api API, project, location, secretID, topic string) (*smpb.Secret, error) {
	return createSecret(ctx, w, api, project, location, secretID, &smpb.Secret{
		Topics: []*smpb.Topic{{Name: topic}},
	})
}
