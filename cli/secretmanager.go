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

package cli

import (
	"context"

	"go.chromium.org/cloudsamples/secretmanager"
)

// smVerb returns a verb whose first argument is the project. run gets the
// remaining arguments.
func smVerb(name string, args []string, help string, run func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error) *Verb {
	return &Verb{
		Name: name,
		Args: append([]string{"project"}, args...),
		Help: help,
		Run: func(ctx context.Context, e *Env, args []string) error {
			p, err := project(args[0])
			if err != nil {
				return err
			}
			api, err := e.Conn.SecretManager(ctx, e.Location)
			if err != nil {
				return err
			}
			return run(ctx, e, api, p, args[1:])
		},
	}
}

func secretName(e *Env, p, id string) string {
	return secretmanager.SecretName(p, e.Location, id)
}

func versionName(e *Env, p, id, version string) string {
	if version == "" {
		version = "latest"
	}
	return secretmanager.VersionName(secretName(e, p, id), version)
}

func secretManagerVerbs() []*Verb {
	return []*Verb{
		smVerb("secret-create", []string{"secret-id"},
			"creates a secret\nGlobal secrets use automatic replication.",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.CreateSecret(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		smVerb("secret-create-ummr", []string{"secret-id", "locations"},
			"creates a secret replicated to the given comma separated locations",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.CreateUserManagedReplicationSecret(ctx, e.Out, api, p, args[0], list(args[1]))
				return err
			}),
		smVerb("secret-create-labels", []string{"secret-id", "labels"},
			"creates a secret with labels given as k1=v1,k2=v2",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				labels, err := keyValues(args[1])
				if err != nil {
					return err
				}
				_, err = secretmanager.CreateSecretWithLabels(ctx, e.Out, api, p, e.Location, args[0], labels)
				return err
			}),
		smVerb("secret-create-annotations", []string{"secret-id", "annotations"},
			"creates a secret with annotations given as k1=v1,k2=v2",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				annotations, err := keyValues(args[1])
				if err != nil {
					return err
				}
				_, err = secretmanager.CreateSecretWithAnnotations(ctx, e.Out, api, p, e.Location, args[0], annotations)
				return err
			}),
		smVerb("secret-create-ttl", []string{"secret-id", "ttl"},
			"creates a secret deleted after a TTL, e.g. 720h",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				ttl, err := duration("ttl", args[1])
				if err != nil {
					return err
				}
				_, err = secretmanager.CreateSecretWithTTL(ctx, e.Out, api, p, e.Location, args[0], ttl)
				return err
			}),
		smVerb("secret-create-cmek", []string{"secret-id", "kms-key"},
			"creates a global secret encrypted with a Cloud KMS key",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.CreateSecretWithCMEK(ctx, e.Out, api, p, args[0], args[1])
				return err
			}),
		smVerb("secret-create-topic", []string{"secret-id", "topic"},
			"creates a secret publishing events to a Pub/Sub topic\nThe topic is a full name, projects/{project}/topics/{topic}.",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.CreateSecretWithTopic(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		smVerb("secret-add-version", []string{"secret-id", "payload"},
			"adds a secret version\nThe payload is given inline, or read from a file as @path, or from stdin as @-.",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				payload, err := readPayload(args[1])
				if err != nil {
					return err
				}
				_, err = secretmanager.AddSecretVersion(ctx, e.Out, api, secretName(e, p, args[0]), payload)
				return err
			}),
		smVerb("secret-access-version", []string{"secret-id", "[version]"},
			"prints the payload of a secret version, latest by default",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.AccessSecretVersion(ctx, e.Out, api, versionName(e, p, args[0], args[1]))
				return err
			}),
		smVerb("secret-get", []string{"secret-id"},
			"prints the metadata of a secret",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.GetSecret(ctx, e.Out, api, secretName(e, p, args[0]))
				return err
			}),
		smVerb("secret-get-version", []string{"secret-id", "[version]"},
			"prints the metadata of a secret version, latest by default",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.GetSecretVersion(ctx, e.Out, api, versionName(e, p, args[0], args[1]))
				return err
			}),
		smVerb("secret-list", []string{"[filter]"},
			"lists secrets, optionally filtered, e.g. labels.env:prod",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.ListSecrets(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		smVerb("secret-list-versions", []string{"secret-id", "[filter]"},
			"lists the versions of a secret, optionally filtered, e.g. state:ENABLED",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.ListSecretVersions(ctx, e.Out, api, secretName(e, p, args[0]), args[1])
				return err
			}),
		smVerb("secret-update", []string{"secret-id", "labels"},
			"replaces the labels of a secret with k1=v1,k2=v2",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				labels, err := keyValues(args[1])
				if err != nil {
					return err
				}
				_, err = secretmanager.UpdateSecret(ctx, e.Out, api, secretName(e, p, args[0]), labels)
				return err
			}),
		smVerb("secret-update-etag", []string{"secret-id", "etag", "labels"},
			"replaces the labels of a secret if its etag matches",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				labels, err := keyValues(args[2])
				if err != nil {
					return err
				}
				_, err = secretmanager.UpdateSecretWithETag(ctx, e.Out, api, secretName(e, p, args[0]), args[1], labels)
				return err
			}),
		smVerb("secret-update-alias", []string{"secret-id", "alias", "version"},
			"points a version alias of a secret at a version number",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				v, err := integer("version", args[2], 64)
				if err != nil {
					return err
				}
				_, err = secretmanager.UpdateSecretWithAlias(ctx, e.Out, api, secretName(e, p, args[0]), args[1], v)
				return err
			}),
		smVerb("secret-label-edit", []string{"secret-id", "key", "value"},
			"sets one label of a secret",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.EditSecretLabel(ctx, e.Out, api, secretName(e, p, args[0]), args[1], args[2])
				return err
			}),
		smVerb("secret-label-delete", []string{"secret-id", "key"},
			"deletes one label of a secret",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.DeleteSecretLabel(ctx, e.Out, api, secretName(e, p, args[0]), args[1])
				return err
			}),
		smVerb("secret-annotation-edit", []string{"secret-id", "key", "value"},
			"sets one annotation of a secret",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.EditSecretAnnotation(ctx, e.Out, api, secretName(e, p, args[0]), args[1], args[2])
				return err
			}),
		smVerb("secret-enable-version", []string{"secret-id", "version", "[etag]"},
			"enables a secret version",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.EnableSecretVersion(ctx, e.Out, api, versionName(e, p, args[0], args[1]), args[2])
				return err
			}),
		smVerb("secret-disable-version", []string{"secret-id", "version", "[etag]"},
			"disables a secret version",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.DisableSecretVersion(ctx, e.Out, api, versionName(e, p, args[0], args[1]), args[2])
				return err
			}),
		smVerb("secret-destroy-version", []string{"secret-id", "version", "[etag]"},
			"irreversibly destroys the payload of a secret version",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.DestroySecretVersion(ctx, e.Out, api, versionName(e, p, args[0], args[1]), args[2])
				return err
			}),
		smVerb("secret-delete", []string{"secret-id", "[etag]"},
			"deletes a secret and all its versions",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				return secretmanager.DeleteSecret(ctx, e.Out, api, secretName(e, p, args[0]), args[1])
			}),
		smVerb("secret-iam-grant", []string{"secret-id", "member"},
			"grants a member, e.g. user:foo@example.com, access to a secret",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.IAMGrantAccess(ctx, e.Out, api, secretName(e, p, args[0]), args[1])
				return err
			}),
		smVerb("secret-iam-revoke", []string{"secret-id", "member"},
			"revokes the access of a member to a secret",
			func(ctx context.Context, e *Env, api secretmanager.API, p string, args []string) error {
				_, err := secretmanager.IAMRevokeAccess(ctx, e.Out, api, secretName(e, p, args[0]), args[1])
				return err
			}),
	}
}
