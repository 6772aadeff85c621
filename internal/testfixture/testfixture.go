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

// Package testfixture creates cloud resources for integration tests and
// deletes them when the test ends.
//
// Integration tests run only when $CLOUD_SAMPLES_PROJECT names a project
// the caller has credentials for. Tests needing Cloud Storage objects also
// need $CLOUD_SAMPLES_BUCKET.
package testfixture

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"

	"go.chromium.org/cloudsamples/automl"
	"go.chromium.org/cloudsamples/internal/gapic"
	"go.chromium.org/cloudsamples/internal/resname"
	"go.chromium.org/cloudsamples/internal/retryrobot"
	"go.chromium.org/cloudsamples/secretmanager"
	"go.chromium.org/cloudsamples/spanner"
	"go.chromium.org/cloudsamples/transcoder"
)

// Environment variables configuring integration tests.
const (
	ProjectEnvVar = "CLOUD_SAMPLES_PROJECT"
	BucketEnvVar  = "CLOUD_SAMPLES_BUCKET"
)

// rpcTimeout bounds every RPC made by clients handed out by a Fixture.
const rpcTimeout = 5 * time.Minute

// Fixture hands out clients and resources scoped to one test.
type Fixture struct {
	t       testing.TB
	ctx     context.Context
	opts    []option.ClientOption
	Project string
}

// New returns a Fixture for the project in $CLOUD_SAMPLES_PROJECT, skipping
// the test if it is not set.
func New(t testing.TB, opts ...option.ClientOption) *Fixture {
	t.Helper()
	project := os.Getenv(ProjectEnvVar)
	if project == "" {
		t.Skipf("$%s is not set", ProjectEnvVar)
	}
	// Cleanups run after the test context is canceled, so resources are
	// created and deleted under a context of their own.
	ctx := gologger.StdConfig.Use(context.Background())
	ctx = logging.SetLevel(ctx, logging.Debug)
	return &Fixture{t: t, ctx: ctx, opts: opts, Project: project}
}

// Context is the context to run samples with.
func (f *Fixture) Context() context.Context {
	return f.ctx
}

// cleanup registers fn to run when the test ends. Failures are logged, not
// fatal, so one leaked resource doesn't hide the test result.
func (f *Fixture) cleanup(what string, fn func(ctx context.Context) error) {
	f.t.Cleanup(func() {
		ctx, cancel := clock.WithTimeout(f.ctx, 10*time.Minute)
		defer cancel()
		if err := fn(ctx); err != nil {
			f.t.Logf("failed to clean up %s: %s", what, err)
		}
	})
}

func (f *Fixture) check(err error) {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("%s", err)
	}
}

var idAlphabetInversedRe = regexp.MustCompile(`[^a-z0-9-]+`)

// UniqueID returns an ID made of prefix, today's date and a random suffix.
//
// It is at most 30 characters long, lower case and made of letters, digits
// and dashes, so it is valid for all the resources created by tests.
func UniqueID(prefix string) string {
	var random [4]byte
	if _, err := rand.Read(random[:]); err != nil {
		panic(err)
	}
	id := fmt.Sprintf("%s-%s-%s", prefix, time.Now().UTC().Format("0102"), hex.EncodeToString(random[:]))
	return SanitizeID(id)
}

// SanitizeID transforms id into a valid resource ID. If id is already valid,
// returns it without changes.
func SanitizeID(id string) string {
	id = strings.ToLower(id)
	id = idAlphabetInversedRe.ReplaceAllLiteralString(id, "-")
	const maxLen = 30
	if len(id) > maxLen {
		id = id[len(id)-maxLen:]
	}
	id = strings.Trim(id, "-")
	if id != "" && (id[0] < 'a' || id[0] > 'z') {
		id = "t" + id
	}
	return id
}

// SecretManager returns a Secret Manager client for location, empty for
// global secrets.
func (f *Fixture) SecretManager(location string) *secretmanager.Client {
	c, err := secretmanager.NewClient(f.ctx, location, gapic.CallOptions(rpcTimeout), f.opts...)
	f.check(err)
	f.cleanup("Secret Manager client", func(context.Context) error { return c.Close() })
	return c
}

// AutoML returns an AutoML client.
func (f *Fixture) AutoML() *automl.Client {
	c, err := automl.NewClient(f.ctx, gapic.CallOptions(rpcTimeout), f.opts...)
	f.check(err)
	f.cleanup("AutoML client", func(context.Context) error { return c.Close() })
	return c
}

// Transcoder returns a Transcoder client.
func (f *Fixture) Transcoder() *transcoder.Client {
	c, err := transcoder.NewClient(f.ctx, gapic.CallOptions(rpcTimeout), f.opts...)
	f.check(err)
	f.cleanup("Transcoder client", func(context.Context) error { return c.Close() })
	return c
}

// SpannerAdmin returns a Spanner admin client.
func (f *Fixture) SpannerAdmin() *spanner.AdminClient {
	c, err := spanner.NewAdminClient(f.ctx, gapic.CallOptions(rpcTimeout), f.opts...)
	f.check(err)
	f.cleanup("Spanner admin client", func(context.Context) error { return c.Close() })
	return c
}

// SpannerData returns a Spanner client of the database db, given by its
// full name.
func (f *Fixture) SpannerData(db string) *spanner.DataClient {
	c, err := spanner.NewDataClient(f.ctx, db, f.opts...)
	f.check(err)
	f.cleanup("Spanner client", func(context.Context) error {
		c.Close()
		return nil
	})
	return c
}

// Secret creates a secret and returns its full name.
func (f *Fixture) Secret(api secretmanager.API, location string) string {
	f.t.Helper()
	s, err := secretmanager.CreateSecret(f.ctx, io.Discard, api, f.Project, location, UniqueID("secret"))
	f.check(err)
	f.cleanup(s.Name, func(ctx context.Context) error {
		return secretmanager.DeleteSecret(ctx, io.Discard, api, s.Name, "")
	})
	return s.Name
}

// SpannerInstance creates a one node instance and returns its ID.
//
// Deleting the instance also deletes its databases and backups.
func (f *Fixture) SpannerInstance(api spanner.AdminAPI) string {
	f.t.Helper()
	id := UniqueID("inst")
	_, err := spanner.CreateInstance(f.ctx, io.Discard, api, f.Project, id, "")
	f.check(err)
	f.cleanup(spanner.InstanceName(f.Project, id), func(ctx context.Context) error {
		return retryrobot.Default.Do(ctx, func() error {
			return spanner.DeleteInstance(ctx, io.Discard, api, f.Project, id)
		})
	})
	return id
}

// SpannerDatabase creates a database with the sample schema in instanceID
// and returns its ID.
func (f *Fixture) SpannerDatabase(api spanner.AdminAPI, instanceID string) string {
	f.t.Helper()
	id := UniqueID("db")
	err := spanner.CreateRetry.Do(f.ctx, func() error {
		_, err := spanner.CreateDatabase(f.ctx, io.Discard, api, f.Project, instanceID, id)
		return err
	})
	f.check(err)
	f.cleanup(spanner.DatabaseName(f.Project, instanceID, id), func(ctx context.Context) error {
		return spanner.DropDatabase(ctx, io.Discard, api, f.Project, instanceID, id)
	})
	return id
}

// AutoMLDataset creates an empty en to ja translation dataset and returns its
// ID.
func (f *Fixture) AutoMLDataset(api automl.API, location string) string {
	f.t.Helper()
	ds, err := automl.CreateTranslationDataset(f.ctx, io.Discard, api, f.Project, location, UniqueID("ds"), "en", "ja")
	f.check(err)
	id := resname.LastID(ds.Name)
	f.cleanup(ds.Name, func(ctx context.Context) error {
		return automl.DeleteDataset(ctx, io.Discard, api, f.Project, location, id)
	})
	return id
}

// Topic creates a Pub/Sub topic and returns its full name.
func (f *Fixture) Topic() string {
	f.t.Helper()
	c, err := pubsub.NewClient(f.ctx, f.Project, f.opts...)
	f.check(err)
	f.cleanup("Pub/Sub client", func(context.Context) error { return c.Close() })

	topic, err := c.CreateTopic(f.ctx, UniqueID("topic"))
	f.check(errors.WrapIf(err, "creating topic"))
	f.cleanup(topic.String(), func(ctx context.Context) error {
		return topic.Delete(ctx)
	})
	return topic.String()
}

func (f *Fixture) bucket() string {
	b := os.Getenv(BucketEnvVar)
	if b == "" {
		f.t.Skipf("$%s is not set", BucketEnvVar)
	}
	return b
}

func (f *Fixture) storage() *storage.Client {
	c, err := storage.NewClient(f.ctx, f.opts...)
	f.check(err)
	f.cleanup("Cloud Storage client", func(context.Context) error { return c.Close() })
	return c
}

// Prefix returns a gs:// prefix unique to the test in the test bucket. All
// objects under it are deleted when the test ends.
func (f *Fixture) Prefix() string {
	f.t.Helper()
	bucket := f.bucket()
	prefix := UniqueID("test") + "/"
	c := f.storage()
	f.cleanup("gs://"+bucket+"/"+prefix, func(ctx context.Context) error {
		return deletePrefix(ctx, c.Bucket(bucket), prefix)
	})
	return "gs://" + bucket + "/" + prefix
}

// Object uploads data to the test bucket and returns its gs:// URI.
func (f *Fixture) Object(name string, data []byte) string {
	f.t.Helper()
	bucket := f.bucket()
	obj := f.storage().Bucket(bucket).Object(UniqueID("obj") + "/" + name)
	w := obj.NewWriter(f.ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		f.check(errors.Fmt("uploading %s: %w", name, err))
	}
	f.check(errors.WrapIf(w.Close(), "uploading %s", name))
	f.cleanup(obj.ObjectName(), func(ctx context.Context) error { return obj.Delete(ctx) })
	return fmt.Sprintf("gs://%s/%s", bucket, obj.ObjectName())
}

// CopyObject copies the object at the gs:// URI src, e.g. a public sample
// video, into the test bucket and returns the URI of the copy.
func (f *Fixture) CopyObject(src string) string {
	f.t.Helper()
	srcBucket, srcName, err := ParseURI(src)
	f.check(err)
	bucket := f.bucket()
	c := f.storage()
	dst := c.Bucket(bucket).Object(UniqueID("obj") + "/" + srcName[strings.LastIndexByte(srcName, '/')+1:])
	_, err = dst.CopierFrom(c.Bucket(srcBucket).Object(srcName)).Run(f.ctx)
	f.check(errors.WrapIf(err, "copying %s", src))
	f.cleanup(dst.ObjectName(), func(ctx context.Context) error { return dst.Delete(ctx) })
	return fmt.Sprintf("gs://%s/%s", bucket, dst.ObjectName())
}

// ParseURI splits "gs://bucket/object" into its bucket and object name.
func ParseURI(uri string) (bucket, name string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", errors.Fmt("%q is not a gs:// URI", uri)
	}
	bucket, name, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || name == "" {
		return "", "", errors.Fmt("%q has no object name", uri)
	}
	return bucket, name, nil
}

func deletePrefix(ctx context.Context, b *storage.BucketHandle, prefix string) error {
	objs, err := gapic.Collect(b.Objects(ctx, &storage.Query{Prefix: prefix}).Next)
	if err != nil {
		return errors.Fmt("listing %s: %w", prefix, err)
	}
	var merr errors.MultiError
	for _, o := range objs {
		if err := b.Object(o.Name).Delete(ctx); err != nil {
			merr = append(merr, err)
		}
	}
	return merr.AsError()
}
