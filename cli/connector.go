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
	"sync"
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/automl"
	"go.chromium.org/cloudsamples/internal/gapic"
	"go.chromium.org/cloudsamples/secretmanager"
	"go.chromium.org/cloudsamples/spanner"
	"go.chromium.org/cloudsamples/transcoder"
)

// Connector hands out clients of the sampled services.
type Connector interface {
	SecretManager(ctx context.Context, location string) (secretmanager.API, error)
	AutoML(ctx context.Context) (automl.API, error)
	Transcoder(ctx context.Context) (transcoder.API, error)
	SpannerAdmin(ctx context.Context) (spanner.AdminAPI, error)
	// SpannerData connects to a database, given its full name.
	SpannerData(ctx context.Context, db string) (spanner.DataAPI, error)
	// Close closes all clients handed out.
	Close() error
}

// NewConnector returns a Connector dialing the real services. A non-zero
// rpcTimeout bounds every RPC.
func NewConnector(opts []option.ClientOption, rpcTimeout time.Duration) Connector {
	return &gcpConnector{
		opts:       opts,
		callOpts:   gapic.CallOptions(rpcTimeout),
		rpcTimeout: rpcTimeout,
	}
}

type gcpConnector struct {
	opts       []option.ClientOption
	callOpts   []gax.CallOption
	rpcTimeout time.Duration

	m       sync.Mutex
	closers []func() error
}

func (c *gcpConnector) onClose(f func() error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.closers = append(c.closers, f)
}

func (c *gcpConnector) SecretManager(ctx context.Context, location string) (secretmanager.API, error) {
	cl, err := secretmanager.NewClient(ctx, location, c.callOpts, c.opts...)
	if err != nil {
		return nil, err
	}
	c.onClose(cl.Close)
	return cl, nil
}

func (c *gcpConnector) AutoML(ctx context.Context) (automl.API, error) {
	cl, err := automl.NewClient(ctx, c.callOpts, c.opts...)
	if err != nil {
		return nil, err
	}
	c.onClose(cl.Close)
	return cl, nil
}

func (c *gcpConnector) Transcoder(ctx context.Context) (transcoder.API, error) {
	cl, err := transcoder.NewClient(ctx, c.callOpts, c.opts...)
	if err != nil {
		return nil, err
	}
	c.onClose(cl.Close)
	return cl, nil
}

func (c *gcpConnector) SpannerAdmin(ctx context.Context) (spanner.AdminAPI, error) {
	cl, err := spanner.NewAdminClient(ctx, c.callOpts, c.opts...)
	if err != nil {
		return nil, err
	}
	c.onClose(cl.Close)
	return cl, nil
}

func (c *gcpConnector) SpannerData(ctx context.Context, db string) (spanner.DataAPI, error) {
	cl, err := spanner.NewDataClient(ctx, db, c.opts...)
	if err != nil {
		return nil, err
	}
	c.onClose(func() error {
		cl.Close()
		return nil
	})
	return spanner.WithRPCTimeout(cl, c.rpcTimeout), nil
}

func (c *gcpConnector) Close() error {
	c.m.Lock()
	defer c.m.Unlock()
	var merr errors.MultiError
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			merr = append(merr, err)
		}
	}
	c.closers = nil
	return merr.AsError()
}
