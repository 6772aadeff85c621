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

// Package secretmanager contains samples calling the Secret Manager V1 API.
//
// Each sample builds one request, sends it through an API and prints the
// interesting bits of the response to a writer.
package secretmanager

import (
	"context"
	"fmt"

	"cloud.google.com/go/iam/apiv1/iampb"
	gsm "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/gapic"
)

// API is the part of Secret Manager used by the samples.
type API interface {
	CreateSecret(ctx context.Context, req *smpb.CreateSecretRequest) (*smpb.Secret, error)
	GetSecret(ctx context.Context, req *smpb.GetSecretRequest) (*smpb.Secret, error)
	UpdateSecret(ctx context.Context, req *smpb.UpdateSecretRequest) (*smpb.Secret, error)
	DeleteSecret(ctx context.Context, req *smpb.DeleteSecretRequest) error
	ListSecrets(ctx context.Context, req *smpb.ListSecretsRequest) ([]*smpb.Secret, error)

	AddSecretVersion(ctx context.Context, req *smpb.AddSecretVersionRequest) (*smpb.SecretVersion, error)
	GetSecretVersion(ctx context.Context, req *smpb.GetSecretVersionRequest) (*smpb.SecretVersion, error)
	AccessSecretVersion(ctx context.Context, req *smpb.AccessSecretVersionRequest) (*smpb.AccessSecretVersionResponse, error)
	ListSecretVersions(ctx context.Context, req *smpb.ListSecretVersionsRequest) ([]*smpb.SecretVersion, error)
	EnableSecretVersion(ctx context.Context, req *smpb.EnableSecretVersionRequest) (*smpb.SecretVersion, error)
	DisableSecretVersion(ctx context.Context, req *smpb.DisableSecretVersionRequest) (*smpb.SecretVersion, error)
	DestroySecretVersion(ctx context.Context, req *smpb.DestroySecretVersionRequest) (*smpb.SecretVersion, error)

	GetIamPolicy(ctx context.Context, req *iampb.GetIamPolicyRequest) (*iampb.Policy, error)
	SetIamPolicy(ctx context.Context, req *iampb.SetIamPolicyRequest) (*iampb.Policy, error)
}

// Client implements API on top of the generated Secret Manager client.
type Client struct {
	c    *gsm.Client
	opts []gax.CallOption
}

var _ API = (*Client)(nil)

// RegionalEndpoint returns the API endpoint serving regional secrets in the
// given location.
func RegionalEndpoint(location string) string {
	return fmt.Sprintf("secretmanager.%s.rep.googleapis.com:443", location)
}

// NewClient dials Secret Manager.
//
// A non-empty location selects the regional endpoint for that location.
// opts are applied after it, so an explicit endpoint still wins.
func NewClient(ctx context.Context, location string, callOpts []gax.CallOption, opts ...option.ClientOption) (*Client, error) {
	if location != "" {
		opts = append([]option.ClientOption{option.WithEndpoint(RegionalEndpoint(location))}, opts...)
	}
	c, err := gsm.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Fmt("creating Secret Manager client: %w", err)
	}
	return &Client{c: c, opts: callOpts}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.c.Close()
}

// The methods below forward to the generated client, draining iterators.

func (c *Client) CreateSecret(ctx context.Context, req *smpb.CreateSecretRequest) (*smpb.Secret, error) {
	return c.c.CreateSecret(ctx, req, c.opts...)
}

func (c *Client) GetSecret(ctx context.Context, req *smpb.GetSecretRequest) (*smpb.Secret, error) {
	return c.c.GetSecret(ctx, req, c.opts...)
}

func (c *Client) UpdateSecret(ctx context.Context, req *smpb.UpdateSecretRequest) (*smpb.Secret, error) {
	return c.c.UpdateSecret(ctx, req, c.opts...)
}

func (c *Client) DeleteSecret(ctx context.Context, req *smpb.DeleteSecretRequest) error {
	return c.c.DeleteSecret(ctx, req, c.opts...)
}

func (c *Client) ListSecrets(ctx context.Context, req *smpb.ListSecretsRequest) ([]*smpb.Secret, error) {
	return gapic.Collect(c.c.ListSecrets(ctx, req, c.opts...).Next)
}

func (c *Client) AddSecretVersion(ctx context.Context, req *smpb.AddSecretVersionRequest) (*smpb.SecretVersion, error) {
	return c.c.AddSecretVersion(ctx, req, c.opts...)
}

func (c *Client) GetSecretVersion(ctx context.Context, req *smpb.GetSecretVersionRequest) (*smpb.SecretVersion, error) {
	return c.c.GetSecretVersion(ctx, req, c.opts...)
}

func (c *Client) AccessSecretVersion(ctx context.Context, req *smpb.AccessSecretVersionRequest) (*smpb.AccessSecretVersionResponse, error) {
	return c.c.AccessSecretVersion(ctx, req, c.opts...)
}

func (c *Client) ListSecretVersions(ctx context.Context, req *smpb.ListSecretVersionsRequest) ([]*smpb.SecretVersion, error) {
	return gapic.Collect(c.c.ListSecretVersions(ctx, req, c.opts...).Next)
}

func (c *Client) EnableSecretVersion(ctx context.Context, req *smpb.EnableSecretVersionRequest) (*smpb.SecretVersion, error) {
	return c.c.EnableSecretVersion(ctx, req, c.opts...)
}

func (c *Client) DisableSecretVersion(ctx context.Context, req *smpb.DisableSecretVersionRequest) (*smpb.SecretVersion, error) {
	return c.c.DisableSecretVersion(ctx, req, c.opts...)
}

func (c *Client) DestroySecretVersion(ctx context.Context, req *smpb.DestroySecretVersionRequest) (*smpb.SecretVersion, error) {
	return c.c.DestroySecretVersion(ctx, req, c.opts...)
}

func (c *Client) GetIamPolicy(ctx context.Context, req *iampb.GetIamPolicyRequest) (*iampb.Policy, error) {
	return c.c.GetIamPolicy(ctx, req, c.opts...)
}

func (c *Client) SetIamPolicy(ctx context.Context, req *iampb.SetIamPolicyRequest) (*iampb.Policy, error) {
	return c.c.SetIamPolicy(ctx, req, c.opts...)
}
