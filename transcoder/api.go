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

// Package transcoder contains samples calling the Transcoder V1 API.
package transcoder

import (
	"context"

	tc "cloud.google.com/go/video/transcoder/apiv1"
	"cloud.google.com/go/video/transcoder/apiv1/transcoderpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/gapic"
	"go.chromium.org/cloudsamples/internal/resname"
)

// API is the part of the Transcoder API used by the samples.
type API interface {
	CreateJob(ctx context.Context, req *transcoderpb.CreateJobRequest) (*transcoderpb.Job, error)
	GetJob(ctx context.Context, req *transcoderpb.GetJobRequest) (*transcoderpb.Job, error)
	ListJobs(ctx context.Context, req *transcoderpb.ListJobsRequest) ([]*transcoderpb.Job, error)
	DeleteJob(ctx context.Context, req *transcoderpb.DeleteJobRequest) error

	CreateJobTemplate(ctx context.Context, req *transcoderpb.CreateJobTemplateRequest) (*transcoderpb.JobTemplate, error)
	GetJobTemplate(ctx context.Context, req *transcoderpb.GetJobTemplateRequest) (*transcoderpb.JobTemplate, error)
	ListJobTemplates(ctx context.Context, req *transcoderpb.ListJobTemplatesRequest) ([]*transcoderpb.JobTemplate, error)
	DeleteJobTemplate(ctx context.Context, req *transcoderpb.DeleteJobTemplateRequest) error
}

// Client implements API on top of the generated Transcoder client.
type Client struct {
	c    *tc.Client
	opts []gax.CallOption
}

var _ API = (*Client)(nil)

// NewClient dials the Transcoder API.
func NewClient(ctx context.Context, callOpts []gax.CallOption, opts ...option.ClientOption) (*Client, error) {
	c, err := tc.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Fmt("creating Transcoder client: %w", err)
	}
	return &Client{c: c, opts: callOpts}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.c.Close()
}

func (c *Client) CreateJob(ctx context.Context, req *transcoderpb.CreateJobRequest) (*transcoderpb.Job, error) {
	return c.c.CreateJob(ctx, req, c.opts...)
}

func (c *Client) GetJob(ctx context.Context, req *transcoderpb.GetJobRequest) (*transcoderpb.Job, error) {
	return c.c.GetJob(ctx, req, c.opts...)
}

func (c *Client) ListJobs(ctx context.Context, req *transcoderpb.ListJobsRequest) ([]*transcoderpb.Job, error) {
	return gapic.Collect(c.c.ListJobs(ctx, req, c.opts...).Next)
}

func (c *Client) DeleteJob(ctx context.Context, req *transcoderpb.DeleteJobRequest) error {
	return c.c.DeleteJob(ctx, req, c.opts...)
}

func (c *Client) CreateJobTemplate(ctx context.Context, req *transcoderpb.CreateJobTemplateRequest) (*transcoderpb.JobTemplate, error) {
	return c.c.CreateJobTemplate(ctx, req, c.opts...)
}

func (c *Client) GetJobTemplate(ctx context.Context, req *transcoderpb.GetJobTemplateRequest) (*transcoderpb.JobTemplate, error) {
	return c.c.GetJobTemplate(ctx, req, c.opts...)
}

func (c *Client) ListJobTemplates(ctx context.Context, req *transcoderpb.ListJobTemplatesRequest) ([]*transcoderpb.JobTemplate, error) {
	return gapic.Collect(c.c.ListJobTemplates(ctx, req, c.opts...).Next)
}

func (c *Client) DeleteJobTemplate(ctx context.Context, req *transcoderpb.DeleteJobTemplateRequest) error {
	return c.c.DeleteJobTemplate(ctx, req, c.opts...)
}

// JobName returns the full resource name of a job.
func JobName(project, location, jobID string) string {
	return resname.Child(resname.Location(project, location), "jobs", jobID)
}

// TemplateName returns the full resource name of a job template.
func TemplateName(project, location, templateID string) string {
	return resname.Child(resname.Location(project, location), "jobTemplates", templateID)
}
