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

package transcoder

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/video/transcoder/apiv1/transcoderpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// fakeAPI is an in-memory Transcoder API. New jobs are PENDING.
type fakeAPI struct {
	jobs      map[string]*transcoderpb.Job
	templates map[string]*transcoderpb.JobTemplate
	nextID    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		jobs:      map[string]*transcoderpb.Job{},
		templates: map[string]*transcoderpb.JobTemplate{},
	}
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) CreateJob(ctx context.Context, req *transcoderpb.CreateJobRequest) (*transcoderpb.Job, error) {
	if req.Job.GetOutputUri() == "" {
		return nil, status.Errorf(codes.InvalidArgument, "output uri is required")
	}
	f.nextID++
	j := proto.Clone(req.Job).(*transcoderpb.Job)
	j.Name = req.Parent + "/jobs/" + strconv.Itoa(f.nextID)
	j.State = transcoderpb.Job_PENDING
	f.jobs[j.Name] = j
	return proto.Clone(j).(*transcoderpb.Job), nil
}

func (f *fakeAPI) GetJob(ctx context.Context, req *transcoderpb.GetJobRequest) (*transcoderpb.Job, error) {
	j, ok := f.jobs[req.Name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "%s not found", req.Name)
	}
	return proto.Clone(j).(*transcoderpb.Job), nil
}

func (f *fakeAPI) ListJobs(ctx context.Context, req *transcoderpb.ListJobsRequest) ([]*transcoderpb.Job, error) {
	var res []*transcoderpb.Job
	for name, j := range f.jobs {
		if strings.HasPrefix(name, req.Parent+"/") {
			res = append(res, proto.Clone(j).(*transcoderpb.Job))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (f *fakeAPI) DeleteJob(ctx context.Context, req *transcoderpb.DeleteJobRequest) error {
	if _, ok := f.jobs[req.Name]; !ok {
		return status.Errorf(codes.NotFound, "%s not found", req.Name)
	}
	delete(f.jobs, req.Name)
	return nil
}

func (f *fakeAPI) CreateJobTemplate(ctx context.Context, req *transcoderpb.CreateJobTemplateRequest) (*transcoderpb.JobTemplate, error) {
	name := req.Parent + "/jobTemplates/" + req.JobTemplateId
	if _, ok := f.templates[name]; ok {
		return nil, status.Errorf(codes.AlreadyExists, "%s already exists", name)
	}
	t := proto.Clone(req.JobTemplate).(*transcoderpb.JobTemplate)
	t.Name = name
	f.templates[name] = t
	return proto.Clone(t).(*transcoderpb.JobTemplate), nil
}

func (f *fakeAPI) GetJobTemplate(ctx context.Context, req *transcoderpb.GetJobTemplateRequest) (*transcoderpb.JobTemplate, error) {
	t, ok := f.templates[req.Name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "%s not found", req.Name)
	}
	return proto.Clone(t).(*transcoderpb.JobTemplate), nil
}

func (f *fakeAPI) ListJobTemplates(ctx context.Context, req *transcoderpb.ListJobTemplatesRequest) ([]*transcoderpb.JobTemplate, error) {
	var res []*transcoderpb.JobTemplate
	for name, t := range f.templates {
		if strings.HasPrefix(name, req.Parent+"/") {
			res = append(res, proto.Clone(t).(*transcoderpb.JobTemplate))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (f *fakeAPI) DeleteJobTemplate(ctx context.Context, req *transcoderpb.DeleteJobTemplateRequest) error {
	if _, ok := f.templates[req.Name]; !ok {
		return status.Errorf(codes.NotFound, "%s not found", req.Name)
	}
	delete(f.templates, req.Name)
	return nil
}
