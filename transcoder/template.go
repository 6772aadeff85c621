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
	"fmt"
	"io"

	"cloud.google.com/go/video/transcoder/apiv1/transcoderpb"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/resname"
)

// CreateJobTemplate stores the ad-hoc SD/HD config as a reusable template.
func CreateJobTemplate(ctx context.Context, w io.Writer, api API, project, location, templateID string) (*transcoderpb.JobTemplate, error) {
	res, err := api.CreateJobTemplate(ctx, &transcoderpb.CreateJobTemplateRequest{
		Parent:        resname.Location(project, location),
		JobTemplateId: templateID,
		JobTemplate:   &transcoderpb.JobTemplate{Config: adHocConfig()},
	})
	if err != nil {
		return nil, errors.Fmt("failed to create job template: %w", err)
	}
	fmt.Fprintf(w, "Job template: %s\n", res.GetName())
	return res, nil
}

// GetJobTemplate prints the name of a job template.
func GetJobTemplate(ctx context.Context, w io.Writer, api API, project, location, templateID string) (*transcoderpb.JobTemplate, error) {
	res, err := api.GetJobTemplate(ctx, &transcoderpb.GetJobTemplateRequest{Name: TemplateName(project, location, templateID)})
	if err != nil {
		return nil, errors.Fmt("failed to get job template: %w", err)
	}
	fmt.Fprintf(w, "Job template: %s\n", res.GetName())
	return res, nil
}

// ListJobTemplates prints the names of all job templates in a location.
func ListJobTemplates(ctx context.Context, w io.Writer, api API, project, location string) ([]*transcoderpb.JobTemplate, error) {
	res, err := api.ListJobTemplates(ctx, &transcoderpb.ListJobTemplatesRequest{Parent: resname.Location(project, location)})
	if err != nil {
		return nil, errors.Fmt("failed to list job templates: %w", err)
	}
	fmt.Fprintln(w, "Job templates:")
	for _, t := range res {
		fmt.Fprintln(w, t.GetName())
	}
	return res, nil
}

// DeleteJobTemplate deletes a job template.
func DeleteJobTemplate(ctx context.Context, w io.Writer, api API, project, location, templateID string) error {
	if err := api.DeleteJobTemplate(ctx, &transcoderpb.DeleteJobTemplateRequest{Name: TemplateName(project, location, templateID)}); err != nil {
		return errors.Fmt("failed to delete job template: %w", err)
	}
	fmt.Fprintln(w, "Deleted job template")
	return nil
}
