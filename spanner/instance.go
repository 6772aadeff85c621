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

package spanner

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/grpc/codes"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/resname"
	"go.chromium.org/cloudsamples/internal/retryrobot"
)

// DefaultInstanceConfig is the instance configuration used by the samples.
const DefaultInstanceConfig = "regional-us-central1"

// CreateRetry is the schedule for creating instances and backups, which
// fail while the project is at its quota of concurrent operations.
var CreateRetry = retryrobot.Robot{
	Delay:       15 * time.Second,
	Multiplier:  2,
	MaxAttempts: 5,
	ShouldRetry: retryrobot.OnCodes(codes.FailedPrecondition, codes.ResourceExhausted),
}

// CreateInstance creates a one node instance and waits for it to be ready.
func CreateInstance(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID, config string) (*instancepb.Instance, error) {
	if config == "" {
		config = DefaultInstanceConfig
	}
	req := &instancepb.CreateInstanceRequest{
		Parent:     resname.Project(project),
		InstanceId: instanceID,
		Instance: &instancepb.Instance{
			Config:      InstanceConfigName(project, config),
			DisplayName: instanceID,
			NodeCount:   1,
			Labels:      map[string]string{"cloud_spanner_samples": "true"},
		},
	}
	inst, err := retryrobot.Eval(ctx, CreateRetry, func() (*instancepb.Instance, error) {
		return api.CreateInstance(ctx, req)
	})
	if err != nil {
		return nil, errors.Fmt("failed to create instance: %w", err)
	}
	fmt.Fprintf(w, "Created instance [%s]\n", instanceID)
	return inst, nil
}

// DeleteInstance deletes an instance along with its databases and backups.
func DeleteInstance(ctx context.Context, w io.Writer, api AdminAPI, project, instanceID string) error {
	if err := api.DeleteInstance(ctx, &instancepb.DeleteInstanceRequest{Name: InstanceName(project, instanceID)}); err != nil {
		return errors.Fmt("failed to delete instance: %w", err)
	}
	fmt.Fprintf(w, "Deleted instance [%s]\n", instanceID)
	return nil
}

// ListInstanceConfigs prints the instance configurations available to a
// project along with their leader options.
func ListInstanceConfigs(ctx context.Context, w io.Writer, api AdminAPI, project string) ([]*instancepb.InstanceConfig, error) {
	res, err := api.ListInstanceConfigs(ctx, &instancepb.ListInstanceConfigsRequest{Parent: resname.Project(project)})
	if err != nil {
		return nil, errors.Fmt("failed to list instance configs: %w", err)
	}
	for _, c := range res {
		fmt.Fprintf(w, "Available leader options for instance config %s: %v\n", c.GetName(), c.GetLeaderOptions())
	}
	return res, nil
}
