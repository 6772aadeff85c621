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

// Package automl contains samples calling the AutoML V1 API.
package automl

import (
	"context"

	gautoml "cloud.google.com/go/automl/apiv1"
	"cloud.google.com/go/automl/apiv1/automlpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/gapic"
	"go.chromium.org/cloudsamples/internal/resname"
)

// DefaultLocation is the only location serving most AutoML models.
const DefaultLocation = "us-central1"

// API is the part of the AutoML API used by the samples.
//
// Long-running operations are awaited by the implementation, except for
// CreateModel which returns the name of the training operation.
type API interface {
	CreateDataset(ctx context.Context, req *automlpb.CreateDatasetRequest) (*automlpb.Dataset, error)
	GetDataset(ctx context.Context, req *automlpb.GetDatasetRequest) (*automlpb.Dataset, error)
	ListDatasets(ctx context.Context, req *automlpb.ListDatasetsRequest) ([]*automlpb.Dataset, error)
	DeleteDataset(ctx context.Context, req *automlpb.DeleteDatasetRequest) error
	ImportData(ctx context.Context, req *automlpb.ImportDataRequest) error
	ExportData(ctx context.Context, req *automlpb.ExportDataRequest) error

	CreateModel(ctx context.Context, req *automlpb.CreateModelRequest) (string, error)
	GetModel(ctx context.Context, req *automlpb.GetModelRequest) (*automlpb.Model, error)
	ListModels(ctx context.Context, req *automlpb.ListModelsRequest) ([]*automlpb.Model, error)
	DeleteModel(ctx context.Context, req *automlpb.DeleteModelRequest) error
	DeployModel(ctx context.Context, req *automlpb.DeployModelRequest) error
	UndeployModel(ctx context.Context, req *automlpb.UndeployModelRequest) error
	GetModelEvaluation(ctx context.Context, req *automlpb.GetModelEvaluationRequest) (*automlpb.ModelEvaluation, error)
	ListModelEvaluations(ctx context.Context, req *automlpb.ListModelEvaluationsRequest) ([]*automlpb.ModelEvaluation, error)

	Predict(ctx context.Context, req *automlpb.PredictRequest) (*automlpb.PredictResponse, error)
	BatchPredict(ctx context.Context, req *automlpb.BatchPredictRequest) (*automlpb.BatchPredictResult, error)

	GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest) (*longrunningpb.Operation, error)
	ListOperations(ctx context.Context, req *longrunningpb.ListOperationsRequest) ([]*longrunningpb.Operation, error)
}

// Client implements API on top of the generated AutoML and prediction
// clients.
type Client struct {
	c    *gautoml.Client
	p    *gautoml.PredictionClient
	opts []gax.CallOption
}

var _ API = (*Client)(nil)

// NewClient dials the AutoML API.
func NewClient(ctx context.Context, callOpts []gax.CallOption, opts ...option.ClientOption) (*Client, error) {
	c, err := gautoml.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Fmt("creating AutoML client: %w", err)
	}
	p, err := gautoml.NewPredictionClient(ctx, opts...)
	if err != nil {
		c.Close()
		return nil, errors.Fmt("creating AutoML prediction client: %w", err)
	}
	return &Client{c: c, p: p, opts: callOpts}, nil
}

// Close closes both underlying connections.
func (c *Client) Close() error {
	err := c.c.Close()
	if perr := c.p.Close(); err == nil {
		err = perr
	}
	return err
}

func (c *Client) CreateDataset(ctx context.Context, req *automlpb.CreateDatasetRequest) (*automlpb.Dataset, error) {
	op, err := c.c.CreateDataset(ctx, req, c.opts...)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) GetDataset(ctx context.Context, req *automlpb.GetDatasetRequest) (*automlpb.Dataset, error) {
	return c.c.GetDataset(ctx, req, c.opts...)
}

func (c *Client) ListDatasets(ctx context.Context, req *automlpb.ListDatasetsRequest) ([]*automlpb.Dataset, error) {
	return gapic.Collect(c.c.ListDatasets(ctx, req, c.opts...).Next)
}

func (c *Client) DeleteDataset(ctx context.Context, req *automlpb.DeleteDatasetRequest) error {
	op, err := c.c.DeleteDataset(ctx, req, c.opts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) ImportData(ctx context.Context, req *automlpb.ImportDataRequest) error {
	op, err := c.c.ImportData(ctx, req, c.opts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) ExportData(ctx context.Context, req *automlpb.ExportDataRequest) error {
	op, err := c.c.ExportData(ctx, req, c.opts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) CreateModel(ctx context.Context, req *automlpb.CreateModelRequest) (string, error) {
	op, err := c.c.CreateModel(ctx, req, c.opts...)
	if err != nil {
		return "", err
	}
	return op.Name(), nil
}

func (c *Client) GetModel(ctx context.Context, req *automlpb.GetModelRequest) (*automlpb.Model, error) {
	return c.c.GetModel(ctx, req, c.opts...)
}

func (c *Client) ListModels(ctx context.Context, req *automlpb.ListModelsRequest) ([]*automlpb.Model, error) {
	return gapic.Collect(c.c.ListModels(ctx, req, c.opts...).Next)
}

func (c *Client) DeleteModel(ctx context.Context, req *automlpb.DeleteModelRequest) error {
	op, err := c.c.DeleteModel(ctx, req, c.opts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) DeployModel(ctx context.Context, req *automlpb.DeployModelRequest) error {
	op, err := c.c.DeployModel(ctx, req, c.opts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) UndeployModel(ctx context.Context, req *automlpb.UndeployModelRequest) error {
	op, err := c.c.UndeployModel(ctx, req, c.opts...)
	if err != nil {
		return err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) GetModelEvaluation(ctx context.Context, req *automlpb.GetModelEvaluationRequest) (*automlpb.ModelEvaluation, error) {
	return c.c.GetModelEvaluation(ctx, req, c.opts...)
}

func (c *Client) ListModelEvaluations(ctx context.Context, req *automlpb.ListModelEvaluationsRequest) ([]*automlpb.ModelEvaluation, error) {
	return gapic.Collect(c.c.ListModelEvaluations(ctx, req, c.opts...).Next)
}

func (c *Client) Predict(ctx context.Context, req *automlpb.PredictRequest) (*automlpb.PredictResponse, error) {
	return c.p.Predict(ctx, req, c.opts...)
}

func (c *Client) BatchPredict(ctx context.Context, req *automlpb.BatchPredictRequest) (*automlpb.BatchPredictResult, error) {
	op, err := c.p.BatchPredict(ctx, req, c.opts...)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx, c.opts...)
}

func (c *Client) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest) (*longrunningpb.Operation, error) {
	return c.c.LROClient.GetOperation(ctx, req, c.opts...)
}

func (c *Client) ListOperations(ctx context.Context, req *longrunningpb.ListOperationsRequest) ([]*longrunningpb.Operation, error) {
	return gapic.Collect(c.c.LROClient.ListOperations(ctx, req, c.opts...).Next)
}

func location(project, loc string) string {
	if loc == "" {
		loc = DefaultLocation
	}
	return resname.Location(project, loc)
}

// DatasetName returns the full resource name of a dataset.
func DatasetName(project, loc, datasetID string) string {
	return resname.Child(location(project, loc), "datasets", datasetID)
}

// ModelName returns the full resource name of a model.
func ModelName(project, loc, modelID string) string {
	return resname.Child(location(project, loc), "models", modelID)
}
