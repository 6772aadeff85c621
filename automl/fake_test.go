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

package automl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/automl/apiv1/automlpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// fakeAPI is an in-memory AutoML. Models are created untrained and their
// training operations never finish.
type fakeAPI struct {
	datasets map[string]*automlpb.Dataset
	models   map[string]*automlpb.Model
	evals    map[string]*automlpb.ModelEvaluation
	ops      map[string]*longrunningpb.Operation
	nextID   int

	// predictions are returned by Predict.
	predictions []*automlpb.AnnotationPayload
	lastPredict *automlpb.PredictRequest
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		datasets: map[string]*automlpb.Dataset{},
		models:   map[string]*automlpb.Model{},
		evals:    map[string]*automlpb.ModelEvaluation{},
		ops:      map[string]*longrunningpb.Operation{},
	}
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func notFound(name string) error {
	return status.Errorf(codes.NotFound, "%s not found", name)
}

func children[T proto.Message](m map[string]T, parent string) []T {
	var names []string
	for name := range m {
		if strings.HasPrefix(name, parent+"/") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	res := make([]T, len(names))
	for i, name := range names {
		res[i] = proto.Clone(m[name]).(T)
	}
	return res
}

func (f *fakeAPI) CreateDataset(ctx context.Context, req *automlpb.CreateDatasetRequest) (*automlpb.Dataset, error) {
	if req.Dataset.GetDatasetMetadata() == nil {
		return nil, status.Errorf(codes.InvalidArgument, "dataset metadata is required")
	}
	ds := proto.Clone(req.Dataset).(*automlpb.Dataset)
	ds.Name = req.Parent + "/datasets/" + f.id("DS")
	f.datasets[ds.Name] = ds
	return proto.Clone(ds).(*automlpb.Dataset), nil
}

func (f *fakeAPI) GetDataset(ctx context.Context, req *automlpb.GetDatasetRequest) (*automlpb.Dataset, error) {
	ds, ok := f.datasets[req.Name]
	if !ok {
		return nil, notFound(req.Name)
	}
	return proto.Clone(ds).(*automlpb.Dataset), nil
}

func (f *fakeAPI) ListDatasets(ctx context.Context, req *automlpb.ListDatasetsRequest) ([]*automlpb.Dataset, error) {
	return children(f.datasets, req.Parent), nil
}

func (f *fakeAPI) DeleteDataset(ctx context.Context, req *automlpb.DeleteDatasetRequest) error {
	if _, ok := f.datasets[req.Name]; !ok {
		return notFound(req.Name)
	}
	delete(f.datasets, req.Name)
	return nil
}

func (f *fakeAPI) ImportData(ctx context.Context, req *automlpb.ImportDataRequest) error {
	ds, ok := f.datasets[req.Name]
	if !ok {
		return notFound(req.Name)
	}
	ds.ExampleCount += int32(len(req.InputConfig.GetGcsSource().GetInputUris()))
	return nil
}

func (f *fakeAPI) ExportData(ctx context.Context, req *automlpb.ExportDataRequest) error {
	if _, ok := f.datasets[req.Name]; !ok {
		return notFound(req.Name)
	}
	return nil
}

func (f *fakeAPI) CreateModel(ctx context.Context, req *automlpb.CreateModelRequest) (string, error) {
	if _, ok := f.datasets[req.Parent+"/datasets/"+req.Model.GetDatasetId()]; !ok {
		return "", status.Errorf(codes.InvalidArgument, "dataset %q does not exist", req.Model.GetDatasetId())
	}
	m := proto.Clone(req.Model).(*automlpb.Model)
	m.Name = req.Parent + "/models/" + f.id("TRL")
	m.DeploymentState = automlpb.Model_UNDEPLOYED
	f.models[m.Name] = m

	op := &longrunningpb.Operation{Name: req.Parent + "/operations/" + f.id("op")}
	f.ops[op.Name] = op
	return op.Name, nil
}

func (f *fakeAPI) GetModel(ctx context.Context, req *automlpb.GetModelRequest) (*automlpb.Model, error) {
	m, ok := f.models[req.Name]
	if !ok {
		return nil, notFound(req.Name)
	}
	return proto.Clone(m).(*automlpb.Model), nil
}

func (f *fakeAPI) ListModels(ctx context.Context, req *automlpb.ListModelsRequest) ([]*automlpb.Model, error) {
	return children(f.models, req.Parent), nil
}

func (f *fakeAPI) DeleteModel(ctx context.Context, req *automlpb.DeleteModelRequest) error {
	if _, ok := f.models[req.Name]; !ok {
		return notFound(req.Name)
	}
	delete(f.models, req.Name)
	return nil
}

func (f *fakeAPI) setDeployment(name string, st automlpb.Model_DeploymentState) error {
	m, ok := f.models[name]
	if !ok {
		return notFound(name)
	}
	m.DeploymentState = st
	return nil
}

func (f *fakeAPI) DeployModel(ctx context.Context, req *automlpb.DeployModelRequest) error {
	return f.setDeployment(req.Name, automlpb.Model_DEPLOYED)
}

func (f *fakeAPI) UndeployModel(ctx context.Context, req *automlpb.UndeployModelRequest) error {
	return f.setDeployment(req.Name, automlpb.Model_UNDEPLOYED)
}

func (f *fakeAPI) GetModelEvaluation(ctx context.Context, req *automlpb.GetModelEvaluationRequest) (*automlpb.ModelEvaluation, error) {
	e, ok := f.evals[req.Name]
	if !ok {
		return nil, notFound(req.Name)
	}
	return proto.Clone(e).(*automlpb.ModelEvaluation), nil
}

func (f *fakeAPI) ListModelEvaluations(ctx context.Context, req *automlpb.ListModelEvaluationsRequest) ([]*automlpb.ModelEvaluation, error) {
	if _, ok := f.models[req.Parent]; !ok {
		return nil, notFound(req.Parent)
	}
	return children(f.evals, req.Parent), nil
}

func (f *fakeAPI) Predict(ctx context.Context, req *automlpb.PredictRequest) (*automlpb.PredictResponse, error) {
	m, ok := f.models[req.Name]
	if !ok {
		return nil, notFound(req.Name)
	}
	if m.DeploymentState != automlpb.Model_DEPLOYED {
		return nil, status.Errorf(codes.FailedPrecondition, "model %s is not deployed", req.Name)
	}
	f.lastPredict = req
	return &automlpb.PredictResponse{Payload: f.predictions}, nil
}

func (f *fakeAPI) BatchPredict(ctx context.Context, req *automlpb.BatchPredictRequest) (*automlpb.BatchPredictResult, error) {
	if _, ok := f.models[req.Name]; !ok {
		return nil, notFound(req.Name)
	}
	return &automlpb.BatchPredictResult{Metadata: map[string]string{
		"output": req.OutputConfig.GetGcsDestination().GetOutputUriPrefix(),
	}}, nil
}

func (f *fakeAPI) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest) (*longrunningpb.Operation, error) {
	op, ok := f.ops[req.Name]
	if !ok {
		return nil, notFound(req.Name)
	}
	return proto.Clone(op).(*longrunningpb.Operation), nil
}

func (f *fakeAPI) ListOperations(ctx context.Context, req *longrunningpb.ListOperationsRequest) ([]*longrunningpb.Operation, error) {
	return children(f.ops, req.Name), nil
}
