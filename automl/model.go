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
	"io"

	"cloud.google.com/go/automl/apiv1/automlpb"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/resname"
)

func createModel(ctx context.Context, w io.Writer, api API, project, loc string, m *automlpb.Model) (string, error) {
	op, err := api.CreateModel(ctx, &automlpb.CreateModelRequest{
		Parent: location(project, loc),
		Model:  m,
	})
	if err != nil {
		return "", errors.Fmt("failed to create model: %w", err)
	}
	fmt.Fprintf(w, "Training operation name: %s\n", op)
	fmt.Fprintln(w, "Training started...")
	return op, nil
}

// CreateTranslationModel starts training a translation model. It returns
// the name of the training operation without waiting for it.
func CreateTranslationModel(ctx context.Context, w io.Writer, api API, project, loc, datasetID, displayName string) (string, error) {
	return createModel(ctx, w, api, project, loc, &automlpb.Model{
		DisplayName: displayName,
		DatasetId:   datasetID,
		ModelMetadata: &automlpb.Model_TranslationModelMetadata{
			TranslationModelMetadata: &automlpb.TranslationModelMetadata{},
		},
	})
}

// CreateVisionClassificationModel starts training an image classification
// model for at most budgetMilliNodeHours (0 picks the service default).
func CreateVisionClassificationModel(ctx context.Context, w io.Writer, api API, project, loc, datasetID, displayName string, budgetMilliNodeHours int64) (string, error) {
	if budgetMilliNodeHours < 0 {
		return "", errors.Fmt("train budget must not be negative, got %d", budgetMilliNodeHours)
	}
	return createModel(ctx, w, api, project, loc, &automlpb.Model{
		DisplayName: displayName,
		DatasetId:   datasetID,
		ModelMetadata: &automlpb.Model_ImageClassificationModelMetadata{
			ImageClassificationModelMetadata: &automlpb.ImageClassificationModelMetadata{
				TrainBudgetMilliNodeHours: budgetMilliNodeHours,
			},
		},
	})
}

// CreateTextClassificationModel starts training a text classification model.
func CreateTextClassificationModel(ctx context.Context, w io.Writer, api API, project, loc, datasetID, displayName string) (string, error) {
	return createModel(ctx, w, api, project, loc, &automlpb.Model{
		DisplayName: displayName,
		DatasetId:   datasetID,
		ModelMetadata: &automlpb.Model_TextClassificationModelMetadata{
			TextClassificationModelMetadata: &automlpb.TextClassificationModelMetadata{},
		},
	})
}

func printModel(w io.Writer, m *automlpb.Model) {
	fmt.Fprintf(w, "Model name: %s\n", m.GetName())
	fmt.Fprintf(w, "Model id: %s\n", resname.LastID(m.GetName()))
	fmt.Fprintf(w, "Model display name: %s\n", m.GetDisplayName())
	fmt.Fprintf(w, "Model deployment state: %s\n", m.GetDeploymentState())
}

// GetModel prints a model.
func GetModel(ctx context.Context, w io.Writer, api API, project, loc, modelID string) (*automlpb.Model, error) {
	m, err := api.GetModel(ctx, &automlpb.GetModelRequest{Name: ModelName(project, loc, modelID)})
	if err != nil {
		return nil, errors.Fmt("failed to get model: %w", err)
	}
	printModel(w, m)
	return m, nil
}

// ListModels prints all models in a location.
func ListModels(ctx context.Context, w io.Writer, api API, project, loc string) ([]*automlpb.Model, error) {
	res, err := api.ListModels(ctx, &automlpb.ListModelsRequest{Parent: location(project, loc)})
	if err != nil {
		return nil, errors.Fmt("failed to list models: %w", err)
	}
	fmt.Fprintln(w, "List of models:")
	for _, m := range res {
		printModel(w, m)
	}
	return res, nil
}

// DeleteModel deletes a model and waits for the deletion to finish.
func DeleteModel(ctx context.Context, w io.Writer, api API, project, loc, modelID string) error {
	if err := api.DeleteModel(ctx, &automlpb.DeleteModelRequest{Name: ModelName(project, loc, modelID)}); err != nil {
		return errors.Fmt("failed to delete model: %w", err)
	}
	fmt.Fprintln(w, "Model deleted.")
	return nil
}

// DeployModel deploys a model so it can serve online predictions.
func DeployModel(ctx context.Context, w io.Writer, api API, project, loc, modelID string) error {
	if err := api.DeployModel(ctx, &automlpb.DeployModelRequest{Name: ModelName(project, loc, modelID)}); err != nil {
		return errors.Fmt("failed to deploy model: %w", err)
	}
	fmt.Fprintln(w, "Model deployment finished.")
	return nil
}

// UndeployModel undeploys a model.
func UndeployModel(ctx context.Context, w io.Writer, api API, project, loc, modelID string) error {
	if err := api.UndeployModel(ctx, &automlpb.UndeployModelRequest{Name: ModelName(project, loc, modelID)}); err != nil {
		return errors.Fmt("failed to undeploy model: %w", err)
	}
	fmt.Fprintln(w, "Model undeployment finished.")
	return nil
}

func printEvaluation(w io.Writer, e *automlpb.ModelEvaluation) {
	fmt.Fprintf(w, "Model evaluation name: %s\n", e.GetName())
	fmt.Fprintf(w, "Model annotation spec id: %s\n", e.GetAnnotationSpecId())
	fmt.Fprintf(w, "Evaluated example count: %d\n", e.GetEvaluatedExampleCount())
	switch {
	case e.GetTranslationEvaluationMetrics() != nil:
		fmt.Fprintf(w, "BLEU score: %f\n", e.GetTranslationEvaluationMetrics().GetBleuScore())
	case e.GetClassificationEvaluationMetrics() != nil:
		fmt.Fprintf(w, "Area under precision-recall curve: %f\n", e.GetClassificationEvaluationMetrics().GetAuPrc())
	}
}

// GetModelEvaluation prints one evaluation of a model.
func GetModelEvaluation(ctx context.Context, w io.Writer, api API, project, loc, modelID, evaluationID string) (*automlpb.ModelEvaluation, error) {
	name := resname.Child(ModelName(project, loc, modelID), "modelEvaluations", evaluationID)
	e, err := api.GetModelEvaluation(ctx, &automlpb.GetModelEvaluationRequest{Name: name})
	if err != nil {
		return nil, errors.Fmt("failed to get model evaluation: %w", err)
	}
	printEvaluation(w, e)
	return e, nil
}

// ListModelEvaluations prints all evaluations of a model.
func ListModelEvaluations(ctx context.Context, w io.Writer, api API, project, loc, modelID string) ([]*automlpb.ModelEvaluation, error) {
	res, err := api.ListModelEvaluations(ctx, &automlpb.ListModelEvaluationsRequest{Parent: ModelName(project, loc, modelID)})
	if err != nil {
		return nil, errors.Fmt("failed to list model evaluations: %w", err)
	}
	fmt.Fprintln(w, "List of model evaluations:")
	for _, e := range res {
		printEvaluation(w, e)
	}
	return res, nil
}
