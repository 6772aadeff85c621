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
	"strings"

	"go.chromium.org/cloudsamples/automl"
	"go.chromium.org/cloudsamples/internal/resname"
)

func amlVerb(name string, args []string, help string, run func(ctx context.Context, e *Env, api automl.API, p string, args []string) error) *Verb {
	return &Verb{
		Name:     name,
		Args:     append([]string{"project"}, args...),
		Help:     help,
		Location: automl.DefaultLocation,
		Run: func(ctx context.Context, e *Env, args []string) error {
			p, err := project(args[0])
			if err != nil {
				return err
			}
			api, err := e.Conn.AutoML(ctx)
			if err != nil {
				return err
			}
			return run(ctx, e, api, p, args[1:])
		},
	}
}

func autoMLVerbs() []*Verb {
	return []*Verb{
		amlVerb("automl-create-dataset-translate", []string{"display-name", "source-lang", "target-lang"},
			"creates a translation dataset, e.g. from en to ja",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.CreateTranslationDataset(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		amlVerb("automl-create-dataset-vision", []string{"display-name", "[multilabel]"},
			"creates an image classification dataset\nMULTILABEL is true for multi-label classification, multiclass by default.",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				ml, err := boolean("multilabel", args[1])
				if err != nil {
					return err
				}
				_, err = automl.CreateVisionClassificationDataset(ctx, e.Out, api, p, e.Location, args[0], ml)
				return err
			}),
		amlVerb("automl-create-dataset-text", []string{"display-name", "[multilabel]"},
			"creates a text classification dataset\nMULTILABEL is true for multi-label classification, multiclass by default.",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				ml, err := boolean("multilabel", args[1])
				if err != nil {
					return err
				}
				_, err = automl.CreateTextClassificationDataset(ctx, e.Out, api, p, e.Location, args[0], ml)
				return err
			}),
		amlVerb("automl-create-dataset-sentiment", []string{"display-name", "sentiment-max"},
			"creates a text sentiment dataset with scores from 0 to SENTIMENT-MAX (1 to 10)",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				m, err := integer("sentiment-max", args[1], 32)
				if err != nil {
					return err
				}
				_, err = automl.CreateTextSentimentDataset(ctx, e.Out, api, p, e.Location, args[0], int32(m))
				return err
			}),
		amlVerb("automl-create-dataset-object", []string{"display-name"},
			"creates an image object detection dataset",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.CreateObjectDetectionDataset(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		amlVerb("automl-import-data", []string{"dataset-id", "input-uris"},
			"imports examples from comma separated gs:// CSV files into a dataset",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				return automl.ImportDataIntoDataset(ctx, e.Out, api, p, e.Location, args[0], args[1])
			}),
		amlVerb("automl-export-dataset", []string{"dataset-id", "output-uri-prefix"},
			"exports the examples of a dataset to a gs:// prefix",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				return automl.ExportDataset(ctx, e.Out, api, p, e.Location, args[0], args[1])
			}),
		amlVerb("automl-get-dataset", []string{"dataset-id"},
			"prints a dataset",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.GetDataset(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		amlVerb("automl-list-datasets", nil,
			"lists datasets",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.ListDatasets(ctx, e.Out, api, p, e.Location)
				return err
			}),
		amlVerb("automl-delete-dataset", []string{"dataset-id"},
			"deletes a dataset",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				return automl.DeleteDataset(ctx, e.Out, api, p, e.Location, args[0])
			}),
		amlVerb("automl-create-model-translate", []string{"dataset-id", "display-name"},
			"starts training a translation model\nTraining takes hours; the operation name is printed and not awaited.",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.CreateTranslationModel(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		amlVerb("automl-create-model-vision", []string{"dataset-id", "display-name", "[budget-milli-node-hours]"},
			"starts training an image classification model\nTraining takes hours; the operation name is printed and not awaited.",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				var budget int64
				if args[2] != "" {
					var err error
					if budget, err = integer("budget-milli-node-hours", args[2], 64); err != nil {
						return err
					}
				}
				_, err := automl.CreateVisionClassificationModel(ctx, e.Out, api, p, e.Location, args[0], args[1], budget)
				return err
			}),
		amlVerb("automl-create-model-text", []string{"dataset-id", "display-name"},
			"starts training a text classification model\nTraining takes hours; the operation name is printed and not awaited.",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.CreateTextClassificationModel(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		amlVerb("automl-get-model", []string{"model-id"},
			"prints a model",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.GetModel(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		amlVerb("automl-list-models", nil,
			"lists models",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.ListModels(ctx, e.Out, api, p, e.Location)
				return err
			}),
		amlVerb("automl-delete-model", []string{"model-id"},
			"deletes a model",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				return automl.DeleteModel(ctx, e.Out, api, p, e.Location, args[0])
			}),
		amlVerb("automl-deploy-model", []string{"model-id"},
			"deploys a model for online prediction",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				return automl.DeployModel(ctx, e.Out, api, p, e.Location, args[0])
			}),
		amlVerb("automl-undeploy-model", []string{"model-id"},
			"undeploys a model",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				return automl.UndeployModel(ctx, e.Out, api, p, e.Location, args[0])
			}),
		amlVerb("automl-get-model-eval", []string{"model-id", "evaluation-id"},
			"prints a model evaluation",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.GetModelEvaluation(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		amlVerb("automl-list-model-evals", []string{"model-id"},
			"lists the evaluations of a model",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.ListModelEvaluations(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		amlVerb("automl-predict-translate", []string{"model-id", "file"},
			"translates the content of a local text file",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.PredictTranslation(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		amlVerb("automl-predict-text", []string{"model-id", "content"},
			"classifies a text snippet or predicts its sentiment",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.PredictText(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		amlVerb("automl-predict-image", []string{"model-id", "file", "[score-threshold]"},
			"classifies a local image file\nOnly labels scoring at least SCORE-THRESHOLD (0 to 1) are returned.",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				var threshold float64
				if args[2] != "" {
					var err error
					if threshold, err = float("score-threshold", args[2]); err != nil {
						return err
					}
				}
				_, err := automl.PredictImage(ctx, e.Out, api, p, e.Location, args[0], args[1], threshold)
				return err
			}),
		amlVerb("automl-batch-predict", []string{"model-id", "input-uris", "output-uri-prefix"},
			"runs a batch prediction over gs:// inputs and waits for it",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.BatchPredict(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		amlVerb("automl-get-operation", []string{"operation"},
			"prints the status of an operation given its ID or full name",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				name := args[0]
				if !strings.HasPrefix(name, "projects/") {
					name = resname.Child(resname.Location(p, e.Location), "operations", name)
				}
				_, err := automl.GetOperationStatus(ctx, e.Out, api, name)
				return err
			}),
		amlVerb("automl-list-operations", nil,
			"lists operations with their status",
			func(ctx context.Context, e *Env, api automl.API, p string, args []string) error {
				_, err := automl.ListOperationStatus(ctx, e.Out, api, p, e.Location)
				return err
			}),
	}
}
