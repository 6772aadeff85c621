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
	"strings"

	"cloud.google.com/go/automl/apiv1/automlpb"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/resname"
)

func createDataset(ctx context.Context, w io.Writer, api API, project, loc string, ds *automlpb.Dataset) (*automlpb.Dataset, error) {
	res, err := api.CreateDataset(ctx, &automlpb.CreateDatasetRequest{
		Parent:  location(project, loc),
		Dataset: ds,
	})
	if err != nil {
		return nil, errors.Fmt("failed to create dataset: %w", err)
	}
	fmt.Fprintf(w, "Dataset name: %s\n", res.GetName())
	fmt.Fprintf(w, "Dataset id: %s\n", resname.LastID(res.GetName()))
	return res, nil
}

func classificationType(multilabel bool) automlpb.ClassificationType {
	if multilabel {
		return automlpb.ClassificationType_MULTILABEL
	}
	return automlpb.ClassificationType_MULTICLASS
}

// CreateTranslationDataset creates a dataset of sentence pairs translating
// from source to target language.
func CreateTranslationDataset(ctx context.Context, w io.Writer, api API, project, loc, displayName, source, target string) (*automlpb.Dataset, error) {
	return createDataset(ctx, w, api, project, loc, &automlpb.Dataset{
		DisplayName: displayName,
		DatasetMetadata: &automlpb.Dataset_TranslationDatasetMetadata{
			TranslationDatasetMetadata: &automlpb.TranslationDatasetMetadata{
				SourceLanguageCode: source,
				TargetLanguageCode: target,
			},
		},
	})
}

// CreateVisionClassificationDataset creates an image classification dataset.
func CreateVisionClassificationDataset(ctx context.Context, w io.Writer, api API, project, loc, displayName string, multilabel bool) (*automlpb.Dataset, error) {
	return createDataset(ctx, w, api, project, loc, &automlpb.Dataset{
		DisplayName: displayName,
		DatasetMetadata: &automlpb.Dataset_ImageClassificationDatasetMetadata{
			ImageClassificationDatasetMetadata: &automlpb.ImageClassificationDatasetMetadata{
				ClassificationType: classificationType(multilabel),
			},
		},
	})
}

// CreateTextClassificationDataset creates a text classification dataset.
func CreateTextClassificationDataset(ctx context.Context, w io.Writer, api API, project, loc, displayName string, multilabel bool) (*automlpb.Dataset, error) {
	return createDataset(ctx, w, api, project, loc, &automlpb.Dataset{
		DisplayName: displayName,
		DatasetMetadata: &automlpb.Dataset_TextClassificationDatasetMetadata{
			TextClassificationDatasetMetadata: &automlpb.TextClassificationDatasetMetadata{
				ClassificationType: classificationType(multilabel),
			},
		},
	})
}

// CreateTextSentimentDataset creates a sentiment analysis dataset with
// sentiment scores in [0, sentimentMax].
func CreateTextSentimentDataset(ctx context.Context, w io.Writer, api API, project, loc, displayName string, sentimentMax int32) (*automlpb.Dataset, error) {
	if sentimentMax < 1 || sentimentMax > 10 {
		return nil, errors.Fmt("sentiment max must be in [1, 10], got %d", sentimentMax)
	}
	return createDataset(ctx, w, api, project, loc, &automlpb.Dataset{
		DisplayName: displayName,
		DatasetMetadata: &automlpb.Dataset_TextSentimentDatasetMetadata{
			TextSentimentDatasetMetadata: &automlpb.TextSentimentDatasetMetadata{
				SentimentMax: sentimentMax,
			},
		},
	})
}

// CreateObjectDetectionDataset creates an image object detection dataset.
func CreateObjectDetectionDataset(ctx context.Context, w io.Writer, api API, project, loc, displayName string) (*automlpb.Dataset, error) {
	return createDataset(ctx, w, api, project, loc, &automlpb.Dataset{
		DisplayName: displayName,
		DatasetMetadata: &automlpb.Dataset_ImageObjectDetectionDatasetMetadata{
			ImageObjectDetectionDatasetMetadata: &automlpb.ImageObjectDetectionDatasetMetadata{},
		},
	})
}

// ImportDataIntoDataset imports the examples listed in CSV files on Cloud
// Storage. inputURIs is a comma separated list of gs:// URIs.
func ImportDataIntoDataset(ctx context.Context, w io.Writer, api API, project, loc, datasetID, inputURIs string) error {
	uris, err := gcsURIs(inputURIs)
	if err != nil {
		return err
	}
	err = api.ImportData(ctx, &automlpb.ImportDataRequest{
		Name: DatasetName(project, loc, datasetID),
		InputConfig: &automlpb.InputConfig{
			Source: &automlpb.InputConfig_GcsSource{
				GcsSource: &automlpb.GcsSource{InputUris: uris},
			},
		},
	})
	if err != nil {
		return errors.Fmt("failed to import data: %w", err)
	}
	fmt.Fprintln(w, "Data imported.")
	return nil
}

// ExportDataset exports the examples of a dataset as CSV under
// outputURIPrefix.
func ExportDataset(ctx context.Context, w io.Writer, api API, project, loc, datasetID, outputURIPrefix string) error {
	if !strings.HasPrefix(outputURIPrefix, "gs://") {
		return errors.Fmt("output prefix %q is not a gs:// URI", outputURIPrefix)
	}
	err := api.ExportData(ctx, &automlpb.ExportDataRequest{
		Name: DatasetName(project, loc, datasetID),
		OutputConfig: &automlpb.OutputConfig{
			Destination: &automlpb.OutputConfig_GcsDestination{
				GcsDestination: &automlpb.GcsDestination{OutputUriPrefix: outputURIPrefix},
			},
		},
	})
	if err != nil {
		return errors.Fmt("failed to export dataset: %w", err)
	}
	fmt.Fprintln(w, "Dataset exported.")
	return nil
}

func printDataset(w io.Writer, ds *automlpb.Dataset) {
	fmt.Fprintf(w, "Dataset name: %s\n", ds.GetName())
	fmt.Fprintf(w, "Dataset id: %s\n", resname.LastID(ds.GetName()))
	fmt.Fprintf(w, "Dataset display name: %s\n", ds.GetDisplayName())
	fmt.Fprintf(w, "Dataset example count: %d\n", ds.GetExampleCount())
	if ds.CreateTime != nil {
		fmt.Fprintf(w, "Dataset create time: %s\n", ds.CreateTime.AsTime().UTC().Format("2006-01-02T15:04:05Z"))
	}
}

// GetDataset prints a dataset.
func GetDataset(ctx context.Context, w io.Writer, api API, project, loc, datasetID string) (*automlpb.Dataset, error) {
	ds, err := api.GetDataset(ctx, &automlpb.GetDatasetRequest{Name: DatasetName(project, loc, datasetID)})
	if err != nil {
		return nil, errors.Fmt("failed to get dataset: %w", err)
	}
	printDataset(w, ds)
	return ds, nil
}

// ListDatasets prints all datasets in a location.
func ListDatasets(ctx context.Context, w io.Writer, api API, project, loc string) ([]*automlpb.Dataset, error) {
	res, err := api.ListDatasets(ctx, &automlpb.ListDatasetsRequest{Parent: location(project, loc)})
	if err != nil {
		return nil, errors.Fmt("failed to list datasets: %w", err)
	}
	fmt.Fprintln(w, "List of datasets:")
	for _, ds := range res {
		printDataset(w, ds)
	}
	return res, nil
}

// DeleteDataset deletes a dataset and waits for the deletion to finish.
func DeleteDataset(ctx context.Context, w io.Writer, api API, project, loc, datasetID string) error {
	if err := api.DeleteDataset(ctx, &automlpb.DeleteDatasetRequest{Name: DatasetName(project, loc, datasetID)}); err != nil {
		return errors.Fmt("failed to delete dataset: %w", err)
	}
	fmt.Fprintln(w, "Dataset deleted.")
	return nil
}

// gcsURIs splits a comma separated list of gs:// URIs.
func gcsURIs(list string) ([]string, error) {
	var uris []string
	for _, u := range strings.Split(list, ",") {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "gs://") {
			return nil, errors.Fmt("input %q is not a gs:// URI", u)
		}
		uris = append(uris, u)
	}
	if len(uris) == 0 {
		return nil, errors.New("at least one gs:// input URI is required")
	}
	return uris, nil
}
