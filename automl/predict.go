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
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/automl/apiv1/automlpb"

	"go.chromium.org/luci/common/errors"
)

func predict(ctx context.Context, api API, project, loc, modelID string, payload *automlpb.ExamplePayload, params map[string]string) ([]*automlpb.AnnotationPayload, error) {
	res, err := api.Predict(ctx, &automlpb.PredictRequest{
		Name:    ModelName(project, loc, modelID),
		Payload: payload,
		Params:  params,
	})
	if err != nil {
		return nil, errors.Fmt("failed to predict: %w", err)
	}
	return res.GetPayload(), nil
}

func textPayload(content string) *automlpb.ExamplePayload {
	return &automlpb.ExamplePayload{
		Payload: &automlpb.ExamplePayload_TextSnippet{
			TextSnippet: &automlpb.TextSnippet{
				Content:  content,
				MimeType: "text/plain",
			},
		},
	}
}

func printClassifications(w io.Writer, res []*automlpb.AnnotationPayload) {
	for _, p := range res {
		fmt.Fprintf(w, "Predicted class name: %s\n", p.GetDisplayName())
		fmt.Fprintf(w, "Predicted class score: %.2f\n", p.GetClassification().GetScore())
	}
}

// PredictTranslation translates the content of a local text file with a
// translation model and returns the translated text.
func PredictTranslation(ctx context.Context, w io.Writer, api API, project, loc, modelID, filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", errors.Fmt("failed to read %s: %w", filePath, err)
	}
	res, err := predict(ctx, api, project, loc, modelID, textPayload(string(content)), nil)
	if err != nil {
		return "", err
	}
	var out []string
	for _, p := range res {
		t := p.GetTranslation().GetTranslatedContent().GetContent()
		fmt.Fprintf(w, "Translated content: %s\n", t)
		out = append(out, t)
	}
	return strings.Join(out, "\n"), nil
}

// PredictText classifies content with a text classification or sentiment
// model.
func PredictText(ctx context.Context, w io.Writer, api API, project, loc, modelID, content string) ([]*automlpb.AnnotationPayload, error) {
	res, err := predict(ctx, api, project, loc, modelID, textPayload(content), nil)
	if err != nil {
		return nil, err
	}
	for _, p := range res {
		if s := p.GetTextSentiment(); s != nil {
			fmt.Fprintf(w, "Predicted sentiment score: %d\n", s.GetSentiment())
			continue
		}
		printClassifications(w, []*automlpb.AnnotationPayload{p})
	}
	return res, nil
}

// PredictImage classifies a local image file, reporting only classes scoring
// at least scoreThreshold.
func PredictImage(ctx context.Context, w io.Writer, api API, project, loc, modelID, filePath string, scoreThreshold float64) ([]*automlpb.AnnotationPayload, error) {
	if scoreThreshold < 0 || scoreThreshold > 1 {
		return nil, errors.Fmt("score threshold must be in [0, 1], got %g", scoreThreshold)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Fmt("failed to read %s: %w", filePath, err)
	}
	payload := &automlpb.ExamplePayload{
		Payload: &automlpb.ExamplePayload_Image{
			Image: &automlpb.Image{
				Data: &automlpb.Image_ImageBytes{ImageBytes: data},
			},
		},
	}
	params := map[string]string{"score_threshold": strconv.FormatFloat(scoreThreshold, 'f', -1, 64)}
	res, err := predict(ctx, api, project, loc, modelID, payload, params)
	if err != nil {
		return nil, err
	}
	printClassifications(w, res)
	return res, nil
}

// BatchPredict runs a batch prediction over the inputs listed in inputURIs
// (comma separated gs:// URIs) and waits for the results to be written under
// outputURIPrefix.
func BatchPredict(ctx context.Context, w io.Writer, api API, project, loc, modelID, inputURIs, outputURIPrefix string) (*automlpb.BatchPredictResult, error) {
	uris, err := gcsURIs(inputURIs)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(outputURIPrefix, "gs://") {
		return nil, errors.Fmt("output prefix %q is not a gs:// URI", outputURIPrefix)
	}
	res, err := api.BatchPredict(ctx, &automlpb.BatchPredictRequest{
		Name: ModelName(project, loc, modelID),
		InputConfig: &automlpb.BatchPredictInputConfig{
			Source: &automlpb.BatchPredictInputConfig_GcsSource{
				GcsSource: &automlpb.GcsSource{InputUris: uris},
			},
		},
		OutputConfig: &automlpb.BatchPredictOutputConfig{
			Destination: &automlpb.BatchPredictOutputConfig_GcsDestination{
				GcsDestination: &automlpb.GcsDestination{OutputUriPrefix: outputURIPrefix},
			},
		},
	})
	if err != nil {
		return nil, errors.Fmt("failed to batch predict: %w", err)
	}
	fmt.Fprintf(w, "Batch prediction results saved to %s\n", outputURIPrefix)
	return res, nil
}
