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
	"time"

	"cloud.google.com/go/video/transcoder/apiv1/transcoderpb"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/cloudsamples/internal/resname"
)

// DefaultPreset is the preset used when none is given.
const DefaultPreset = "preset/web-hd"

func createJob(ctx context.Context, w io.Writer, api API, project, location string, job *transcoderpb.Job) (*transcoderpb.Job, error) {
	res, err := api.CreateJob(ctx, &transcoderpb.CreateJobRequest{
		Parent: resname.Location(project, location),
		Job:    job,
	})
	if err != nil {
		return nil, errors.Fmt("failed to create job: %w", err)
	}
	fmt.Fprintf(w, "Job: %s\n", res.GetName())
	return res, nil
}

func withConfig(inputURI, outputURI string, cfg *transcoderpb.JobConfig) *transcoderpb.Job {
	return &transcoderpb.Job{
		InputUri:  inputURI,
		OutputUri: outputURI,
		JobConfig: &transcoderpb.Job_Config{Config: cfg},
	}
}

// CreateJobFromPreset transcodes inputURI into outputURI (a gs:// directory
// ending with "/") using a preset, e.g. "preset/web-hd".
func CreateJobFromPreset(ctx context.Context, w io.Writer, api API, project, location, inputURI, outputURI, preset string) (*transcoderpb.Job, error) {
	if preset == "" {
		preset = DefaultPreset
	}
	return createJob(ctx, w, api, project, location, &transcoderpb.Job{
		InputUri:  inputURI,
		OutputUri: outputURI,
		JobConfig: &transcoderpb.Job_TemplateId{TemplateId: preset},
	})
}

// CreateJobFromTemplate transcodes inputURI using an existing job template.
func CreateJobFromTemplate(ctx context.Context, w io.Writer, api API, project, location, inputURI, outputURI, templateID string) (*transcoderpb.Job, error) {
	return createJob(ctx, w, api, project, location, &transcoderpb.Job{
		InputUri:  inputURI,
		OutputUri: outputURI,
		JobConfig: &transcoderpb.Job_TemplateId{TemplateId: templateID},
	})
}

// CreateJobFromAdHoc transcodes inputURI with an inline config producing SD
// and HD MP4 files.
func CreateJobFromAdHoc(ctx context.Context, w io.Writer, api API, project, location, inputURI, outputURI string) (*transcoderpb.Job, error) {
	return createJob(ctx, w, api, project, location, withConfig(inputURI, outputURI, adHocConfig()))
}

// CreateJobWithStaticOverlay transcodes inputURI, showing the image at
// overlayImageURI for the first 10 seconds.
func CreateJobWithStaticOverlay(ctx context.Context, w io.Writer, api API, project, location, inputURI, overlayImageURI, outputURI string) (*transcoderpb.Job, error) {
	return createJob(ctx, w, api, project, location, withConfig(inputURI, outputURI, staticOverlayConfig(overlayImageURI)))
}

// CreateJobWithAnimatedOverlay transcodes inputURI, fading the image at
// overlayImageURI in and out.
func CreateJobWithAnimatedOverlay(ctx context.Context, w io.Writer, api API, project, location, inputURI, overlayImageURI, outputURI string) (*transcoderpb.Job, error) {
	return createJob(ctx, w, api, project, location, withConfig(inputURI, outputURI, animatedOverlayConfig(overlayImageURI)))
}

// CreateJobWithSetNumberImagesSpritesheet generates two sprite sheets of 100
// thumbnails each along with the SD output.
func CreateJobWithSetNumberImagesSpritesheet(ctx context.Context, w io.Writer, api API, project, location, inputURI, outputURI string) (*transcoderpb.Job, error) {
	return createJob(ctx, w, api, project, location, withConfig(inputURI, outputURI, countSpriteSheetConfig()))
}

// CreateJobWithPeriodicImagesSpritesheet generates two sprite sheets with a
// thumbnail every interval along with the SD output.
func CreateJobWithPeriodicImagesSpritesheet(ctx context.Context, w io.Writer, api API, project, location, inputURI, outputURI string, interval time.Duration) (*transcoderpb.Job, error) {
	if interval <= 0 {
		return nil, errors.Fmt("interval must be positive, got %s", interval)
	}
	return createJob(ctx, w, api, project, location, withConfig(inputURI, outputURI, periodicSpriteSheetConfig(interval)))
}

// CreateJobWithConcatenatedInputs joins clips of one or more inputs into a
// single output.
func CreateJobWithConcatenatedInputs(ctx context.Context, w io.Writer, api API, project, location, outputURI string, clips []Clip) (*transcoderpb.Job, error) {
	cfg, err := concatenatedConfig(clips)
	if err != nil {
		return nil, err
	}
	return createJob(ctx, w, api, project, location, withConfig("", outputURI, cfg))
}

// CreateJobWithEmbeddedCaptions embeds the CEA-608 captions at captionsURI
// into HLS and DASH outputs of videoURI.
func CreateJobWithEmbeddedCaptions(ctx context.Context, w io.Writer, api API, project, location, videoURI, captionsURI, outputURI string) (*transcoderpb.Job, error) {
	return createJob(ctx, w, api, project, location, withConfig("", outputURI, embeddedCaptionsConfig(videoURI, captionsURI)))
}

// CreateJobWithStandaloneCaptions adds the SRT subtitles at subtitlesURI as
// a WebVTT rendition of an HLS output of videoURI.
func CreateJobWithStandaloneCaptions(ctx context.Context, w io.Writer, api API, project, location, videoURI, subtitlesURI, outputURI string) (*transcoderpb.Job, error) {
	return createJob(ctx, w, api, project, location, withConfig("", outputURI, standaloneCaptionsConfig(videoURI, subtitlesURI)))
}

// CreateJobWithPubSubNotification is CreateJobFromAdHoc that also publishes
// job state changes to topic ("projects/{p}/topics/{t}").
func CreateJobWithPubSubNotification(ctx context.Context, w io.Writer, api API, project, location, inputURI, outputURI, topic string) (*transcoderpb.Job, error) {
	cfg := adHocConfig()
	cfg.PubsubDestination = &transcoderpb.PubsubDestination{Topic: topic}
	return createJob(ctx, w, api, project, location, withConfig(inputURI, outputURI, cfg))
}

// GetJob prints the name of a job.
func GetJob(ctx context.Context, w io.Writer, api API, project, location, jobID string) (*transcoderpb.Job, error) {
	res, err := api.GetJob(ctx, &transcoderpb.GetJobRequest{Name: JobName(project, location, jobID)})
	if err != nil {
		return nil, errors.Fmt("failed to get job: %w", err)
	}
	fmt.Fprintf(w, "Job: %s\n", res.GetName())
	return res, nil
}

// GetJobState prints the processing state of a job, along with the error
// of failed jobs.
func GetJobState(ctx context.Context, w io.Writer, api API, project, location, jobID string) (transcoderpb.Job_ProcessingState, error) {
	res, err := api.GetJob(ctx, &transcoderpb.GetJobRequest{Name: JobName(project, location, jobID)})
	if err != nil {
		return transcoderpb.Job_PROCESSING_STATE_UNSPECIFIED, errors.Fmt("failed to get job: %w", err)
	}
	fmt.Fprintf(w, "Job state: %s\n", res.State)
	if res.State == transcoderpb.Job_FAILED && res.Error != nil {
		fmt.Fprintf(w, "Job error: %s\n", res.Error.GetMessage())
	}
	return res.State, nil
}

// ListJobs prints the names of all jobs in a location.
func ListJobs(ctx context.Context, w io.Writer, api API, project, location string) ([]*transcoderpb.Job, error) {
	res, err := api.ListJobs(ctx, &transcoderpb.ListJobsRequest{Parent: resname.Location(project, location)})
	if err != nil {
		return nil, errors.Fmt("failed to list jobs: %w", err)
	}
	fmt.Fprintln(w, "Jobs:")
	for _, j := range res {
		fmt.Fprintln(w, j.GetName())
	}
	return res, nil
}

// DeleteJob deletes a job. Its outputs are kept.
func DeleteJob(ctx context.Context, w io.Writer, api API, project, location, jobID string) error {
	if err := api.DeleteJob(ctx, &transcoderpb.DeleteJobRequest{Name: JobName(project, location, jobID)}); err != nil {
		return errors.Fmt("failed to delete job: %w", err)
	}
	fmt.Fprintln(w, "Deleted job")
	return nil
}
