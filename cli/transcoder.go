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
	"time"

	"go.chromium.org/cloudsamples/transcoder"
)

func tcVerb(name string, args []string, help string, run func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error) *Verb {
	return &Verb{
		Name:     name,
		Args:     append([]string{"project"}, args...),
		Help:     help,
		Location: "us-central1",
		Run: func(ctx context.Context, e *Env, args []string) error {
			p, err := project(args[0])
			if err != nil {
				return err
			}
			api, err := e.Conn.Transcoder(ctx)
			if err != nil {
				return err
			}
			return run(ctx, e, api, p, args[1:])
		},
	}
}

// clip parses "URI#t=START,END" with offsets in seconds.
func clip(arg string) (transcoder.Clip, error) {
	uri, frag, ok := strings.Cut(arg, "#t=")
	if !ok {
		return transcoder.Clip{}, NewCLIError("bad clip %q: expecting URI#t=START,END", arg)
	}
	start, end, ok := strings.Cut(frag, ",")
	if !ok {
		return transcoder.Clip{}, NewCLIError("bad clip %q: expecting URI#t=START,END", arg)
	}
	c := transcoder.Clip{URI: uri}
	for _, x := range []struct {
		s string
		d *time.Duration
	}{{start, &c.Start}, {end, &c.End}} {
		d, err := time.ParseDuration(x.s + "s")
		if err != nil {
			return transcoder.Clip{}, NewCLIError("bad clip %q: offsets are seconds", arg)
		}
		*x.d = d
	}
	return c, nil
}

func transcoderVerbs() []*Verb {
	return []*Verb{
		tcVerb("transcoder-create-job-preset", []string{"input-uri", "output-uri", "[preset]"},
			"creates a job from a preset, preset/web-hd by default",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobFromPreset(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		tcVerb("transcoder-create-job-adhoc", []string{"input-uri", "output-uri"},
			"creates a job with an SD and HD H.264 MP4 ad-hoc config",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobFromAdHoc(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		tcVerb("transcoder-create-job-template", []string{"input-uri", "output-uri", "template-id"},
			"creates a job from a job template",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobFromTemplate(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		tcVerb("transcoder-create-job-static-overlay", []string{"input-uri", "overlay-image-uri", "output-uri"},
			"creates a job overlaying an image for the first seconds",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobWithStaticOverlay(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		tcVerb("transcoder-create-job-animated-overlay", []string{"input-uri", "overlay-image-uri", "output-uri"},
			"creates a job fading an image overlay in and out",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobWithAnimatedOverlay(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		tcVerb("transcoder-create-job-spritesheet-count", []string{"input-uri", "output-uri"},
			"creates a job generating a fixed number of thumbnails",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobWithSetNumberImagesSpritesheet(ctx, e.Out, api, p, e.Location, args[0], args[1])
				return err
			}),
		tcVerb("transcoder-create-job-spritesheet-periodic", []string{"input-uri", "output-uri", "interval"},
			"creates a job generating a thumbnail every INTERVAL, e.g. 7s",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				d, err := duration("interval", args[2])
				if err != nil {
					return err
				}
				_, err = transcoder.CreateJobWithPeriodicImagesSpritesheet(ctx, e.Out, api, p, e.Location, args[0], args[1], d)
				return err
			}),
		tcVerb("transcoder-create-job-concat", []string{"output-uri", "clips..."},
			"creates a job concatenating clips\nEach clip is URI#t=START,END with offsets in seconds, e.g. gs://b/a.mp4#t=0,8.1.",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				clips := make([]transcoder.Clip, 0, len(args)-1)
				for _, a := range args[1:] {
					c, err := clip(a)
					if err != nil {
						return err
					}
					clips = append(clips, c)
				}
				_, err := transcoder.CreateJobWithConcatenatedInputs(ctx, e.Out, api, p, e.Location, args[0], clips)
				return err
			}),
		tcVerb("transcoder-create-job-embedded-captions", []string{"video-uri", "captions-uri", "output-uri"},
			"creates a job embedding closed captions in the outputs",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobWithEmbeddedCaptions(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		tcVerb("transcoder-create-job-standalone-captions", []string{"video-uri", "subtitles-uri", "output-uri"},
			"creates a job producing WebVTT subtitles next to the video",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobWithStandaloneCaptions(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		tcVerb("transcoder-create-job-pubsub", []string{"input-uri", "output-uri", "topic"},
			"creates a job publishing its completion to a Pub/Sub topic\nThe topic is a full name, projects/{project}/topics/{topic}.",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobWithPubSubNotification(ctx, e.Out, api, p, e.Location, args[0], args[1], args[2])
				return err
			}),
		tcVerb("transcoder-get-job", []string{"job-id"},
			"prints a job",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.GetJob(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		tcVerb("transcoder-get-job-state", []string{"job-id"},
			"prints the processing state of a job",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.GetJobState(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		tcVerb("transcoder-list-jobs", nil,
			"lists jobs",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.ListJobs(ctx, e.Out, api, p, e.Location)
				return err
			}),
		tcVerb("transcoder-delete-job", []string{"job-id"},
			"deletes a job",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				return transcoder.DeleteJob(ctx, e.Out, api, p, e.Location, args[0])
			}),
		tcVerb("transcoder-create-template", []string{"template-id"},
			"creates a job template with the ad-hoc config",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.CreateJobTemplate(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		tcVerb("transcoder-get-template", []string{"template-id"},
			"prints a job template",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.GetJobTemplate(ctx, e.Out, api, p, e.Location, args[0])
				return err
			}),
		tcVerb("transcoder-list-templates", nil,
			"lists job templates",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				_, err := transcoder.ListJobTemplates(ctx, e.Out, api, p, e.Location)
				return err
			}),
		tcVerb("transcoder-delete-template", []string{"template-id"},
			"deletes a job template",
			func(ctx context.Context, e *Env, api transcoder.API, p string, args []string) error {
				return transcoder.DeleteJobTemplate(ctx, e.Out, api, p, e.Location, args[0])
			}),
	}
}
