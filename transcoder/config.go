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
	"fmt"
	"time"

	"cloud.google.com/go/video/transcoder/apiv1/transcoderpb"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.chromium.org/luci/common/errors"
)

// Keys of the elementary and mux streams shared by the configs below.
const (
	videoSD = "video-stream0"
	videoHD = "video-stream1"
	audio   = "audio-stream0"
)

func h264Stream(key string, width, height, bitrate int32) *transcoderpb.ElementaryStream {
	return &transcoderpb.ElementaryStream{
		Key: key,
		ElementaryStream: &transcoderpb.ElementaryStream_VideoStream{
			VideoStream: &transcoderpb.VideoStream{
				CodecSettings: &transcoderpb.VideoStream_H264{
					H264: &transcoderpb.VideoStream_H264CodecSettings{
						WidthPixels:  width,
						HeightPixels: height,
						BitrateBps:   bitrate,
						FrameRate:    60,
					},
				},
			},
		},
	}
}

func aacStream(key string) *transcoderpb.ElementaryStream {
	return &transcoderpb.ElementaryStream{
		Key: key,
		ElementaryStream: &transcoderpb.ElementaryStream_AudioStream{
			AudioStream: &transcoderpb.AudioStream{
				Codec:      "aac",
				BitrateBps: 64000,
			},
		},
	}
}

func mux(key, container string, streams ...string) *transcoderpb.MuxStream {
	return &transcoderpb.MuxStream{
		Key:               key,
		Container:         container,
		ElementaryStreams: streams,
	}
}

// adHocConfig encodes an SD and an HD H.264 rendition, each muxed with AAC
// audio into an MP4 file.
func adHocConfig() *transcoderpb.JobConfig {
	return &transcoderpb.JobConfig{
		ElementaryStreams: []*transcoderpb.ElementaryStream{
			h264Stream(videoSD, 640, 360, 550000),
			h264Stream(videoHD, 1280, 720, 2500000),
			aacStream(audio),
		},
		MuxStreams: []*transcoderpb.MuxStream{
			mux("sd", "mp4", videoSD, audio),
			mux("hd", "mp4", videoHD, audio),
		},
	}
}

// sdConfig is a single SD rendition with audio.
func sdConfig() *transcoderpb.JobConfig {
	return &transcoderpb.JobConfig{
		ElementaryStreams: []*transcoderpb.ElementaryStream{
			h264Stream(videoSD, 640, 360, 550000),
			aacStream(audio),
		},
		MuxStreams: []*transcoderpb.MuxStream{
			mux("sd", "mp4", videoSD, audio),
		},
	}
}

// staticOverlayConfig shows an image in the top-left corner of the output
// for the first 10 seconds.
func staticOverlayConfig(imageURI string) *transcoderpb.JobConfig {
	cfg := sdConfig()
	cfg.Overlays = []*transcoderpb.Overlay{{
		Image: &transcoderpb.Overlay_Image{
			Uri: imageURI,
			// Scale the image to the full width and half the height of the
			// video.
			Resolution: &transcoderpb.Overlay_NormalizedCoordinate{X: 1, Y: 0.5},
			Alpha:      1,
		},
		Animations: []*transcoderpb.Overlay_Animation{
			{
				AnimationType: &transcoderpb.Overlay_Animation_AnimationStatic{
					AnimationStatic: &transcoderpb.Overlay_AnimationStatic{
						Xy:              &transcoderpb.Overlay_NormalizedCoordinate{X: 0, Y: 0},
						StartTimeOffset: durationpb.New(0),
					},
				},
			},
			{
				AnimationType: &transcoderpb.Overlay_Animation_AnimationEnd{
					AnimationEnd: &transcoderpb.Overlay_AnimationEnd{
						StartTimeOffset: durationpb.New(10 * time.Second),
					},
				},
			},
		},
	}}
	return cfg
}

func fade(typ transcoderpb.Overlay_FadeType, start, end time.Duration) *transcoderpb.Overlay_Animation {
	return &transcoderpb.Overlay_Animation{
		AnimationType: &transcoderpb.Overlay_Animation_AnimationFade{
			AnimationFade: &transcoderpb.Overlay_AnimationFade{
				FadeType:        typ,
				Xy:              &transcoderpb.Overlay_NormalizedCoordinate{X: 0.5, Y: 0.5},
				StartTimeOffset: durationpb.New(start),
				EndTimeOffset:   durationpb.New(end),
			},
		},
	}
}

// animatedOverlayConfig fades an image in at the center of the output
// between 5s and 10s and fades it out between 12s and 15s.
func animatedOverlayConfig(imageURI string) *transcoderpb.JobConfig {
	cfg := sdConfig()
	cfg.Overlays = []*transcoderpb.Overlay{{
		Image: &transcoderpb.Overlay_Image{
			Uri: imageURI,
			// Zero resolution keeps the image at its original size.
			Resolution: &transcoderpb.Overlay_NormalizedCoordinate{X: 0, Y: 0},
			Alpha:      1,
		},
		Animations: []*transcoderpb.Overlay_Animation{
			fade(transcoderpb.Overlay_FADE_IN, 5*time.Second, 10*time.Second),
			fade(transcoderpb.Overlay_FADE_OUT, 12*time.Second, 15*time.Second),
		},
	}}
	return cfg
}

func spriteSheet(prefix string, width, height int32) *transcoderpb.SpriteSheet {
	return &transcoderpb.SpriteSheet{
		FilePrefix:         prefix,
		SpriteWidthPixels:  width,
		SpriteHeightPixels: height,
		ColumnCount:        10,
		RowCount:           10,
	}
}

// countSpriteSheetConfig generates a small and a large sprite sheet of 100
// thumbnails each, evenly spread over the input.
func countSpriteSheetConfig() *transcoderpb.JobConfig {
	small := spriteSheet("small-sprite-sheet", 64, 32)
	large := spriteSheet("large-sprite-sheet", 128, 72)
	for _, s := range []*transcoderpb.SpriteSheet{small, large} {
		s.ExtractionStrategy = &transcoderpb.SpriteSheet_TotalCount{TotalCount: 100}
	}
	cfg := sdConfig()
	cfg.SpriteSheets = []*transcoderpb.SpriteSheet{small, large}
	return cfg
}

// periodicSpriteSheetConfig generates a small and a large sprite sheet with a
// thumbnail every interval.
func periodicSpriteSheetConfig(interval time.Duration) *transcoderpb.JobConfig {
	small := spriteSheet("small-sprite-sheet", 64, 32)
	large := spriteSheet("large-sprite-sheet", 128, 72)
	for _, s := range []*transcoderpb.SpriteSheet{small, large} {
		s.ExtractionStrategy = &transcoderpb.SpriteSheet_Interval{Interval: durationpb.New(interval)}
	}
	cfg := sdConfig()
	cfg.SpriteSheets = []*transcoderpb.SpriteSheet{small, large}
	return cfg
}

// Clip is a piece of an input video.
type Clip struct {
	URI   string
	Start time.Duration
	End   time.Duration
}

func (c Clip) validate() error {
	switch {
	case c.URI == "":
		return errors.New("clip URI is required")
	case c.Start < 0:
		return errors.Fmt("clip %s: start offset %s is negative", c.URI, c.Start)
	case c.End <= c.Start:
		return errors.Fmt("clip %s: end offset %s must be after start offset %s", c.URI, c.End, c.Start)
	}
	return nil
}

// concatenatedConfig plays the clips one after another.
func concatenatedConfig(clips []Clip) (*transcoderpb.JobConfig, error) {
	if len(clips) < 2 {
		return nil, errors.New("at least two clips are required")
	}
	cfg := sdConfig()
	for i, c := range clips {
		if err := c.validate(); err != nil {
			return nil, err
		}
		input := fmt.Sprintf("input%d", i+1)
		cfg.Inputs = append(cfg.Inputs, &transcoderpb.Input{Key: input, Uri: c.URI})
		cfg.EditList = append(cfg.EditList, &transcoderpb.EditAtom{
			Key:             fmt.Sprintf("atom%d", i+1),
			Inputs:          []string{input},
			StartTimeOffset: durationpb.New(c.Start),
			EndTimeOffset:   durationpb.New(c.End),
		})
	}
	return cfg, nil
}

func textStream(key, codec, atom, input string) *transcoderpb.ElementaryStream {
	return &transcoderpb.ElementaryStream{
		Key: key,
		ElementaryStream: &transcoderpb.ElementaryStream_TextStream{
			TextStream: &transcoderpb.TextStream{
				Codec:        codec,
				LanguageCode: "en-US",
				DisplayName:  "English",
				Mapping: []*transcoderpb.TextStream_TextMapping{{
					AtomKey:    atom,
					InputKey:   input,
					InputTrack: 0,
				}},
			},
		},
	}
}

// embeddedCaptionsConfig embeds CEA-608 captions into the video stream and
// produces HLS and DASH outputs.
func embeddedCaptionsConfig(videoURI, captionsURI string) *transcoderpb.JobConfig {
	return &transcoderpb.JobConfig{
		Inputs: []*transcoderpb.Input{
			{Key: "input0", Uri: videoURI},
			{Key: "caption-input0", Uri: captionsURI},
		},
		EditList: []*transcoderpb.EditAtom{{
			Key:    "atom0",
			Inputs: []string{"input0", "caption-input0"},
		}},
		ElementaryStreams: []*transcoderpb.ElementaryStream{
			h264Stream(videoSD, 640, 360, 550000),
			aacStream(audio),
			textStream("cea-stream0", "cea608", "atom0", "caption-input0"),
		},
		MuxStreams: []*transcoderpb.MuxStream{
			mux("sd-hls", "ts", videoSD, audio),
			mux("sd-dash", "fmp4", videoSD),
			mux("audio-dash", "fmp4", audio),
		},
		Manifests: []*transcoderpb.Manifest{
			{FileName: "manifest.m3u8", Type: transcoderpb.Manifest_HLS, MuxStreams: []string{"sd-hls"}},
			{FileName: "manifest.mpd", Type: transcoderpb.Manifest_DASH, MuxStreams: []string{"sd-dash", "audio-dash"}},
		},
	}
}

// standaloneCaptionsConfig turns SRT subtitles into a WebVTT rendition of an
// HLS output.
func standaloneCaptionsConfig(videoURI, subtitlesURI string) *transcoderpb.JobConfig {
	vtt := mux("text-vtt-en", "vtt", "vtt-stream-en")
	vtt.SegmentSettings = &transcoderpb.SegmentSettings{
		SegmentDuration:    durationpb.New(6 * time.Second),
		IndividualSegments: true,
	}
	return &transcoderpb.JobConfig{
		Inputs: []*transcoderpb.Input{
			{Key: "input0", Uri: videoURI},
			{Key: "subtitle-input-en", Uri: subtitlesURI},
		},
		EditList: []*transcoderpb.EditAtom{{
			Key:    "atom0",
			Inputs: []string{"input0", "subtitle-input-en"},
		}},
		ElementaryStreams: []*transcoderpb.ElementaryStream{
			h264Stream(videoSD, 640, 360, 550000),
			aacStream(audio),
			textStream("vtt-stream-en", "webvtt", "atom0", "subtitle-input-en"),
		},
		MuxStreams: []*transcoderpb.MuxStream{
			mux("sd-hls-fmp4", "fmp4", videoSD),
			mux("audio-hls-fmp4", "fmp4", audio),
			vtt,
		},
		Manifests: []*transcoderpb.Manifest{{
			FileName:   "manifest.m3u8",
			Type:       transcoderpb.Manifest_HLS,
			MuxStreams: []string{"sd-hls-fmp4", "audio-hls-fmp4", "text-vtt-en"},
		}},
	}
}
