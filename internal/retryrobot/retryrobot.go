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

// Package retryrobot retries an operation with exponential backoff while a
// predicate classifies its failures as retriable.
//
// Unlike retry.ExponentialBackoff, a Robot has no jitter and no cap on the
// delay: the n-th sleep is exactly Delay*Multiplier^(n-1). Sleeps block the
// calling goroutine, using the context clock so tests can fake time.
package retryrobot

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/retry"
	"go.chromium.org/luci/common/retry/transient"
	"go.chromium.org/luci/grpc/grpcutil"
)

// Robot describes a retry schedule.
//
// The zero value runs the operation exactly once.
type Robot struct {
	// Delay is the sleep before the second attempt.
	Delay time.Duration
	// Multiplier scales the delay after every sleep. Values below 1 are
	// treated as 1.
	Multiplier float64
	// MaxAttempts is the total number of attempts, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// ShouldRetry decides whether a failure is worth another attempt.
	// A nil ShouldRetry retries nothing.
	ShouldRetry func(error) bool
}

// Default is the schedule used by the samples that need one.
var Default = Robot{
	Delay:       time.Second,
	Multiplier:  2,
	MaxAttempts: 5,
	ShouldRetry: Transient,
}

// Do calls fn until it succeeds, the predicate rejects its error or the
// attempts are exhausted. The last error of fn is returned as is.
//
// If ctx is done while sleeping, Do returns the context error.
func (r Robot) Do(ctx context.Context, fn func() error) error {
	attempt := 1
	return retry.Retry(ctx, r.Factory(), fn, func(err error, d time.Duration) {
		logging.Warningf(ctx, "Attempt %d of %d failed, retrying in %s: %s", attempt, r.maxAttempts(), d, err)
		attempt++
	})
}

// Eval is like Do, but for operations that produce a value.
//
// On failure it returns the zero value of T along with the last error.
func Eval[T any](ctx context.Context, r Robot, fn func() (T, error)) (T, error) {
	var res T
	err := r.Do(ctx, func() error {
		var err error
		res, err = fn()
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res, nil
}

// Factory returns a retry.Factory producing fresh iterators for this
// schedule, for use with retry.Retry directly.
func (r Robot) Factory() retry.Factory {
	return func() retry.Iterator { return r.Iterator() }
}

// Iterator returns a new retry.Iterator following this schedule.
func (r Robot) Iterator() retry.Iterator {
	return &iterator{robot: r, delay: r.Delay}
}

func (r Robot) maxAttempts() int {
	if r.MaxAttempts < 1 {
		return 1
	}
	return r.MaxAttempts
}

func (r Robot) multiplier() float64 {
	if r.Multiplier < 1 {
		return 1
	}
	return r.Multiplier
}

type iterator struct {
	robot    Robot
	attempts int
	delay    time.Duration
}

// Next implements retry.Iterator.
func (it *iterator) Next(ctx context.Context, err error) time.Duration {
	it.attempts++
	if it.attempts >= it.robot.maxAttempts() {
		return retry.Stop
	}
	if it.robot.ShouldRetry == nil || !it.robot.ShouldRetry(err) {
		return retry.Stop
	}
	d := it.delay
	it.delay = time.Duration(float64(it.delay) * it.robot.multiplier())
	return d
}

// OnCodes returns a predicate accepting errors with one of the given gRPC
// status codes.
func OnCodes(cs ...codes.Code) func(error) bool {
	return func(err error) bool {
		if err == nil {
			return false
		}
		code := status.Code(err)
		for _, c := range cs {
			if c == code {
				return true
			}
		}
		return false
	}
}

// Transient accepts errors tagged as transient and gRPC errors with a
// transient status code.
//
// Errors that carry no gRPC status are not retried unless tagged.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if transient.Tag.In(err) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		return grpcutil.IsTransientCode(s.Code())
	}
	return false
}
