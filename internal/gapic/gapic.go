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

// Package gapic holds helpers shared by the wrappers around generated
// Google API clients.
package gapic

import (
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/iterator"

	"go.chromium.org/luci/common/errors"
)

// Collect drains a generated iterator into a slice.
//
// next is usually the Next method of a *FooIterator.
func Collect[T any](next func() (T, error)) ([]T, error) {
	var out []T
	for {
		v, err := next()
		switch {
		case errors.Is(err, iterator.Done):
			return out, nil
		case err != nil:
			return nil, err
		}
		out = append(out, v)
	}
}

// CallOptions returns the per-RPC options applied to every call made by a
// wrapper. A zero timeout means no per-RPC deadline.
func CallOptions(timeout time.Duration) []gax.CallOption {
	if timeout <= 0 {
		return nil
	}
	return []gax.CallOption{gax.WithTimeout(timeout)}
}
