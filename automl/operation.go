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

	"cloud.google.com/go/longrunning/autogen/longrunningpb"

	"go.chromium.org/luci/common/errors"
)

func printOperation(w io.Writer, op *longrunningpb.Operation) {
	fmt.Fprintf(w, "Name: %s\n", op.GetName())
	fmt.Fprintf(w, "Done: %t\n", op.GetDone())
	if e := op.GetError(); e != nil {
		fmt.Fprintf(w, "Error: %s\n", e.GetMessage())
	}
}

// GetOperationStatus prints the status of a long-running operation, given
// its full name.
func GetOperationStatus(ctx context.Context, w io.Writer, api API, name string) (*longrunningpb.Operation, error) {
	op, err := api.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: name})
	if err != nil {
		return nil, errors.Fmt("failed to get operation: %w", err)
	}
	printOperation(w, op)
	return op, nil
}

// ListOperationStatus prints all long-running operations of a location.
func ListOperationStatus(ctx context.Context, w io.Writer, api API, project, loc string) ([]*longrunningpb.Operation, error) {
	res, err := api.ListOperations(ctx, &longrunningpb.ListOperationsRequest{Name: location(project, loc)})
	if err != nil {
		return nil, errors.Fmt("failed to list operations: %w", err)
	}
	fmt.Fprintln(w, "List of operations:")
	for _, op := range res {
		printOperation(w, op)
	}
	return res, nil
}
