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

package secretmanager

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/iam"
	"cloud.google.com/go/iam/apiv1/iampb"

	"go.chromium.org/luci/common/errors"
)

// AccessorRole lets members read secret payloads.
const AccessorRole iam.RoleName = "roles/secretmanager.secretAccessor"

// modifyPolicy reads the IAM policy of a secret, lets f change it and
// writes it back. The etag read along with the policy guards the write.
func modifyPolicy(ctx context.Context, api API, secretName string, f func(*iam.Policy)) (*iam.Policy, error) {
	cur, err := api.GetIamPolicy(ctx, &iampb.GetIamPolicyRequest{Resource: secretName})
	if err != nil {
		return nil, errors.Fmt("failed to get policy: %w", err)
	}
	policy := &iam.Policy{InternalProto: cur}
	f(policy)
	res, err := api.SetIamPolicy(ctx, &iampb.SetIamPolicyRequest{
		Resource: secretName,
		Policy:   policy.InternalProto,
	})
	if err != nil {
		return nil, errors.Fmt("failed to save policy: %w", err)
	}
	return &iam.Policy{InternalProto: res}, nil
}

// IAMGrantAccess grants member (e.g. "user:foo@example.com") access to the
// payloads of secretName.
func IAMGrantAccess(ctx context.Context, w io.Writer, api API, secretName, member string) (*iam.Policy, error) {
	p, err := modifyPolicy(ctx, api, secretName, func(p *iam.Policy) {
		p.Add(member, AccessorRole)
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Updated IAM policy for %s\n", secretName)
	return p, nil
}

// IAMRevokeAccess removes member from the accessors of secretName.
func IAMRevokeAccess(ctx context.Context, w io.Writer, api API, secretName, member string) (*iam.Policy, error) {
	p, err := modifyPolicy(ctx, api, secretName, func(p *iam.Policy) {
		p.Remove(member, AccessorRole)
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Updated IAM policy for %s\n", secretName)
	return p, nil
}
