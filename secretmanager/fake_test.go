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
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/iam/apiv1/iampb"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// fakeAPI is an in-memory Secret Manager.
type fakeAPI struct {
	secrets  map[string]*smpb.Secret
	versions map[string][]*fakeVersion // by secret name
	policies map[string]*iampb.Policy
	etags    int

	// corruptAccess flips a bit in every accessed payload.
	corruptAccess bool
}

type fakeVersion struct {
	meta *smpb.SecretVersion
	data []byte
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		secrets:  map[string]*smpb.Secret{},
		versions: map[string][]*fakeVersion{},
		policies: map[string]*iampb.Policy{},
	}
}

var _ API = (*fakeAPI)(nil)

func (f *fakeAPI) nextEtag() string {
	f.etags++
	return fmt.Sprintf("%q", strconv.Itoa(f.etags))
}

func checkEtag(given, cur string) error {
	if given != "" && given != cur {
		return status.Errorf(codes.FailedPrecondition, "etag mismatch: %s != %s", given, cur)
	}
	return nil
}

func (f *fakeAPI) CreateSecret(ctx context.Context, req *smpb.CreateSecretRequest) (*smpb.Secret, error) {
	name := req.Parent + "/secrets/" + req.SecretId
	if _, ok := f.secrets[name]; ok {
		return nil, status.Errorf(codes.AlreadyExists, "%s already exists", name)
	}
	s := proto.Clone(req.Secret).(*smpb.Secret)
	s.Name = name
	s.Etag = f.nextEtag()
	f.secrets[name] = s
	return proto.Clone(s).(*smpb.Secret), nil
}

func (f *fakeAPI) secret(name string) (*smpb.Secret, error) {
	s, ok := f.secrets[name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "%s not found", name)
	}
	return s, nil
}

func (f *fakeAPI) GetSecret(ctx context.Context, req *smpb.GetSecretRequest) (*smpb.Secret, error) {
	s, err := f.secret(req.Name)
	if err != nil {
		return nil, err
	}
	return proto.Clone(s).(*smpb.Secret), nil
}

func (f *fakeAPI) UpdateSecret(ctx context.Context, req *smpb.UpdateSecretRequest) (*smpb.Secret, error) {
	s, err := f.secret(req.Secret.Name)
	if err != nil {
		return nil, err
	}
	if err := checkEtag(req.Secret.Etag, s.Etag); err != nil {
		return nil, err
	}
	for _, p := range req.UpdateMask.GetPaths() {
		switch p {
		case "labels":
			s.Labels = req.Secret.Labels
		case "annotations":
			s.Annotations = req.Secret.Annotations
		case "version_aliases":
			s.VersionAliases = req.Secret.VersionAliases
		default:
			return nil, status.Errorf(codes.InvalidArgument, "unsupported path %q", p)
		}
	}
	s.Etag = f.nextEtag()
	return proto.Clone(s).(*smpb.Secret), nil
}

func (f *fakeAPI) DeleteSecret(ctx context.Context, req *smpb.DeleteSecretRequest) error {
	s, err := f.secret(req.Name)
	if err != nil {
		return err
	}
	if err := checkEtag(req.Etag, s.Etag); err != nil {
		return err
	}
	delete(f.secrets, req.Name)
	delete(f.versions, req.Name)
	return nil
}

func (f *fakeAPI) ListSecrets(ctx context.Context, req *smpb.ListSecretsRequest) ([]*smpb.Secret, error) {
	var out []*smpb.Secret
	for name, s := range f.secrets {
		if !strings.HasPrefix(name, req.Parent+"/secrets/") {
			continue
		}
		// Only "labels.key:value" filters are understood.
		if k, v, ok := strings.Cut(strings.TrimPrefix(req.Filter, "labels."), ":"); ok && s.Labels[k] != v {
			continue
		}
		out = append(out, proto.Clone(s).(*smpb.Secret))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeAPI) AddSecretVersion(ctx context.Context, req *smpb.AddSecretVersionRequest) (*smpb.SecretVersion, error) {
	if _, err := f.secret(req.Parent); err != nil {
		return nil, err
	}
	vs := f.versions[req.Parent]
	v := &fakeVersion{
		meta: &smpb.SecretVersion{
			Name:                           fmt.Sprintf("%s/versions/%d", req.Parent, len(vs)+1),
			State:                          smpb.SecretVersion_ENABLED,
			Etag:                           f.nextEtag(),
			ClientSpecifiedPayloadChecksum: req.Payload.DataCrc32C != nil,
		},
		data: append([]byte(nil), req.Payload.Data...),
	}
	f.versions[req.Parent] = append(vs, v)
	return proto.Clone(v.meta).(*smpb.SecretVersion), nil
}

func (f *fakeAPI) version(name string) (*fakeVersion, error) {
	secretName, id, _ := strings.Cut(name, "/versions/")
	vs := f.versions[secretName]
	if id == "latest" {
		if len(vs) == 0 {
			return nil, status.Errorf(codes.NotFound, "%s has no versions", secretName)
		}
		return vs[len(vs)-1], nil
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "bad version %q", id)
	}
	if n < 1 || n > len(vs) {
		return nil, status.Errorf(codes.NotFound, "%s not found", name)
	}
	return vs[n-1], nil
}

func (f *fakeAPI) GetSecretVersion(ctx context.Context, req *smpb.GetSecretVersionRequest) (*smpb.SecretVersion, error) {
	v, err := f.version(req.Name)
	if err != nil {
		return nil, err
	}
	return proto.Clone(v.meta).(*smpb.SecretVersion), nil
}

func (f *fakeAPI) AccessSecretVersion(ctx context.Context, req *smpb.AccessSecretVersionRequest) (*smpb.AccessSecretVersionResponse, error) {
	v, err := f.version(req.Name)
	if err != nil {
		return nil, err
	}
	if v.meta.State != smpb.SecretVersion_ENABLED {
		return nil, status.Errorf(codes.FailedPrecondition, "%s is in state %s", v.meta.Name, v.meta.State)
	}
	sum := checksum(v.data)
	data := append([]byte(nil), v.data...)
	if f.corruptAccess && len(data) > 0 {
		data[0] ^= 1
	}
	return &smpb.AccessSecretVersionResponse{
		Name:    v.meta.Name,
		Payload: &smpb.SecretPayload{Data: data, DataCrc32C: &sum},
	}, nil
}

func (f *fakeAPI) ListSecretVersions(ctx context.Context, req *smpb.ListSecretVersionsRequest) ([]*smpb.SecretVersion, error) {
	if _, err := f.secret(req.Parent); err != nil {
		return nil, err
	}
	var out []*smpb.SecretVersion
	for _, v := range f.versions[req.Parent] {
		if st, ok := strings.CutPrefix(req.Filter, "state:"); ok && v.meta.State.String() != st {
			continue
		}
		out = append(out, proto.Clone(v.meta).(*smpb.SecretVersion))
	}
	return out, nil
}

func (f *fakeAPI) setState(name, etag string, st smpb.SecretVersion_State) (*smpb.SecretVersion, error) {
	v, err := f.version(name)
	if err != nil {
		return nil, err
	}
	if err := checkEtag(etag, v.meta.Etag); err != nil {
		return nil, err
	}
	if v.meta.State == smpb.SecretVersion_DESTROYED {
		return nil, status.Errorf(codes.FailedPrecondition, "%s is destroyed", name)
	}
	v.meta.State = st
	v.meta.Etag = f.nextEtag()
	if st == smpb.SecretVersion_DESTROYED {
		v.data = nil
	}
	return proto.Clone(v.meta).(*smpb.SecretVersion), nil
}

func (f *fakeAPI) EnableSecretVersion(ctx context.Context, req *smpb.EnableSecretVersionRequest) (*smpb.SecretVersion, error) {
	return f.setState(req.Name, req.Etag, smpb.SecretVersion_ENABLED)
}

func (f *fakeAPI) DisableSecretVersion(ctx context.Context, req *smpb.DisableSecretVersionRequest) (*smpb.SecretVersion, error) {
	return f.setState(req.Name, req.Etag, smpb.SecretVersion_DISABLED)
}

func (f *fakeAPI) DestroySecretVersion(ctx context.Context, req *smpb.DestroySecretVersionRequest) (*smpb.SecretVersion, error) {
	return f.setState(req.Name, req.Etag, smpb.SecretVersion_DESTROYED)
}

func (f *fakeAPI) GetIamPolicy(ctx context.Context, req *iampb.GetIamPolicyRequest) (*iampb.Policy, error) {
	if _, err := f.secret(req.Resource); err != nil {
		return nil, err
	}
	if p, ok := f.policies[req.Resource]; ok {
		return proto.Clone(p).(*iampb.Policy), nil
	}
	return &iampb.Policy{}, nil
}

func (f *fakeAPI) SetIamPolicy(ctx context.Context, req *iampb.SetIamPolicyRequest) (*iampb.Policy, error) {
	if _, err := f.secret(req.Resource); err != nil {
		return nil, err
	}
	f.policies[req.Resource] = proto.Clone(req.Policy).(*iampb.Policy)
	return proto.Clone(req.Policy).(*iampb.Policy), nil
}
