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
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/pubsub"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"go.chromium.org/luci/common/errors"
)

// Event is a Secret Manager change notification delivered over Pub/Sub.
type Event struct {
	// Type is e.g. "SECRET_UPDATE" or "SECRET_VERSION_ADD".
	Type string
	// SecretID is the full name of the secret that changed.
	SecretID string
	// Secret is set for secret events.
	Secret *smpb.Secret
	// Version is set for version events.
	Version *smpb.SecretVersion
}

// ConsumeEventNotification decodes a notification published to a topic
// configured on a secret (see CreateSecretWithTopic).
//
// The event type and secret are carried in the message attributes, the new
// metadata of the secret or version as JSON in the message data.
func ConsumeEventNotification(w io.Writer, m *pubsub.Message) (*Event, error) {
	ev := &Event{
		Type:     m.Attributes["eventType"],
		SecretID: m.Attributes["secretId"],
	}
	if ev.Type == "" || ev.SecretID == "" {
		return nil, errors.New("message is not a Secret Manager notification")
	}

	var msg proto.Message
	if strings.HasPrefix(ev.Type, "SECRET_VERSION_") {
		ev.Version = &smpb.SecretVersion{}
		msg = ev.Version
	} else {
		ev.Secret = &smpb.Secret{}
		msg = ev.Secret
	}
	if len(m.Data) > 0 {
		if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(m.Data, msg); err != nil {
			return nil, errors.Fmt("bad notification payload: %w", err)
		}
	}

	fmt.Fprintf(w, "Received %s for %s. New metadata: %s\n", ev.Type, ev.SecretID, m.Data)
	return ev, nil
}
