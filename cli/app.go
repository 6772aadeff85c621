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

// Package cli implements the cloudsamples command line tool, with one
// subcommand per sample.
package cli

import (
	"context"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/auth"
	"go.chromium.org/luci/auth/client/authcli"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/flag/fixflagpos"
	"go.chromium.org/luci/common/logging/gologger"
)

// Params is the parameters for the cloudsamples tool.
type Params struct {
	// Auth is the default auth options, used when the -service-account-json
	// flag is set or after auth-login.
	Auth auth.Options
	// Connect, if set, replaces dialing the services.
	Connect func(ctx context.Context) (Connector, error)
}

// DefaultScopes are the OAuth scopes needed by all the samples.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/userinfo.email",
}

var logCfg = gologger.LoggerConfig{
	Out: os.Stderr,
}

// Verbs returns all verbs, grouped by service.
func Verbs() [][]*Verb {
	return [][]*Verb{
		secretManagerVerbs(),
		autoMLVerbs(),
		transcoderVerbs(),
		spannerVerbs(),
	}
}

// application creates the application and configures its subcommands.
func application(p Params) *cli.Application {
	var cmds []*subcommands.Command
	for _, group := range Verbs() {
		for _, v := range group {
			cmds = append(cmds, v.command(&p))
		}
		cmds = append(cmds, &subcommands.Command{}) // a separator
	}
	cmds = append(cmds,
		authcli.SubcommandLogin(p.Auth, "auth-login", false),
		authcli.SubcommandLogout(p.Auth, "auth-logout", false),
		authcli.SubcommandInfo(p.Auth, "auth-info", false),

		&subcommands.Command{}, // a separator
		subcommands.CmdHelp,
	)
	return &cli.Application{
		Name:  "cloudsamples",
		Title: "Samples calling the AutoML, Transcoder, Secret Manager and Spanner APIs.",
		Context: func(ctx context.Context) context.Context {
			return logCfg.Use(ctx)
		},
		Commands: cmds,
	}
}

// Main is the main function of the cloudsamples tool.
func Main(p Params, args []string) int {
	return subcommands.Run(application(p), fixflagpos.FixSubcommands(args))
}
