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
	"fmt"
	"os"
	"time"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/maruel/subcommands"
	"google.golang.org/api/option"
	"google.golang.org/grpc"

	"go.chromium.org/luci/auth"
	"go.chromium.org/luci/auth/client/authcli"
	"go.chromium.org/luci/common/data/text"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// CommandLineError is used to tag errors related to command line arguments.
//
// done prints the usage string if it finds such error.
type CommandLineError struct {
	error
}

// NewCLIError returns a new CommandLineError.
func NewCLIError(msg string, args ...any) error {
	return CommandLineError{fmt.Errorf(msg, args...)}
}

// baseCommandRun holds the flags shared by all verbs.
type baseCommandRun struct {
	subcommands.CommandRunBase

	params     *Params
	logConfig  logging.Config // for -log-level, used by ModifyContext
	authFlags  authcli.Flags
	endpoint   string
	location   string
	timeout    time.Duration
	rpcTimeout time.Duration
}

// ModifyContext implements cli.ContextModificator.
func (r *baseCommandRun) ModifyContext(ctx context.Context) context.Context {
	return r.logConfig.Set(ctx)
}

// init registers common flags. defaultLocation is the default of -location;
// it is empty for services that are not regional.
func (r *baseCommandRun) init(p *Params, defaultLocation string) {
	r.params = p

	r.logConfig.Level = logging.Info
	r.logConfig.AddFlags(&r.Flags)

	r.authFlags.Register(&r.Flags, p.Auth)
	r.Flags.StringVar(&r.endpoint, "endpoint", "", text.Doc(`
		Overrides the API endpoint, e.g. "localhost:9010" for an emulator.
	`))
	r.Flags.StringVar(&r.location, "location", defaultLocation, text.Doc(`
		Cloud location of the resources. For Secret Manager, a non-empty
		location selects regional secrets and the regional endpoint.
	`))
	r.Flags.DurationVar(&r.timeout, "timeout", 0, "Deadline of the whole command, 0 for none.")
	r.Flags.DurationVar(&r.rpcTimeout, "rpc-timeout", 0, "Deadline of every RPC, 0 for the client library defaults.")
}

// clientOptions returns options for dialing the services.
//
// Credentials come from the -service-account-json flag or a previous
// auth-login when available, and from Application Default Credentials
// otherwise.
func (r *baseCommandRun) clientOptions(ctx context.Context) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if r.endpoint != "" {
		opts = append(opts, option.WithEndpoint(r.endpoint))
	}

	authOpts, err := r.authFlags.Options()
	if err != nil {
		return nil, err
	}
	a := auth.NewAuthenticator(ctx, auth.SilentLogin, authOpts)
	switch err := a.CheckLoginRequired(); {
	case errors.Is(err, auth.ErrLoginRequired):
		logging.Debugf(ctx, "Not logged in, using Application Default Credentials")
		return opts, nil
	case err != nil:
		return nil, errors.Fmt("checking credentials: %w", err)
	}
	creds, err := a.PerRPCCredentials()
	if err != nil {
		return nil, errors.Fmt("getting credentials: %w", err)
	}
	return append(opts, option.WithGRPCDialOption(grpc.WithPerRPCCredentials(creds))), nil
}

// connect returns a Connector configured by the flags.
func (r *baseCommandRun) connect(ctx context.Context) (Connector, error) {
	if r.params.Connect != nil {
		return r.params.Connect(ctx)
	}
	opts, err := r.clientOptions(ctx)
	if err != nil {
		return nil, err
	}
	return NewConnector(opts, r.rpcTimeout), nil
}

// checkArgs checks the number of positional arguments.
func (r *baseCommandRun) checkArgs(args []string, minPosCount, maxPosCount int) error {
	if len(args) >= minPosCount && (maxPosCount < 0 || len(args) <= maxPosCount) {
		return nil
	}
	switch {
	case maxPosCount == 0:
		return NewCLIError("unexpected arguments %v", args)
	case minPosCount == maxPosCount:
		return NewCLIError("expecting %d positional arguments, got %d instead", minPosCount, len(args))
	case maxPosCount >= 0:
		return NewCLIError("expecting from %d to %d positional arguments, got %d instead", minPosCount, maxPosCount, len(args))
	default:
		return NewCLIError("expecting at least %d positional arguments, got %d instead", minPosCount, len(args))
	}
}

// done logs the error, if any, and returns the exit code.
func (r *baseCommandRun) done(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}
	var cmdErr CommandLineError
	if errors.As(err, &cmdErr) {
		fmt.Fprintf(os.Stderr, "Bad command line: %s.\n\n", err)
		r.Flags.Usage()
		return 1
	}
	if ae, ok := apierror.FromError(err); ok && ae.Reason() != "" {
		logging.Errorf(ctx, "%s (reason: %s)", err, ae.Reason())
		return 1
	}
	logging.Errorf(ctx, "%s", err)
	return 1
}
