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
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/data/text"
	"go.chromium.org/luci/common/errors"
)

// ProjectEnvVar supplies the project when a verb is given "-" instead.
const ProjectEnvVar = "GOOGLE_CLOUD_PROJECT"

// Verb is a sample runnable from the command line.
type Verb struct {
	// Name is the subcommand name.
	Name string
	// Args names the positional arguments. Names in brackets are optional
	// and must come last. A last name ending with "..." takes one or more
	// values.
	Args []string
	// Help is the first line of the help text followed by an optional
	// longer description.
	Help string
	// Location is the default of the -location flag.
	Location string
	// Run runs the sample. args has one element per name in Args, with ""
	// for missing optional ones, plus any extra variadic values.
	Run func(ctx context.Context, e *Env, args []string) error
}

// Env is what a running verb has access to.
type Env struct {
	Out      io.Writer
	Conn     Connector
	Location string
}

// arity returns the allowed number of positional arguments, -1 meaning
// unbounded.
func (v *Verb) arity() (minCount, maxCount int) {
	for _, a := range v.Args {
		if !strings.HasPrefix(a, "[") {
			minCount++
		}
	}
	maxCount = len(v.Args)
	if n := len(v.Args); n > 0 && strings.HasSuffix(v.Args[n-1], "...") {
		maxCount = -1
	}
	return
}

func (v *Verb) command(p *Params) *subcommands.Command {
	short, long, _ := strings.Cut(v.Help, "\n")
	usage := v.Name + " [flags]"
	for _, a := range v.Args {
		usage += " " + strings.ToUpper(a)
	}
	return &subcommands.Command{
		UsageLine: usage,
		ShortDesc: short,
		LongDesc:  text.Doc(short + "\n\n" + long),
		CommandRun: func() subcommands.CommandRun {
			r := &verbRun{verb: v}
			r.init(p, v.Location)
			return r
		},
	}
}

type verbRun struct {
	baseCommandRun
	verb *Verb
}

func (r *verbRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	minCount, maxCount := r.verb.arity()
	if err := r.checkArgs(args, minCount, maxCount); err != nil {
		return r.done(ctx, err)
	}
	for len(args) < len(r.verb.Args) {
		args = append(args, "")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = clock.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return r.done(ctx, err)
	}
	err = r.verb.Run(ctx, &Env{Out: a.GetOut(), Conn: conn, Location: r.location}, args)
	if cerr := conn.Close(); err == nil {
		err = cerr
	}
	return r.done(ctx, err)
}

// project resolves a project argument, "-" meaning $GOOGLE_CLOUD_PROJECT.
func project(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	if p := os.Getenv(ProjectEnvVar); p != "" {
		return p, nil
	}
	return "", NewCLIError("project is \"-\" but $%s is not set", ProjectEnvVar)
}

// keyValues parses "k1=v1,k2=v2".
func keyValues(arg string) (map[string]string, error) {
	m := map[string]string{}
	if arg == "" {
		return m, nil
	}
	for _, kv := range strings.Split(arg, ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, NewCLIError("bad key=value pair %q", kv)
		}
		m[k] = v
	}
	return m, nil
}

// list parses a comma separated list, dropping empty items.
func list(arg string) []string {
	var out []string
	for _, s := range strings.Split(arg, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func duration(name, arg string) (time.Duration, error) {
	d, err := time.ParseDuration(arg)
	if err != nil {
		return 0, NewCLIError("bad %s %q: %s", name, arg, err)
	}
	return d, nil
}

func integer(name, arg string, bits int) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, bits)
	if err != nil {
		return 0, NewCLIError("bad %s %q: expecting an integer", name, arg)
	}
	return n, nil
}

func float(name, arg string) (float64, error) {
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, NewCLIError("bad %s %q: expecting a number", name, arg)
	}
	return f, nil
}

func boolean(name, arg string) (bool, error) {
	if arg == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(arg)
	if err != nil {
		return false, NewCLIError("bad %s %q: expecting true or false", name, arg)
	}
	return b, nil
}

// timestamp parses an optional RFC 3339 time.
func timestamp(name, arg string) (time.Time, error) {
	if arg == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, arg)
	if err != nil {
		return time.Time{}, NewCLIError("bad %s %q: %s", name, arg, err)
	}
	return t, nil
}

// readPayload reads a secret payload: "@path" reads a file, "@-" reads
// stdin, anything else is the payload itself.
func readPayload(arg string) ([]byte, error) {
	path, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return []byte(arg), nil
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Fmt("reading payload: %w", err)
	}
	return data, nil
}
