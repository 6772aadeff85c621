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

// Package main contains the cloudsamples command line tool.
//
// Each subcommand runs one sample against the AutoML, Transcoder, Secret
// Manager or Spanner API. Run "cloudsamples help" for the list.
package main

import (
	"os"

	"go.chromium.org/luci/auth"

	"go.chromium.org/cloudsamples/cli"
)

func main() {
	params := cli.Params{
		Auth: auth.Options{Scopes: cli.DefaultScopes},
	}
	os.Exit(cli.Main(params, os.Args[1:]))
}
