// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/visa-provisioning/udjson/pkg/loader"
)

// stdinArg stands in for a positional "-" while urfave/cli parses the
// command line. The parser treats a bare "-" as the last argument and
// discards everything after it.
const stdinArg = "\x00" + loader.StdinURI

// shieldStdinArgs replaces positional "-" arguments with stdinArg. A "-"
// that is the value of a preceding flag is left alone.
func shieldStdinArgs(root *cli.Command, args []string) []string {
	boolFlags := boolFlagNames(root)
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		if out[i] == "--" {
			break
		}
		if out[i] != loader.StdinURI || takesValue(out[i-1], boolFlags) {
			continue
		}
		out[i] = stdinArg
	}
	return out
}

// takesValue reports whether arg is a flag that consumes the next argument.
func takesValue(arg string, boolFlags map[string]bool) bool {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" || strings.Contains(arg, "=") {
		return false
	}
	return !boolFlags[strings.TrimLeft(arg, "-")]
}

func boolFlagNames(root *cli.Command) map[string]bool {
	names := map[string]bool{}
	for _, f := range []cli.Flag{cli.HelpFlag, cli.VersionFlag} {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	var walk func(c *cli.Command)
	walk = func(c *cli.Command) {
		for _, f := range c.Flags {
			if _, ok := f.(*cli.BoolFlag); !ok {
				continue
			}
			for _, n := range f.Names() {
				names[n] = true
			}
		}
		for _, sub := range c.Commands {
			walk(sub)
		}
	}
	walk(root)
	return names
}

// positionalArgs returns the command's positional arguments with stdin
// placeholders restored to "-".
func positionalArgs(cmd *cli.Command) []string {
	args := cmd.Args().Slice()
	for i, a := range args {
		if a == stdinArg {
			args[i] = loader.StdinURI
		}
	}
	return args
}
