// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package command implements the memo command line.
package command

import (
	"sort"

	"github.com/urfave/cli/v3"
)

// InitApp builds the root command.
func InitApp() *cli.Command {
	app := &cli.Command{
		Name:  "memo",
		Usage: "exercise memoized fetch functions",
	}

	app.Commands = append(app.Commands,
		ReplayCommandBuilder(),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
