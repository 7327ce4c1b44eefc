// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// memo replays scripted calls against a memoized fetcher and reports cache
// statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/luxfi/memo/internal/command"
	mylog "github.com/luxfi/memo/internal/log"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := command.InitApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
