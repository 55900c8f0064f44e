// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command lensctl is the operator command line for Lensfolio.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/taibuivan/lensfolio/internal/cli"
	"github.com/taibuivan/lensfolio/internal/platform/constants"
)

func main() {
	root := cli.NewRootCmd()

	// fang adds styled help, completions and --version.
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(constants.AppVersion),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
