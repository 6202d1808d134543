package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"

	"github.com/mosaicxc/relayer/cmd/mosaicxc/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.NewLogger(os.Stderr)
	rootCmd := cmd.NewRootCmd(logger)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		//nolint:errcheck // we are already exiting the app so we don't check error.
		fmt.Fprintln(rootCmd.OutOrStderr(), err)

		var argErr *cmd.ArgError
		if errors.As(err, &argErr) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
