package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const rootLongDescription = `speccheck runs a suite of nested, declarative specs against a web application.

Without --url it tests the built-in sample application in the same process. With --url it
tests a running service that implements the same routes, such as one started with
"speccheck serve".`

func main() {
	v, err := newConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = newRootCmd(v, os.Stdout, os.Args[0]).ExecuteContext(ctx)
	if err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper, out io.Writer, program string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "speccheck",
		Short:         "Run the bundled specs against a web application",
		Long:          rootLongDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := readParams(v)
			if err != nil {
				return err
			}
			logger := configureLogger(v, params.debugAll)
			return runTests(params, logger, out, program)
		},
	}
	cmd.SetOut(out)
	configureRunFlags(cmd, v)
	cmd.AddCommand(newServeCmd(v, out))
	return cmd
}
