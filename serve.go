package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/launchdarkly/speccheck/sampleapp"
)

const shutdownTimeout = time.Second * 5

func newServeCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sample application as an HTTP service",
		Long: `Run the sample application as an HTTP service, so that it can be tested with --url.
A DELETE request to / stops the service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), v, out)
		},
	}
	cmd.Flags().Int("port", defaultPort, "port to listen on")
	bindFlagToConfig(v, cmd.Flags().Lookup("port"), portKey)
	return cmd
}

func serve(ctx context.Context, v *viper.Viper, out io.Writer) error {
	logger := configureLogger(v, true)
	app := sampleapp.NewApp(sampleapp.NewStore(), logger)

	stopRequested := make(chan struct{})
	var stopOnce sync.Once
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.ServeHTTP(w, r)
		if r.Method == http.MethodDelete && r.URL.Path == "/" {
			stopOnce.Do(func() { close(stopRequested) })
		}
	})

	addr := fmt.Sprintf(":%d", v.GetInt(portKey))
	server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: time.Second * 10}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	fmt.Fprintf(out, "Sample application listening on %s\n", addr)
	logger.Info("listening", "addr", addr)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-stopRequested:
		fmt.Fprintln(out, "Stop requested")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
