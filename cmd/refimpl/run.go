package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	wgrpc "github.com/lovromazgon/refimpl/grpc"
	"github.com/lovromazgon/refimpl/harness"
	"github.com/lovromazgon/refimpl/reference"
	"github.com/lovromazgon/refimpl/sdk"
	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"golang.org/x/sync/errgroup"
)

type runFlags struct {
	cases   string
	plugin  string
	timeout time.Duration
	delay   time.Duration
}

func newRunCommand(root *rootFlags) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cases against the local provider or a Wasm plugin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.newLogger()
			if err != nil {
				return err
			}

			cases := harness.DefaultCases()
			if flags.cases != "" {
				if cases, err = harness.LoadCases(flags.cases); err != nil {
					return err
				}
			}

			failed, err := run(cmd.Context(), logger, flags, cases, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if failed > 0 {
				return errCasesFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.cases, "cases", "", "YAML file with the cases to run (default: built-in cases)")
	cmd.Flags().StringVar(&flags.plugin, "plugin", "", "Wasm plugin serving the provider (default: local provider)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 2*time.Second, "how long to wait for a callback")
	cmd.Flags().DurationVar(&flags.delay, "delay", reference.DefaultDelay, "delay of the local mock platform")
	return cmd
}

func newCasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "Print the built-in cases as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := harness.MarshalCases(harness.DefaultCases())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// run starts the loop, runs the cases on a separate goroutine and closes the
// loop once the report is written. It returns the number of failed cases.
func run(ctx context.Context, logger *slog.Logger, flags runFlags, cases []harness.Case, out io.Writer) (int, error) {
	loop := reference.NewLoop(reference.WithLogger(logger))
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(ctx)
	})

	var failed int
	g.Go(func() error {
		defer loop.Close()

		provider, closeProvider, err := newProvider(ctx, logger, loop, flags)
		if err != nil {
			return err
		}
		defer closeProvider()

		results := harness.NewRunner(
			harness.WithLogger(logger),
			harness.WithTimeout(flags.timeout),
		).Run(ctx, provider, cases)

		failed, err = harness.Report(out, results)
		return err
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return failed, nil
}

func newProvider(ctx context.Context, logger *slog.Logger, loop *reference.Loop, flags runFlags) (reference.Provider, func(), error) {
	if flags.plugin == "" {
		logger.InfoContext(ctx, "using local provider", "delay", flags.delay)
		m := reference.NewManager(loop,
			reference.WithLogger(logger),
			reference.WithPlatform(reference.NewMockPlatform(flags.delay)),
		)
		return m, func() {}, nil
	}

	source, err := os.ReadFile(flags.plugin)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Wasm file %q: %w", flags.plugin, err)
	}

	// Create a Wasm runtime, set up WASI.
	r := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	_, remote, err := sdk.InitializeModuleAndRefImpl(ctx, r, source, loop, logger, wgrpc.WithLogger(logger))
	if err != nil {
		_ = r.Close(ctx)
		return nil, nil, err
	}
	logger.InfoContext(ctx, "using plugin provider", "path", flags.plugin)

	// Closing the runtime closes the module as well.
	return remote, func() {
		if err := r.Close(context.Background()); err != nil {
			logger.WarnContext(ctx, "failed to close Wasm runtime", "error", err)
		}
	}, nil
}
