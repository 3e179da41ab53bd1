package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/bnema/pnr-status-cli/internal/adapters/permission"
	"github.com/bnema/pnr-status-cli/internal/adapters/render/plain"
	statusadapter "github.com/bnema/pnr-status-cli/internal/adapters/render/status"
	"github.com/bnema/pnr-status-cli/internal/application"
	"github.com/bnema/pnr-status-cli/internal/eventloop"
	"github.com/bnema/pnr-status-cli/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

type watchOptions struct {
	initial         string
	plain           bool
	fromMessage     bool
	duration        time.Duration
	refreshInterval time.Duration
	waitTimeout     time.Duration
}

func newWatchCmd(app *app) *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [pnr]",
		Short: "Follow a PNR live, optionally reading it from an inbound message",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.initial = args[0]
			}
			if !cmd.Flags().Changed("refresh-interval") {
				opts.refreshInterval = app.cfg.RefreshInterval
			}
			if !cmd.Flags().Changed("wait-timeout") {
				opts.waitTimeout = app.cfg.WaitTimeout
			}
			if opts.refreshInterval <= 0 || opts.waitTimeout <= 0 {
				return errors.New("refresh interval and wait timeout must be positive")
			}
			return runWatch(cmd, app, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Print line output instead of the interactive view")
	cmd.Flags().BoolVar(&opts.fromMessage, "from-message", false, "Start by waiting for a message that carries the PNR")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.refreshInterval, "refresh-interval", 0, "Override refresh.interval")
	cmd.Flags().DurationVar(&opts.waitTimeout, "wait-timeout", 0, "Override wait.timeout")

	return cmd
}

func runWatch(cmd *cobra.Command, app *app, opts watchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if !opts.plain && !isTerminal(cmd.OutOrStdout()) {
		opts.plain = true
	}

	logger := app.logger
	if !opts.plain {
		quiet, err := logging.New(logging.Config{Level: app.cfg.LogLevel, File: app.cfg.LogFile, Quiet: true})
		if err != nil {
			return err
		}
		logger = quiet
	}

	source, closeSource, err := app.messageSource()
	if err != nil {
		return err
	}
	defer closeSource()

	gate, err := permission.New(permission.Mode(app.cfg.PermissionMode), cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	metrics, stopMetrics, err := app.metrics(logger)
	if err != nil {
		return fmt.Errorf("wire metrics: %w", err)
	}
	defer stopMetrics()

	loop := eventloop.New()
	deps := application.Dependencies{
		Provider:   app.provider,
		Source:     source,
		Gate:       gate,
		Dispatcher: loop,
		Metrics:    metrics,
		Logger:     logger,
	}
	trackerOpts := application.Options{RefreshInterval: opts.refreshInterval, WaitTimeout: opts.waitTimeout}

	if opts.plain {
		deps.Presenter = plain.NewPresenter(cmd.OutOrStdout())
		return runPlainWatch(ctx, application.NewTracker(deps, trackerOpts), loop, opts)
	}

	presenter := statusadapter.NewProgramPresenter()
	deps.Presenter = presenter
	return runInteractiveWatch(ctx, cmd, application.NewTracker(deps, trackerOpts), loop, presenter, opts)
}

func startTracker(ctx context.Context, tracker *application.Tracker, opts watchOptions) error {
	if err := tracker.Start(ctx); err != nil {
		return err
	}
	if opts.initial != "" {
		tracker.Submit(opts.initial)
	}
	if opts.fromMessage {
		tracker.RequestMessageWait()
	}
	return nil
}

func runPlainWatch(ctx context.Context, tracker *application.Tracker, loop *eventloop.Loop, opts watchOptions) error {
	var g errgroup.Group
	g.Go(func() error { return loop.Run(context.Background()) })

	err := startTracker(ctx, tracker, opts)
	if err == nil {
		<-ctx.Done()
	}

	tracker.Close()
	loop.Close()
	if loopErr := g.Wait(); loopErr != nil {
		return loopErr
	}
	return ignoreCancel(err)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func runInteractiveWatch(ctx context.Context, cmd *cobra.Command, tracker *application.Tracker, loop *eventloop.Loop, presenter *statusadapter.ProgramPresenter, opts watchOptions) error {
	if err := startTracker(ctx, tracker, opts); err != nil {
		loop.Close()
		return ignoreCancel(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(
		statusadapter.NewWatchModel(tracker, opts.initial),
		tea.WithContext(runCtx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	presenter.Bind(program)

	var g errgroup.Group
	g.Go(func() error { return loop.Run(context.Background()) })

	_, runErr := program.Run()
	// Unblocks any Send still waiting on the finished program.
	cancel()

	tracker.Close()
	loop.Close()
	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run watch view: %w", runErr)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
