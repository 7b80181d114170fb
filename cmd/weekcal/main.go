// Package main provides the CLI entrypoint for weekcal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"weekcal/internal/capture"
	"weekcal/internal/config"
	"weekcal/internal/cycle"
	"weekcal/internal/grid"
	appLog "weekcal/internal/log"
	"weekcal/internal/provider"
	"weekcal/internal/termview"
	"weekcal/internal/web"
)

const version = "0.1.0"

var (
	configPath string
	envFile    string
	logLevel   string

	serveListen string

	renderWidth int
	renderPlain bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "weekcal",
		Short:             "Weekly calendar grid for Home Assistant and ICS feeds",
		SilenceUsage:      true,
		PersistentPreRunE: loadEnv,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/weekcal/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file with WEEKCAL_* variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides server.log_level)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newValidateCmd())

	return rootCmd
}

// loadEnv reads envFile into the process environment. A missing file is
// not an error; variables already set win.
func loadEnv(_ *cobra.Command, _ []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll calendars and serve the grid over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides server.listen)")
	return cmd
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch once and print the grid to the terminal",
		Args:  cobra.NoArgs,
		RunE:  runRenderCmd,
	}
	cmd.Flags().IntVar(&renderWidth, "width", termview.DefaultCellWidth, "width of one day column")
	cmd.Flags().BoolVar(&renderPlain, "plain", false, "disable colors and styling")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and exit",
		Args:  cobra.NoArgs,
		RunE:  runValidateCmd,
	}
}

// app is everything a command needs after the config is loaded.
type app struct {
	file   *config.File
	pub    *grid.Publisher
	poller *cycle.Poller
}

func setup() (*app, error) {
	file, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	srv := file.Server
	srv.ApplyEnv()
	if serveListen != "" {
		srv.Listen = serveListen
	}

	level := srv.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	loc, err := srv.Location()
	if err != nil {
		appLog.Warn("falling back to local timezone", "timezone", srv.Timezone, "error", err.Error())
	}

	schedule, err := cycle.NewSchedule(srv.Refresh, file.Grid.UpdateInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule: %w", err)
	}

	fetcher := &provider.Router{
		HomeAssistant: provider.NewHomeAssistant(srv.HomeAssistant.URL, srv.HomeAssistant.Token),
		ICS:           provider.NewICS(srv.CacheDir),
	}
	pub := grid.NewPublisher()

	appLog.Info("effective config",
		"config_path", configPath,
		"listen", srv.Listen,
		"timezone", loc.String(),
		"refresh", srv.Refresh,
		"update_interval", file.Grid.UpdateInterval,
		"weeks", file.Grid.NumberOfWeeks,
		"calendars", len(file.Grid.Calendars),
		"preview", srv.Preview.Enabled,
	)

	return &app{
		file:   file,
		pub:    pub,
		poller: cycle.NewPoller(file.Grid, fetcher, pub, loc, schedule),
	}, nil
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	appLog.Info("weekcal starting", "version", version)

	a, err := setup()
	if err != nil {
		return err
	}

	// SIGINT/SIGTERM 수신 시 루트 컨텍스트를 취소한다.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := a.file.Server
	server := web.NewServer(srv, a.file.Grid, a.pub)

	if srv.Preview.Enabled {
		previewer := capture.NewPreviewer(previewOptions(srv))
		unsubscribe := a.pub.Subscribe(func(grid.Snapshot) {
			previewer.Trigger(ctx)
		})
		defer func() {
			unsubscribe()
			previewer.Wait()
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx)
	})
	g.Go(func() error {
		return a.poller.Run(gctx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("weekcal stopped", err)
		return err
	}
	appLog.Info("weekcal exiting")
	return nil
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 실패해도 오류 줄과 함께 그리드를 출력한다.
	cycleErr := a.poller.RunOnce(ctx)
	out := termview.Render(a.file.Grid, a.pub.Snapshot(), termview.Options{
		CellWidth: renderWidth,
		Plain:     renderPlain,
	})
	fmt.Fprint(cmd.OutOrStdout(), out)
	return cycleErr
}

func runValidateCmd(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	file, err := config.ParseFile(data)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid config: %w", verr)
		}
		return err
	}
	if _, err := cycle.NewSchedule(file.Server.Refresh, file.Grid.UpdateInterval); err != nil {
		return fmt.Errorf("invalid refresh schedule: %w", err)
	}
	if _, err := file.Server.Location(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d calendars, %d weeks)\n",
		configPath, len(file.Grid.Calendars), file.Grid.NumberOfWeeks)
	return nil
}

// previewOptions points the headless browser at our own /calendar page.
func previewOptions(srv *config.Server) capture.Options {
	opts := capture.Options{
		URL:        previewURL(srv.Listen),
		OutputPath: srv.Preview.Output,
		Width:      srv.Preview.Width,
		Height:     srv.Preview.Height,
	}
	if srv.BasicAuth != nil {
		opts.Username = srv.BasicAuth.Username
		opts.Password = srv.BasicAuth.Password
	}
	return opts
}

// previewURL turns a listen address into a URL the local browser can
// reach. Wildcard hosts become loopback.
func previewURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen + "/calendar"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/calendar"
}
