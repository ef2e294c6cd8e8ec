package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/danmuck/csmacd/internal/auth"
	"github.com/danmuck/csmacd/internal/config"
	"github.com/danmuck/csmacd/internal/logging"
	"github.com/danmuck/csmacd/internal/observability"
	"github.com/danmuck/csmacd/internal/report"
	"github.com/danmuck/csmacd/internal/simulation"
	"github.com/danmuck/csmacd/internal/trace"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "csmasim: load .env: %v\n", err)
	}
	logging.ConfigureRuntime()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "csmasim: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "csmasim",
		Usage: "simulate CSMA/CD stations contending for one shared medium",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config path (defaults are used when empty)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run one session and print per-station results",
				ArgsUsage: "<stationCount>",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "interframe-gap", Usage: "override the interframe gap"},
					&cli.Int64Flag{Name: "seed", Usage: "seed per-station random sources"},
					&cli.StringFlag{Name: "report", Usage: "export the session to a .json or .yaml file"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress per-event tracing"},
				},
				Action: runAction,
			},
			{
				Name:   "serve",
				Usage:  "serve the HTTP report surface and run sessions on request",
				Action: serveAction,
			},
		},
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	path := strings.TrimSpace(cmd.String("config"))
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	log.Info().Str("path", path).Msg("loaded csmasim config")
	return cfg, nil
}

func runAction(_ context.Context, cmd *cli.Command) error {
	stationCount, err := parseStationCount(cmd.Args().Slice(), runtime.NumCPU())
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("interframe-gap") {
		cfg.Simulation.Station.InterframeGap = cmd.Duration("interframe-gap")
	}
	if cmd.IsSet("seed") {
		cfg.Simulation.Seed = cmd.Int64("seed")
	}

	runner := simulation.NewRunner(simulation.Options{
		Config: cfg.Simulation,
		Tracer: runTracer(cmd.Bool("quiet")),
	})

	res, err := runner.Run(stationCount)
	if err != nil {
		return err
	}
	if err := report.RenderTable(os.Stdout, res); err != nil {
		return err
	}
	if path := strings.TrimSpace(cmd.String("report")); path != "" {
		if err := report.WriteFile(path, res); err != nil {
			return err
		}
		log.Info().Str("path", path).Str("session", res.ID).Msg("session report written")
	}
	return nil
}

// runTracer picks the tracer for a one-shot run. Metrics are left to serve,
// which exposes them.
func runTracer(quiet bool) trace.Tracer {
	if quiet {
		return trace.Nop{}
	}
	return trace.NewLogTracer(log.Logger)
}

func serveAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	observability.InitLogger("csmasim")

	runner := simulation.NewRunner(simulation.Options{
		Config: cfg.Simulation,
		Tracer: trace.Multi{observability.NewMetricsTracer(), trace.NewLogTracer(log.Logger)},
	})
	server := report.NewServer(
		"csmasim",
		cfg.Report.Addr,
		cfg.Report.CorsOrigins,
		runner,
		report.NewStore(cfg.Report.MaxSessions),
		runtime.NumCPU(),
	)
	token := cfg.Report.AuthToken
	if v := strings.TrimSpace(os.Getenv("CSMACD_REPORT_TOKEN")); v != "" {
		token = v
	}
	if token != "" {
		server.Auth = auth.StaticToken{Token: token}
	}
	log.Info().Str("addr", server.Addr).Int("max_stations", server.MaxStations).Bool("auth", server.Auth != nil).Msg("report server started")
	return server.Serve()
}
