package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"lfcli/internal/config"
	"lfcli/internal/exporter"
	"lfcli/internal/infrastructure"
	"lfcli/internal/littlefield"
	"lfcli/internal/pipeline"
)

const timestampFormat = "2006-01-02 15:04:05"

func main() {
	var logger *slog.Logger
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC RECOVERED: %v\n%s\n", r, debug.Stack())
			if logger != nil {
				logger.Error("scraper panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
			os.Exit(1)
		}
	}()

	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	teamID, password := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err = infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	logger = logger.With(slog.String("run_id", uuid.NewString()))

	ctx := context.Background()
	tp, err := infrastructure.InitializeTracing(cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", slog.String("error", err.Error()))
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	fmt.Printf("Execution started at %s\n", time.Now().Format(timestampFormat))
	logger.Info("littlefield scraper starting",
		slog.String("team", teamID),
		slog.String("output_file", cfg.Export.OutputFile))

	if err := run(ctx, cfg, teamID, password, logger); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Data successfully written to '%s'.\n", cfg.Export.OutputFile)
	fmt.Printf("Execution finished at %s\n", time.Now().Format(timestampFormat))
}

// run executes the whole pipeline: login, collect every plot series, write
// the workbook. Any error is fatal and leaves no output artifact behind.
func run(ctx context.Context, cfg *config.Config, teamID, password string, logger *slog.Logger) error {
	client, err := littlefield.NewClient(cfg.Littlefield, logger)
	if err != nil {
		return err
	}
	if err := client.Login(ctx, teamID, password); err != nil {
		return err
	}

	rows, err := pipeline.Collect(ctx, client, logger)
	if err != nil {
		return err
	}
	logger.Info("dataset assembled", slog.Int("rows", len(rows)))

	if err := exporter.NewWorkbook(cfg.Export.SheetName).Write(cfg.Export.OutputFile, rows); err != nil {
		return err
	}
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <team-id> <password>\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "Logs in to the Littlefield simulation, scrapes every plot series and writes the merged dataset to an Excel workbook.")
}
