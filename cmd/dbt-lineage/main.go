// Package main provides the dbt-lineage extraction tool.
//
// It parses the artifacts of one dbt invocation (manifest, run results,
// optional catalog, connection profiles) and emits OpenLineage lifecycle
// events describing what data was read, written, and validated.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/correlator-io/dbt-lineage/internal/config"
	"github.com/correlator-io/dbt-lineage/internal/dbt"
	"github.com/correlator-io/dbt-lineage/internal/emitter"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "dbt-lineage"
)

const defaultProducer = "https://github.com/correlator-io/dbt-lineage/tree/" + version

var errUnknownTransport = errors.New("unknown transport")

func main() {
	// Load .env file if it exists, before flag defaults read the environment
	_ = godotenv.Load()

	versionFlag := flag.Bool("version", false, "show version information")
	projectDir := flag.String("project-dir", ".", "dbt project directory")
	profileName := flag.String("profile", "", "profiles.yml entry (default: the project's declared profile)")
	target := flag.String("target", "", "profile output target (default: the profile's declared target)")
	producer := flag.String("producer", defaultProducer, "producer URI stamped on emitted events")
	transportName := flag.String("transport", "console", "event transport: console, http, or kafka")
	skipErrors := flag.Bool("skip-errors", config.GetEnvBool("DBT_LINEAGE_SKIP_ERRORS", false),
		"drop runs that fail to translate instead of aborting (default from DBT_LINEAGE_SKIP_ERRORS)")
	strict := flag.Bool("strict", config.GetEnvBool("DBT_LINEAGE_STRICT", false),
		"validate artifact structure against embedded JSON schemas (default from DBT_LINEAGE_STRICT)")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting dbt artifact extraction",
		slog.String("service", name),
		slog.String("version", version),
		slog.String("project_dir", *projectDir),
		slog.String("transport", *transportName),
		slog.Bool("skip_errors", *skipErrors),
		slog.Bool("strict", *strict),
	)

	processor := dbt.NewProcessor(dbt.Config{
		Producer:        *producer,
		ProjectDir:      *projectDir,
		ProfileName:     *profileName,
		Target:          *target,
		SkipBadRuns:     *skipErrors,
		StrictArtifacts: *strict,
	})

	events, err := processor.Parse()
	if err != nil {
		logger.Error("Failed to parse dbt artifacts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Parsed dbt artifacts",
		slog.Int("starts", len(events.Starts)),
		slog.Int("completes", len(events.Completes)),
		slog.Int("fails", len(events.Fails)),
	)

	transport, err := newTransport(*transportName)
	if err != nil {
		logger.Error("Failed to create transport", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := transport.Emit(context.Background(), events.All()); err != nil {
		logger.Error("Failed to emit events", slog.String("error", err.Error()))

		_ = transport.Close()

		os.Exit(1)
	}

	if err := transport.Close(); err != nil {
		logger.Error("Failed to close transport", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Emitted lineage events", slog.Int("count", len(events.All())))
}

// newTransport selects the event transport by name.
func newTransport(transportName string) (emitter.Transport, error) {
	cfg := emitter.LoadConfig()

	switch transportName {
	case "console":
		return emitter.NewConsoleTransport(os.Stdout), nil
	case "http":
		return emitter.NewHTTPTransport(cfg), nil
	case "kafka":
		return emitter.NewKafkaTransport(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: console, http, kafka)", errUnknownTransport, transportName)
	}
}
