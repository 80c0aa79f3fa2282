package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/footprint/internal/emission"
	"github.com/zombor/footprint/internal/quality"
	"github.com/zombor/footprint/internal/receipt"
	"github.com/zombor/footprint/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	defaults := quality.DefaultPipeline()

	fs := ff.NewFlagSet("footprint")
	var (
		port             = fs.IntLong("port", 8080, "HTTP server port")
		dbPath           = fs.StringLong("db", "footprint.db", "Database file path")
		storagePath      = fs.StringLong("storage", "./receipts", "Directory for scanned receipt images")
		factorsPath      = fs.StringLong("factors", "", "YAML file overriding or extending emission factors (optional)")
		extractorURL     = fs.StringLong("extractor-url", "", "Receipt text extraction endpoint (optional, enables scanning)")
		extractorTimeout = fs.DurationLong("extractor-timeout", scanning.DefaultExtractorTimeout, "Timeout for a single extraction call")
		maxDimension     = fs.IntLong("max-dimension", receipt.DefaultMaxDimension, "Longest image edge kept before assessment")
		blurRadius       = fs.IntLong("blur-radius", defaults.BlurRadius, "Gaussian blur radius of the enhancement pipeline")
		contrastFactor   = fs.Float64Long("contrast-factor", defaults.ContrastFactor, "Contrast stretch factor of the enhancement pipeline")
		thresholdWindow  = fs.IntLong("threshold-window", defaults.Window, "Adaptive threshold window size")
		logLevel         = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion      = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FOOTPRINT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load emission factors
	table := emission.DefaultTable()
	if *factorsPath != "" {
		slog.Info("Loading emission factors...", "path", *factorsPath)
		var err error
		table, err = loadFactors(table, *factorsPath)
		if err != nil {
			slog.Error("Failed to load emission factors", "error", err)
			os.Exit(1)
		}
	}
	calculator := emission.NewCalculator(table, nil)

	// Initialize database
	slog.Info("Initializing database...")
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize storage
	slog.Info("Initializing storage...", "path", *storagePath)
	storage, err := receipt.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize extractor when configured
	var extractor scanning.Extractor
	if *extractorURL != "" {
		slog.Info("Initializing extractor...", "url", *extractorURL, "timeout", *extractorTimeout)
		httpExtractor, err := scanning.NewHTTPExtractor(*extractorURL, *extractorTimeout)
		if err != nil {
			slog.Error("Failed to initialize extractor", "error", err)
			os.Exit(1)
		}
		defer httpExtractor.Close()
		extractor = httpExtractor
	} else {
		slog.Info("No extractor configured, receipt scanning disabled")
	}

	// Initialize service
	config := receipt.Config{
		Pipeline: quality.Pipeline{
			BlurRadius:     *blurRadius,
			ContrastFactor: *contrastFactor,
			Window:         *thresholdWindow,
		},
		MaxDimension: *maxDimension,
	}
	footprintService := receipt.NewService(db, calculator, extractor, storage, config)

	// Initialize server
	server := receipt.NewServer(footprintService)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"version", version,
		"categories", len(table.Categories()),
	)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

// loadFactors applies the YAML overrides at path on top of base
func loadFactors(base *emission.Table, path string) (*emission.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening factors file: %w", err)
	}
	defer f.Close()

	overrides, err := emission.ParseFactors(f)
	if err != nil {
		return nil, err
	}
	table, err := base.With(overrides)
	if err != nil {
		return nil, fmt.Errorf("applying factor overrides: %w", err)
	}
	return table, nil
}
