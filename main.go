package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/TFMV/mindgraph/render"
	"github.com/TFMV/mindgraph/session"
)

// Configuration represents all the settings for the application
type Configuration struct {
	InputFile     string
	OutputFile    string
	Format        string
	Sheet         int
	Width         float64
	Height        float64
	DebugMode     bool
	MaxIterations int
}

func main() {
	// Create a context that can be canceled on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	config := parseConfig()

	level := slog.LevelInfo
	if config.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	sess, err := loadSession(config, logger)
	if err != nil {
		logger.Error("failed to load input", "file", config.InputFile, "error", err)
		os.Exit(1)
	}

	if err := settle(ctx, sess, config); err != nil {
		logger.Error("simulation aborted", "error", err)
		os.Exit(1)
	}

	if err := renderOutput(sess, config); err != nil {
		logger.Error("rendering failed", "error", err)
		os.Exit(1)
	}
	logger.Info("output written", "file", config.OutputFile, "format", config.Format)
}

// parseConfig parses command-line flags and returns a Configuration object
func parseConfig() *Configuration {
	config := &Configuration{}

	flag.StringVar(&config.InputFile, "input", "", "Path to a saved sheet file (JSON)")
	flag.StringVar(&config.OutputFile, "output", "", "Path to output file (defaults to 'output.[format]')")
	flag.StringVar(&config.Format, "format", "svg", "Output format: svg, dot, json")
	flag.IntVar(&config.Sheet, "sheet", 0, "Index of the sheet to render")
	flag.Float64Var(&config.Width, "width", 800.0, "Width of the output")
	flag.Float64Var(&config.Height, "height", 600.0, "Height of the output")
	flag.BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")
	flag.IntVar(&config.MaxIterations, "iterations", 2000, "Maximum simulation ticks before rendering")

	flag.Parse()

	if config.InputFile == "" {
		fmt.Println("Please provide a saved sheet file using -input flag")
		flag.Usage()
		os.Exit(1)
	}
	if ext := strings.ToLower(filepath.Ext(config.InputFile)); ext != ".json" {
		fmt.Printf("Unsupported input file type: %s\n", ext)
		os.Exit(1)
	}
	if config.OutputFile == "" {
		config.OutputFile = "output." + config.Format
	}
	return config
}

// loadSession reads and validates the saved session file.
func loadSession(config *Configuration, logger *slog.Logger) (*session.Session, error) {
	f, err := os.Open(config.InputFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sess := session.New(session.WithLogger(logger))
	if err := sess.Load(f); err != nil {
		return nil, err
	}
	if config.Sheet < 0 || config.Sheet >= len(sess.Tabs()) {
		return nil, fmt.Errorf("file has %d sheets, no index %d", len(sess.Tabs()), config.Sheet)
	}
	if err := sess.Select(config.Sheet); err != nil {
		return nil, err
	}
	return sess, nil
}

// settle runs the simulation until it suspends or the tick budget runs out.
func settle(ctx context.Context, sess *session.Session, config *Configuration) error {
	eng := sess.Active().Engine
	for i := 0; i < config.MaxIterations && !eng.Settled(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			eng.Tick()
		}
	}
	if !eng.Settled() {
		slog.Warn("layout did not fully settle", "ticks", config.MaxIterations, "kinetic_energy", eng.KineticEnergy())
	}
	return nil
}

// renderOutput renders the active sheet and writes it to the output file.
func renderOutput(sess *session.Session, config *Configuration) error {
	renderer, err := render.GetRenderer(config.Format)
	if err != nil {
		return err
	}
	options := render.NewDefaultOptions(config.Format)
	options.Width = config.Width
	options.Height = config.Height

	eng := sess.Active().Engine
	output, err := renderer.Render(eng.Snapshot(), eng.EdgeStates(), options)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}
	if err := os.WriteFile(config.OutputFile, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
