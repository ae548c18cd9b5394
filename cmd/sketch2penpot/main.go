package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuanying/sketch2penpot/internal/bridge"
	"github.com/yuanying/sketch2penpot/internal/config"
	"github.com/yuanying/sketch2penpot/internal/converter"
	"github.com/yuanying/sketch2penpot/internal/export"
	"github.com/yuanying/sketch2penpot/internal/memhost"
	"github.com/yuanying/sketch2penpot/internal/plugin"
	"github.com/yuanying/sketch2penpot/internal/sketch"
)

const shutdownTimeout = 10 * time.Second

type cliOptions struct {
	InputPath  string
	OutputPath string
	Format     export.Format
	Config     *config.Config
	Convert    converter.ConvertOptions
	Preview    export.PreviewOptions
	Logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sketch2penpot",
		Short:         "Import Sketch documents into a Penpot-style shape tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newImportCmd(), newServeCmd())
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <input>",
		Short: "Import a .sketch file or document JSON and write the result",
		Long: `import translates the layer tree of a Sketch document into
native design shapes: pages, rectangles, ellipses, text, groups and boards.

The input is either a .sketch archive or the parsed document JSON that the
plugin UI sends. The resulting document is written as JSON, msgpack, an
HTML inspection page or a PNG preview of the first page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: input with the format's extension)")
	cmd.Flags().String("format", string(export.FormatJSON), "Output format: json, msgpack, html or png")
	cmd.Flags().Bool("full-gradients", false, "Keep every gradient stop instead of the first stop's color")
	addCommonFlags(cmd)
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plugin message bridge over HTTP and WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := readCommonOptions(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	addCommonFlags(cmd)
	return cmd
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to a YAML configuration file")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error (default from config, info)")
	cmd.Flags().String("log-format", "text", "Log format: text or json")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
}

func readCommonOptions(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		if _, err := config.ParseLevel(level); err != nil {
			return nil, nil, fmt.Errorf("invalid --log-level %q (want debug, info, warn or error)", level)
		}
		cfg.LogLevel = level
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}

	logFormat, _ := cmd.Flags().GetString("log-format")
	switch strings.ToLower(logFormat) {
	case "text", "json":
	default:
		return nil, nil, fmt.Errorf("invalid --log-format %q (want text or json)", logFormat)
	}

	return cfg, buildLogger(os.Stderr, cfg.Level(), logFormat), nil
}

func readCLIOptions(cmd *cobra.Command, args []string) (*cliOptions, error) {
	cfg, logger, err := readCommonOptions(cmd)
	if err != nil {
		return nil, err
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return nil, fmt.Errorf("invalid --format: %w", err)
	}

	fullGradients := cfg.Import.FullGradients
	if cmd.Flags().Changed("full-gradients") {
		fullGradients, _ = cmd.Flags().GetBool("full-gradients")
	}

	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, format.Extension())
	}

	return &cliOptions{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Format:     format,
		Config:     cfg,
		Convert: converter.ConvertOptions{
			FullGradients: fullGradients,
			Logger:        logger,
		},
		Preview: export.PreviewOptions{
			MaxSize:    cfg.Preview.MaxSize,
			Background: cfg.Preview.Background,
		},
		Logger: logger,
	}, nil
}

func buildLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// defaultOutputPath replaces the input extension with ext. A missing leading
// dot is added.
func defaultOutputPath(inputPath, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ext
}

// loadDocument reads a .sketch archive or a parsed document JSON file.
func loadDocument(path string) (*sketch.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".sketch") {
		archive, err := sketch.OpenArchive(path)
		if err != nil {
			return nil, err
		}
		defer archive.Close()
		return archive.Document()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return sketch.DecodeDocument(data)
}

func runImport(ctx context.Context, opts *cliOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	logger.Info("importing", "input", opts.InputPath, "output", opts.OutputPath, "format", opts.Format)

	doc, err := loadDocument(opts.InputPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.InputPath, err)
	}

	var importErr error
	host := memhost.New(memhost.Options{})
	ui := plugin.SenderFunc(func(msg plugin.Message) error {
		switch msg.Type {
		case plugin.TypeImportProgress:
			p, err := plugin.DecodeData[plugin.Progress](msg)
			if err != nil {
				return err
			}
			logger.Info("progress", "percent", p.Progress, "message", p.Message)
		case plugin.TypeImportError:
			f, err := plugin.DecodeData[plugin.Failure](msg)
			if err != nil {
				return err
			}
			importErr = errors.New(f.Error)
		}
		return nil
	})

	// The CLI has no UI to animate, so the finalize pause is skipped.
	opts.Convert.FinalizeDelay = 0
	p := plugin.New(host, ui, opts.Convert)
	if err := p.Import(ctx, doc); err != nil {
		return err
	}
	if importErr != nil {
		return fmt.Errorf("import failed: %w", importErr)
	}

	if report := p.LastReport(); report != nil {
		created, skipped := report.Tally()
		for _, page := range report.Pages {
			if page.Err != nil {
				logger.Warn("page not imported", "page", page.Name, "error", page.Err)
			}
		}
		logger.Info("imported", "pages", len(report.Pages), "shapes", created, "skipped", skipped)
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := export.Write(out, host.Snapshot(), opts.Format, opts.Preview); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", opts.Format, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	logger.Info("done", "output", opts.OutputPath)
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := bridge.New(memhost.New(memhost.Options{}), bridge.Options{
		Addr:        cfg.Server.Addr,
		ReadTimeout: cfg.Server.ReadTimeout,
		Convert: converter.ConvertOptions{
			FullGradients: cfg.Import.FullGradients,
			FinalizeDelay: cfg.Import.FinalizeDelay,
			Logger:        logger,
		},
		Preview: export.PreviewOptions{
			MaxSize:    cfg.Preview.MaxSize,
			Background: cfg.Preview.Background,
		},
		Logger: logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
