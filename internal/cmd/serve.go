package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/chrome-mcp/internal/devtools"
	"github.com/tomasbasham/chrome-mcp/internal/respond"
	"github.com/tomasbasham/chrome-mcp/internal/server"
	"github.com/tomasbasham/chrome-mcp/internal/tools"
)

// ServeOptions defines the options for the `serve` command.
type ServeOptions struct {
	LegacyTools   bool
	ResponseLimit int
	CDPTimeout    time.Duration

	iooption.IOStreams
}

var (
	serveLong = templates.LongDesc(`
		Start the MCP server on stdin/stdout. Standard error carries logs;
		standard output is reserved for the JSON-RPC stream.`)

	serveExample = templates.Examples(`
		# Serve the smart tool set
		chrome-mcp serve

		# Serve the legacy per-verb tool set
		chrome-mcp serve --legacy-tools`)
)

// NewServeOptions provides an initialised ServeOptions instance.
func NewServeOptions(streams iooption.IOStreams) *ServeOptions {
	return &ServeOptions{
		IOStreams: streams,
	}
}

// NewServeCommand creates the `serve` command.
func NewServeCommand(o *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve MCP tools over stdio",
		Long:    serveLong,
		Example: serveExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run()
		},
	}

	cmd.Flags().BoolVar(&o.LegacyTools, "legacy-tools", false, "Serve the granular legacy tool set instead of the smart set")
	cmd.Flags().IntVar(&o.ResponseLimit, "response-limit", respond.DefaultLimit, "Maximum tool response size in characters")
	cmd.Flags().DurationVar(&o.CDPTimeout, "cdp-timeout", devtools.DefaultCDPTimeout, "Timeout for individual CDP commands")

	return cmd
}

// Complete folds environment toggles into the options; explicit flags win.
func (o *ServeOptions) Complete(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("legacy-tools") && truthyEnv("USE_LEGACY_TOOLS") {
		o.LegacyTools = true
	}
	return nil
}

func (o *ServeOptions) Validate() error {
	return nil
}

func (o *ServeOptions) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger(o.ErrOut)

	manager := devtools.NewManager(log)
	manager.SetCDPTimeout(o.CDPTimeout)
	defer manager.Shutdown()

	registry, err := tools.NewRegistry(manager, log, o.LegacyTools, o.ResponseLimit)
	if err != nil {
		return err
	}

	set := "smart"
	if o.LegacyTools {
		set = "legacy"
	}
	log.Info().Str("toolset", set).Int("tools", len(registry.Tools())).Msg("starting chrome-mcp")

	srv := server.New(registry, log, "chrome-mcp", serverVersion())
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newLogger builds the stderr logger. DEBUG (truthy) selects debug level.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if truthyEnv("DEBUG") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}).
		Level(level).
		With().Timestamp().Logger()
}

func truthyEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true"
}
