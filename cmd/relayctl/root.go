package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"relay/backend/internal/app"
	"relay/backend/internal/config"
	"relay/backend/internal/handler"
	"relay/backend/internal/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "relayctl",
		Short: "Operate a Relay message store from the command line",
		Long: `relayctl stores messages, translates the newest one and runs the HTTP server
using the same configuration as the server (config.yaml and RELAY_* variables).`,
		Version:      config.AppVersion,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newSendCmd(opts),
		newLatestCmd(opts),
		newDetectCmd(),
		newServeCmd(opts),
	)
	return root
}

// withApp loads the configuration and runs fn against a fully wired application.
func (o *rootOptions) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	logger.Init(logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text>...",
		Short: "Store a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				status, payload := handler.ReceivePayload(cmd.Context(), a.Service, []byte(strings.Join(args, " ")))
				return printPayload(cmd.OutOrStdout(), status, payload)
			})
		},
	}
}

func newLatestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Translate the most recent message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				status, payload := handler.ResponsePayload(cmd.Context(), a.Service)
				return printPayload(cmd.OutOrStdout(), status, payload)
			})
		},
	}
}

func newDetectCmd() *cobra.Command {
	var engine string
	var lowAccuracy bool

	cmd := &cobra.Command{
		Use:   "detect <text>...",
		Short: "Print the detected language of text without storing or translating it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if engine != config.DetectLingua && engine != config.DetectKeyword {
				return fmt.Errorf("unknown detect engine %q", engine)
			}
			cfg := config.Default()
			cfg.Detect.Engine = engine
			cfg.Detect.LowAccuracy = lowAccuracy

			code := app.NewPipeline(cfg, nil).Detect(strings.Join(args, " "))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), code)
			return err
		},
	}
	cmd.Flags().StringVar(&engine, "engine", config.DetectLingua, "detector engine: lingua or keyword")
	cmd.Flags().BoolVar(&lowAccuracy, "low-accuracy", false, "use lingua's low accuracy mode")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return opts.withApp(ctx, func(a *app.App) error {
				return a.Serve(ctx)
			})
		},
	}
}

// printPayload writes payload as indented JSON and turns error statuses into a
// command failure.
func printPayload(w io.Writer, status int, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", status)
	}
	return nil
}
