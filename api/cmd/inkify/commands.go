package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inkify/api/internal/app"
	"inkify/api/internal/config"
	"inkify/api/internal/handle"
	"inkify/api/internal/httpserver"
	"inkify/api/internal/logging"
	"inkify/api/internal/score"
)

type cli struct {
	cfg *config.Config
	log *zap.Logger

	top       int
	purgeTick time.Duration
	retention time.Duration
}

func newCLI() *cli { return &cli{} }

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "inkify",
		Short:        "Render source code to SVG or HTML images",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.Env)
			if err != nil {
				return err
			}
			c.cfg, c.log = cfg, log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.AddCommand(c.serveCommand(), c.detectCommand(), c.languagesCommand(), c.themesCommand())
	return root
}

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Build(ctx, c.cfg, c.log)
			if err != nil {
				return err
			}
			defer a.Close()

			go a.RunJanitor(ctx, c.purgeTick, c.retention)
			h := handle.New(a.Svc, a.Tracker, c.log)
			return httpserver.Run(ctx, c.cfg.Addr(), h.Routes(), c.log)
		},
	}
	cmd.Flags().DurationVar(&c.purgeTick, "purge-every", time.Hour, "How often stored events are purged (0 disables)")
	cmd.Flags().DurationVar(&c.retention, "retention", 30*24*time.Hour, "Age after which stored events are purged")
	return cmd
}

func (c *cli) detectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Rank the likely languages of a file (stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			a, err := app.Build(cmd.Context(), c.cfg, c.log)
			if err != nil {
				return err
			}
			defer a.Close()

			ranked, err := a.Svc.Detect(cmd.Context(), code)
			if err != nil {
				return err
			}
			printRanking(cmd.OutOrStdout(), score.Top(ranked, c.top))
			return nil
		},
	}
	cmd.Flags().IntVarP(&c.top, "top", "n", 10, "Number of languages to print (0 prints all)")
	return cmd
}

func (c *cli) languagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printCatalog(cmd, func(a *app.App) []string { return a.Svc.Languages() })
		},
	}
}

func (c *cli) themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List built-in themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printCatalog(cmd, func(a *app.App) []string { return a.Svc.Themes() })
		},
	}
}

func (c *cli) printCatalog(cmd *cobra.Command, list func(*app.App) []string) error {
	cfg := *c.cfg
	// catalogs never classify or persist
	cfg.Classifier.Name = "none"
	cfg.DatabaseURL = ""
	cfg.UmamiURL = ""
	a, err := app.Build(cmd.Context(), &cfg, c.log)
	if err != nil {
		return err
	}
	defer a.Close()
	for _, name := range list(a) {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func readSource(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read %s: %w", args[0], err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func printRanking(w io.Writer, rs []score.Result) {
	for _, r := range rs {
		fmt.Fprintf(w, "%6.2f  %s\n", r.Score, r.Label)
	}
}
