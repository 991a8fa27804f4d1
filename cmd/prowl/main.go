package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prowlsec/prowl/internal/analyze"
	"github.com/prowlsec/prowl/internal/api"
	"github.com/prowlsec/prowl/internal/config"
	"github.com/prowlsec/prowl/internal/engine"
	"github.com/prowlsec/prowl/internal/enum"
	"github.com/prowlsec/prowl/internal/output"
	"github.com/prowlsec/prowl/internal/recon"
	"github.com/prowlsec/prowl/internal/store"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	output.Version = version

	rootCmd := &cobra.Command{
		Use:   "prowl",
		Short: "Automated external reconnaissance",
		Long:  "Domain reconnaissance - subdomain enumeration, liveness, port probing, service identification, web crawling, and technology fingerprinting.",
	}
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("prowl {{.Version}}\n")

	rootCmd.AddCommand(newScanCmd(), newServeCmd(), newShowCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newScanCmd() *cobra.Command {
	var (
		jsonOutput  bool
		workers     int
		dialTimeout time.Duration
		scanTimeout time.Duration
		crawlPages  int
		axfr        bool
		analyzerURL string
		noColor     bool
		silent      bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "scan <domain>",
		Short: "Run a reconnaissance scan against a root domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := strings.ToLower(strings.TrimSpace(args[0]))
			if !api.ValidDomain(domain) {
				return fmt.Errorf("invalid domain %q", domain)
			}

			// Respect NO_COLOR env var.
			if _, ok := os.LookupEnv("NO_COLOR"); ok {
				noColor = true
			}

			showProgress := !jsonOutput && !silent
			progress := output.NewProgress(os.Stderr, verbose, !showProgress)
			if showProgress {
				output.WriteHeader(os.Stderr, noColor)
			}

			userAgent := fmt.Sprintf("prowl/%s (+https://github.com/prowlsec/prowl)", version)

			var analyzer engine.Analyzer = analyze.Heuristic{}
			if analyzerURL != "" {
				analyzer = analyze.NewRemote(analyzerURL, os.Getenv("PROWL_ANALYZER_KEY"))
			}

			var st engine.Store = store.NewMemory()
			if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
				pg, err := store.Open(cmd.Context(), dbURL)
				if err != nil {
					return fmt.Errorf("connect to store: %w", err)
				}
				defer pg.Close()
				if err := store.Migrate(dbURL); err != nil {
					return err
				}
				st = pg
			}

			enumerator := enum.New(userAgent, workers, axfr)
			enumerator.Progress = progress

			stages := engine.Stages{
				Enumerator: enumerator,
				Scanner: &recon.Scanner{
					DialTimeout:   dialTimeout,
					Crawler:       recon.NewCrawler(5*time.Second, crawlPages, userAgent),
					Fingerprinter: recon.NewFingerprinter(5*time.Second, userAgent),
					Analyzer:      analyzer,
				},
				Analyzer: analyzer,
				Store:    st,
			}

			cfg := engine.Config{
				Target:      domain,
				Workers:     workers,
				ScanTimeout: scanTimeout,
			}

			// Set up context with signal handling for clean Ctrl+C.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			go func() {
				<-sigCh
				fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
				cancel()
			}()

			scan, err := engine.Run(ctx, cfg, stages, progress)
			if err != nil {
				return err
			}

			if showProgress {
				progress.Complete()
			}

			if jsonOutput {
				return output.WriteJSON(os.Stdout, scan)
			}
			output.WriteTable(os.Stdout, scan, noColor)
			output.WriteSummary(os.Stdout, scan, noColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output structured JSON to stdout")
	cmd.Flags().IntVar(&workers, "workers", 10, "Concurrent subdomain scans")
	cmd.Flags().DurationVar(&dialTimeout, "timeout", time.Second, "Per-connection timeout")
	cmd.Flags().DurationVar(&scanTimeout, "scan-timeout", 2*time.Minute, "Per-subdomain scan budget")
	cmd.Flags().IntVar(&crawlPages, "crawl-pages", 50, "Maximum pages per web crawl")
	cmd.Flags().BoolVar(&axfr, "axfr", false, "Test for DNS zone transfers during enumeration")
	cmd.Flags().StringVar(&analyzerURL, "analyzer-url", os.Getenv("PROWL_ANALYZER_URL"), "Remote narrative-analysis endpoint")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable terminal colors")
	cmd.Flags().BoolVar(&silent, "silent", false, "Results only, no progress")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose per-source progress")

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger surface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			var st engine.Store
			if cfg.DatabaseURL != "" {
				pg, err := store.Open(cmd.Context(), cfg.DatabaseURL)
				if err != nil {
					return fmt.Errorf("connect to store: %w", err)
				}
				defer pg.Close()
				if err := store.Migrate(cfg.DatabaseURL); err != nil {
					return err
				}
				st = pg
			} else {
				fmt.Fprintln(os.Stderr, "DATABASE_URL not set; results held in memory only")
				st = store.NewMemory()
			}

			var analyzer engine.Analyzer = analyze.Heuristic{}
			if cfg.AnalyzerURL != "" {
				analyzer = analyze.NewRemote(cfg.AnalyzerURL, cfg.AnalyzerKey)
			}

			userAgent := fmt.Sprintf("prowl/%s (+https://github.com/prowlsec/prowl)", version)
			progress := output.NewProgress(os.Stderr, false, true)

			run := func(ctx context.Context, domain string) (*engine.DomainScan, error) {
				enumerator := enum.New(userAgent, cfg.Workers, false)
				stages := engine.Stages{
					Enumerator: enumerator,
					Scanner: &recon.Scanner{
						Crawler:       recon.NewCrawler(5*time.Second, cfg.CrawlMaxPages, userAgent),
						Fingerprinter: recon.NewFingerprinter(5*time.Second, userAgent),
						Analyzer:      analyzer,
					},
					Analyzer: analyzer,
					Store:    st,
				}
				return engine.Run(ctx, engine.Config{Target: domain, Workers: cfg.Workers}, stages, progress)
			}

			server := &api.Server{Store: st, Run: run, RunTimeout: cfg.RunTimeout}
			httpServer := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           server.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(os.Stderr, "prowl %s listening on %s\n", version, cfg.ListenAddr)
				errCh <- httpServer.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-sigCh:
				fmt.Fprintln(os.Stderr, "\nShutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <domain>",
		Short: "Print a stored scan result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := strings.ToLower(strings.TrimSpace(args[0]))

			dbURL := os.Getenv("DATABASE_URL")
			if dbURL == "" {
				return fmt.Errorf("DATABASE_URL is required for show")
			}

			pg, err := store.Open(cmd.Context(), dbURL)
			if err != nil {
				return fmt.Errorf("connect to store: %w", err)
			}
			defer pg.Close()

			scan, err := pg.Get(cmd.Context(), domain)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no stored scan for %s", domain)
			}
			if err != nil {
				return err
			}
			return output.WriteJSON(os.Stdout, scan)
		},
	}
}
