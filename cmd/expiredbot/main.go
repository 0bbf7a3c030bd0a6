package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/freeebooks/expiredbot/internal/cache"
	"github.com/freeebooks/expiredbot/internal/config"
	"github.com/freeebooks/expiredbot/internal/dashboard"
	"github.com/freeebooks/expiredbot/internal/digest"
	"github.com/freeebooks/expiredbot/internal/forum"
	"github.com/freeebooks/expiredbot/internal/pipeline"
	"github.com/freeebooks/expiredbot/internal/price"
	"github.com/freeebooks/expiredbot/internal/report"
)

var (
	makeChanges  bool
	testData     bool
	password     string
	recipient    string
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:   "expiredbot",
	Short: "Marks no-longer-free ebook posts as expired",
	Long: `Scans the subreddit's hot listing, checks each linked ebook's current
price, marks priced ones as expired, and sends the moderators a digest
of anything it changed or could not figure out.

Without --make-changes this is a dry run: decisions are computed and
reported but nothing on the forum or on disk is touched.`,
	RunE:          runBot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve charts of past run decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(settingsFile)
		if err != nil {
			return err
		}
		port := os.Getenv("PORT")
		if port == "" {
			port = settings.DashboardPort
		}
		slog.Info("starting dashboard", "port", port, "report", settings.ReportFile)
		return dashboard.StartServer(settings.ReportFile, port)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "settings.yaml", "Path to the YAML settings file")
	rootCmd.Flags().BoolVarP(&makeChanges, "make-changes", "x", false, "Actually change flair and leave comments")
	rootCmd.Flags().BoolVarP(&testData, "test-data", "t", false, "Run over the test subreddit instead")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "Password to log in with (overrides REDDIT_PASSWORD)")
	rootCmd.Flags().StringVarP(&recipient, "recipient", "r", "", "Send the digest to this name")
	rootCmd.AddCommand(dashboardCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	settings, err := config.Load(settingsFile)
	if err != nil {
		return err
	}

	creds := config.CredentialsFromEnv()
	if password != "" {
		creds.Password = password
	}

	dryRun := !makeChanges

	// Digests from test or dry runs go to the operator, not the mods,
	// unless a recipient was given explicitly.
	digestTo := settings.DigestRecipient
	if recipient != "" {
		digestTo = recipient
	} else if dryRun || testData {
		digestTo = settings.TestDigestRecipient
	}

	subreddit := settings.Subreddit
	if testData {
		subreddit = settings.TestSubreddit
	}

	forumClient, err := forum.New(creds, settings.UserAgent)
	if err != nil {
		return fmt.Errorf("initialize forum client: %w", err)
	}
	logger.Info("forum client initialized", "mode", creds.Mode, "subreddit", subreddit, "dry_run", dryRun)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reviewCache, err := cache.Load(settings.Caches.NeedsReviewFile, settings.MaxSubmissions)
	if err != nil {
		return err
	}
	expiredCache, err := cache.Load(settings.Caches.AlreadyExpiredFile, settings.MaxSubmissions)
	if err != nil {
		return err
	}
	caches := pipeline.Caches{NeedsReview: reviewCache, AlreadyExpired: expiredCache}

	bot := pipeline.New(forumClient, price.NewFetcher(settings.UserAgent), pipeline.Options{
		DryRun:        dryRun,
		TestData:      testData,
		FlairLabel:    settings.Flair.Label,
		FlairCSSClass: settings.Flair.CSSClass,
	})

	out, err := bot.Run(ctx, subreddit, settings.MaxSubmissions, caches)
	if err != nil {
		return err
	}
	logger.Info("run complete", "expired", len(out.Expired), "needs_review", len(out.NeedsReview))

	body := digest.Expired(out.Expired, dryRun) + "\n\n" + digest.NeedsReview(out.NeedsReview)
	if err := forumClient.SendMessage(ctx, digestTo, "Bot Digest", body); err != nil {
		// The digest is best-effort; the caches still need persisting.
		logger.Error("send digest failed", "to", digestTo, "err", err)
	}

	// Test and dry runs must not disturb the next real run's state.
	if !dryRun && !testData {
		if err := cache.Store(expiredCache, settings.Caches.AlreadyExpiredFile); err != nil {
			return err
		}
		if err := cache.Store(reviewCache, settings.Caches.NeedsReviewFile); err != nil {
			return err
		}
		writer := &report.Writer{FilePath: settings.ReportFile}
		if err := writer.Append(report.FromOutcome(out.Expired, out.NeedsReview, dryRun, time.Now())); err != nil {
			logger.Error("append run report failed", "err", err)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
}
