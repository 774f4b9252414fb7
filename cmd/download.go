package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/session"
	"github.com/brogergvhs/noveld/internal/staging"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"
)

var (
	// selection
	flagName   string
	flagAuthor string
	flagRange  string
	flagList   string

	// runtime
	flagOutput      string
	flagWorkers     int
	flagStaging     string
	flagEngine      string
	flagTimeout     time.Duration
	flagFetchDelay  time.Duration
	flagKeepStaging bool
	flagSkipBroken  bool
	flagNoProgress  bool
	flagDryRun      bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download -n <title> -a <author>",
		Short: "Download a novel into one text file. Uses the defaults from the selected config, overwritten by CLI flags",
		Example: "  noveld download -n 雪鹰领主 -a 我吃西红柿\n" +
			"  noveld download -n 雪鹰领主 -a 我吃西红柿 -t 4 --range 1-100 --engine chrome",
		RunE: runDownload,
	}

	// selection
	downloadCmd.Flags().StringVarP(&flagName, "name", "n", "", "novel title, matched exactly")
	downloadCmd.Flags().StringVarP(&flagAuthor, "author", "a", "", "novel author, matched exactly")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "download range of chapters by index (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "download specific chapter indices (e.g. 1,3,5)")

	// runtime
	downloadCmd.Flags().IntVarP(&flagWorkers, "thread", "t", config.DefaultWorkers, "number of parallel workers")
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for the novel")
	downloadCmd.Flags().StringVar(&flagStaging, "staging", "", "staging directory or bucket URL (s3://, gs://, mem://)")
	downloadCmd.Flags().StringVar(&flagEngine, "engine", "", "page engine: http or chrome")
	downloadCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-page navigation timeout (default 30s)")
	downloadCmd.Flags().DurationVar(&flagFetchDelay, "fetch-delay", config.DefaultFetchDelay, "pause after each chapter, 0 disables")
	downloadCmd.Flags().BoolVar(&flagKeepStaging, "keep-staging", false, "keep staged segments after merging")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip chapters that fail instead of aborting the run")
	downloadCmd.Flags().BoolVar(&flagNoProgress, "no-progress", false, "disable progress bars")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show the chapters and worker partitions, don't download")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\" (http engine)")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (http engine)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	title := strings.TrimSpace(flagName)
	author := strings.TrimSpace(flagAuthor)
	if title == "" || author == "" {
		_ = cmd.Usage()
		return errors.New("both --name and --author are required, e.g. noveld download -n 雪鹰领主 -a 我吃西红柿")
	}

	opts := config.Options{
		Output:      flagOutput,
		Staging:     flagStaging,
		Engine:      flagEngine,
		Timeout:     flagTimeout,
		Cookie:      flagCookie,
		CookieFile:  flagCookieFile,
		UserAgent:   flagUserAgent,
		KeepStaging: flagKeepStaging,
		SkipBroken:  flagSkipBroken,
		NoProgress:  flagNoProgress,
	}
	if cmd.Flags().Changed("thread") {
		if flagWorkers <= 0 {
			return fmt.Errorf("%w: worker count must be positive, got %d", downloader.ErrInvalidArgument, flagWorkers)
		}
		opts.Workers = flagWorkers
	}
	if cmd.Flags().Changed("fetch-delay") {
		opts.FetchDelay = &flagFetchDelay
	}

	cfg, usedPath, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("%w: worker count must be positive, got %d", downloader.ErrInvalidArgument, cfg.Workers)
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("config: %s", usedPath)
	if cfg.Debug {
		cfg.Print(os.Stderr)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	ctx, stop := util.SetupInterruptHandler(cmd.Context())
	defer stop()

	cat, err := newCatalog(cfg, log)
	if err != nil {
		return err
	}

	sessions, err := session.New(cfg.Engine, session.Options{
		UserAgent:  util.PickUserAgent(cfg.UserAgent),
		Cookie:     cfg.Cookie,
		CookieFile: cfg.CookieFile,
		Timeout:    cfg.Timeout,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	var pm *ui.MPBProgressManager
	if cfg.Progress && !flagDryRun {
		pm = ui.NewProgressManager(os.Stderr)
	}

	area := staging.New(cfg.StagingTarget())
	d := downloader.New(
		sessions,
		downloader.NewContentFetcher(cfg.ContentSelector, cfg.FetchDelay),
		area,
		log,
		downloader.Options{
			Workers:     cfg.Workers,
			SkipBroken:  cfg.SkipBroken,
			KeepStaging: cfg.KeepStaging,
		},
	).WithProgress(pm)

	p := &downloader.Pipeline{
		Catalog:    cat,
		Downloader: d,
		Select: func(all []providers.Chapter) ([]providers.Chapter, error) {
			log.Infof("found %d chapters", len(all))
			return chapters.Filter(all, flagRange, flagList)
		},
	}

	if flagDryRun {
		selected, err := p.Plan(ctx, title, author)
		if err != nil {
			util.RemoveIfEmpty(cfg.Output)
			return describeFailure(err, title, author)
		}
		return printPlan(cmd.OutOrStdout(), selected, cfg)
	}

	outPath := chapters.OutputTXTPath(cfg.Output, title)
	start := time.Now()

	art, err := p.Run(ctx, title, author, outPath)
	pm.Close()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			util.CleanupPartialFiles(cfg.Output)
		}
		util.RemoveIfEmpty(cfg.Output)
		return describeFailure(err, title, author)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Download Summary:")
	fmt.Fprintf(out, "Chapters: %d\n", art.Chapters)
	if art.Skipped > 0 {
		fmt.Fprintf(out, "Skipped:  %d\n", art.Skipped)
	}
	fmt.Fprintf(out, "Data:     %s\n", util.Human(art.Bytes))
	fmt.Fprintf(out, "Time:     %s\n", time.Since(start).Round(time.Second))
	fmt.Fprintf(out, "Saved to: %s\n", art.Path)
	if cfg.KeepStaging && area.Dir() != "" {
		fmt.Fprintf(out, "Staging:  %s\n", area.Dir())
	}

	return nil
}

func describeFailure(err error, title, author string) error {
	var (
		we *downloader.WorkerError
		me *downloader.MergeError
	)

	switch {
	case errors.Is(err, providers.ErrNotFound):
		return fmt.Errorf("novel %q by %q not found", title, author)
	case errors.As(err, &we):
		return fmt.Errorf("download aborted, no file written (staged segments kept for inspection): %w", err)
	case errors.As(err, &me):
		return fmt.Errorf("merge failed, staging left intact: %w", err)
	}
	return err
}

func printPlan(w io.Writer, selected []providers.Chapter, cfg *config.Config) error {
	parts, err := chapters.Split(selected, cfg.Workers)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Dry-run: %d chapters over %d workers.\n\n", len(selected), len(parts))

	rows := make([][]string, 0, len(parts))
	for _, p := range parts {
		first, last := "-", "-"
		if n := len(p.Items); n > 0 {
			first, last = p.Items[0].Title, p.Items[n-1].Title
		}
		rows = append(rows, []string{fmt.Sprint(p.Index), fmt.Sprint(len(p.Items)), first, last})
	}

	return ui.WriteTable(w, []string{"WORKER", "CHAPTERS", "FIRST", "LAST"}, rows)
}
