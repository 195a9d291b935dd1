package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/model"
	"github.com/avelichko/lookback/internal/pipeline"
	"github.com/avelichko/lookback/internal/source"
)

var (
	days        int
	fromDate    string
	toDate      string
	depth       string
	sourcesFlag []string
	refresh     bool
	asJSON      bool
	outPath     string
	runTimeout  time.Duration
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Research recent activity around a topic",
	Long: `Research queries every configured provider for the topic within the
time window, ranks the results, and prints one combined report.

Sources needing credentials are skipped silently when the key is absent;
Hacker News works without any key.

Example:
  lookback research "zig package manager"
  lookback research "rust async runtime" --days 7 --depth deep
  lookback research "httpx" --sources reddit,hackernews --json
  lookback research "kubernetes" --from 2026-08-01 --to 2026-08-15`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().IntVar(&days, "days", 30, "window length in days, ending today")
	researchCmd.Flags().StringVar(&fromDate, "from", "", "window start (YYYY-MM-DD, overrides --days)")
	researchCmd.Flags().StringVar(&toDate, "to", "", "window end (YYYY-MM-DD, defaults to today)")
	researchCmd.Flags().StringVar(&depth, "depth", "default", "search depth (quick, default, deep)")
	researchCmd.Flags().StringSliceVar(&sourcesFlag, "sources", nil, "source categories to query (default: all)")
	researchCmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the report cache")
	researchCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of Markdown")
	researchCmd.Flags().StringVar(&outPath, "out", "", "write the report to a file instead of stdout")
	researchCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run timeout")
}

func runResearch(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(args[0])
	if topic == "" {
		return fmt.Errorf("topic must not be empty")
	}

	window, err := resolveWindow()
	if err != nil {
		return err
	}
	sources, err := resolveSources(sourcesFlag)
	if err != nil {
		return err
	}
	d, err := resolveDepth(depth)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Topic:  %s\n", topic)
		fmt.Fprintf(os.Stderr, "Window: %s to %s\n", window.FromString(), window.ToString())
		fmt.Fprintf(os.Stderr, "Depth:  %s\n\n", d)
	}

	runner := pipeline.NewRunner(cfg)
	report, err := runner.Run(ctx, pipeline.Request{
		Topic:       topic,
		Window:      window,
		Sources:     sources,
		Depth:       d,
		BypassCache: refresh,
	})
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d items across %d sources\n", report.TotalItems(), len(report.Quality.SourcesAvailable))
		if report.FromCache {
			fmt.Fprintf(os.Stderr, "✓ Served from cache (%s old)\n", report.CacheAge.Round(time.Second))
		}
		fmt.Fprintln(os.Stderr)
	}

	return writeReport(report, asJSON, outPath)
}

func writeReport(report *model.Report, asJSON bool, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	renderer := pipeline.NewRenderer(verbose)
	if asJSON {
		return renderer.JSON(out, report)
	}
	return renderer.Markdown(out, report)
}

// resolveWindow turns the flag combination into an inclusive date window.
func resolveWindow() (dates.Window, error) {
	if fromDate == "" && toDate == "" {
		if days <= 0 {
			return dates.Window{}, fmt.Errorf("--days must be positive")
		}
		return dates.NewWindow(time.Now().UTC(), days), nil
	}

	from, ok := dates.Parse(fromDate)
	if !ok {
		return dates.Window{}, fmt.Errorf("invalid --from date: %q", fromDate)
	}

	to := time.Now().UTC()
	if toDate != "" {
		to, ok = dates.Parse(toDate)
		if !ok {
			return dates.Window{}, fmt.Errorf("invalid --to date: %q", toDate)
		}
	}
	if to.Before(from) {
		return dates.Window{}, fmt.Errorf("--to is before --from")
	}
	return dates.Window{From: from, To: to}, nil
}

func resolveSources(names []string) ([]model.Source, error) {
	if len(names) == 0 {
		return nil, nil
	}

	known := make(map[model.Source]bool)
	for _, s := range model.AllSources() {
		known[s] = true
	}

	var sources []model.Source
	for _, name := range names {
		src := model.Source(strings.ToLower(strings.TrimSpace(name)))
		if !known[src] {
			return nil, fmt.Errorf("unknown source %q (valid: reddit, x, hackernews, news, web, video, discussion)", name)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func resolveDepth(name string) (source.Depth, error) {
	switch source.Depth(name) {
	case source.DepthQuick, source.DepthDefault, source.DepthDeep:
		return source.Depth(name), nil
	}
	return "", fmt.Errorf("unknown depth %q (valid: quick, default, deep)", name)
}
