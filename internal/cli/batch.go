package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/pipeline"
)

var (
	outputDir    string
	batchTimeout time.Duration
	batchJSON    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Research multiple topics from a file",
	Long: `Batch reads topics from a file (one per line, # comments skipped)
and runs a research report for each, writing one output file per topic.

Topics run sequentially; each run fans out across sources internally,
and repeat topics within the cache TTL are served from cache.

Example:
  lookback batch topics.txt
  lookback batch topics.txt --output-dir ./reports --days 7 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./lookback-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "write JSON reports instead of Markdown")

	batchCmd.Flags().IntVar(&days, "days", 30, "window length in days, ending today")
	batchCmd.Flags().StringVar(&depth, "depth", "default", "search depth (quick, default, deep)")
	batchCmd.Flags().StringSliceVar(&sourcesFlag, "sources", nil, "source categories to query (default: all)")
	batchCmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the report cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	topics, err := readTopics(args[0])
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return fmt.Errorf("no topics in %s", args[0])
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

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	runner := pipeline.NewRunner(cfg)
	window := resolveBatchWindow()

	succeeded, failed := 0, 0
	for _, topic := range topics {
		report, err := runner.Run(ctx, pipeline.Request{
			Topic:       topic,
			Window:      window,
			Sources:     sources,
			Depth:       d,
			BypassCache: refresh,
		})
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", topic, err)
			continue
		}

		path := filepath.Join(outputDir, topicFilename(topic, batchJSON))
		if err := writeReport(report, batchJSON, path); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", topic, err)
			continue
		}

		succeeded++
		fmt.Fprintf(os.Stderr, "✓ %s (%d items) -> %s\n", topic, report.TotalItems(), path)
	}

	fmt.Fprintf(os.Stderr, "\n%d succeeded, %d failed, output in %s\n", succeeded, failed, outputDir)
	if failed > 0 && succeeded == 0 {
		return fmt.Errorf("every topic failed")
	}
	return nil
}

func resolveBatchWindow() dates.Window {
	return dates.NewWindow(time.Now().UTC(), days)
}

// readTopics loads one topic per line, skipping blanks and # comments.
func readTopics(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open topics file: %w", err)
	}
	defer f.Close()

	var topics []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		topics = append(topics, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}
	return topics, nil
}

// topicFilename sanitizes a topic into a safe report filename.
func topicFilename(topic string, asJSON bool) string {
	var b strings.Builder
	for _, r := range strings.ToLower(topic) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '/':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "report"
	}
	if len(name) > 100 {
		name = name[:100]
	}
	if asJSON {
		return name + ".json"
	}
	return name + ".md"
}
