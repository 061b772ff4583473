package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "dupfix",
		Usage: "detect duplicate code and plan refactorings across languages",
		Commands: []*cli.Command{
			scanCommand(),
			refactorCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	d := DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "JSON config file; explicit flags override it"},
		&cli.IntFlag{Name: "min-lines", Value: d.MinLines, Usage: "minimum block size in lines"},
		&cli.IntFlag{Name: "min-tokens", Value: d.MinTokens, Usage: "minimum block size in tokens"},
		&cli.FloatFlag{Name: "threshold", Value: d.SimilarityThreshold, Usage: "fuzzy similarity threshold in (0,1]"},
		&cli.StringSliceFlag{Name: "lang", Value: d.Languages, Usage: "language allow-list"},
		&cli.StringSliceFlag{Name: "exclude", Value: d.Exclude, Usage: "gitignore-style exclude patterns"},
		&cli.BoolFlag{Name: "no-suppress", Usage: "keep redundant groups from weaker algorithms"},
		&cli.BoolFlag{Name: "no-cache", Usage: "skip the token cache"},
		&cli.IntFlag{Name: "top", Value: d.TopN, Usage: "number of groups to print"},
		&cli.StringFlag{Name: "json", Usage: "write the JSON report to this path"},
		&cli.IntFlag{Name: "workers", Usage: "worker count (default: CPU count)"},
	}
}

// buildConfig layers defaults, then the optional config file, then any
// explicitly set flags, and validates the result.
func buildConfig(cmd *cli.Command) (*Config, error) {
	cfg := DefaultConfig()

	if path := cmd.String("config"); path != "" {
		if err := cfg.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}

	if cmd.Args().Len() > 0 {
		cfg.Root = cmd.Args().First()
	}
	if cmd.IsSet("min-lines") {
		cfg.MinLines = cmd.Int("min-lines")
	}
	if cmd.IsSet("min-tokens") {
		cfg.MinTokens = cmd.Int("min-tokens")
	}
	if cmd.IsSet("threshold") {
		cfg.SimilarityThreshold = cmd.Float("threshold")
	}
	if cmd.IsSet("lang") {
		cfg.Languages = cmd.StringSlice("lang")
	}
	if cmd.IsSet("exclude") {
		cfg.Exclude = cmd.StringSlice("exclude")
	}
	if cmd.IsSet("no-suppress") {
		cfg.SuppressDuplicates = !cmd.Bool("no-suppress")
	}
	cfg.NoCache = cmd.Bool("no-cache")
	cfg.TopN = cmd.Int("top")
	cfg.JSONOut = cmd.String("json")
	cfg.Workers = cmd.Int("workers")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "find duplicate groups and report them",
		ArgsUsage: "[path]",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			files, skipped, groups, err := runDetection(cfg)
			if err != nil {
				return err
			}
			report := BuildReport(files, skipped, groups, nil)
			return WriteJSONReport(report, cfg.Root, cfg.JSONOut)
		},
	}
}

func refactorCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "mode", Value: ModePreview, Usage: "write-back mode: preview, safe or inplace"},
	)
	return &cli.Command{
		Name:      "refactor",
		Usage:     "plan refactoring actions and optionally apply them",
		ArgsUsage: "[path]",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			mode := cmd.String("mode")
			switch mode {
			case ModePreview, ModeSafe, ModeInplace:
			default:
				return fmt.Errorf("unknown mode %q (want preview, safe or inplace)", mode)
			}
			// Safe mode is a guarantee that originals are never
			// overwritten, so it and in-place writes cannot coexist.
			if mode == ModeInplace && cfg.SafeMode {
				return fmt.Errorf("in-place writes require safe_mode=false in the config")
			}

			files, skipped, groups, err := runDetection(cfg)
			if err != nil {
				return err
			}

			actions := Plan(groups, cfg)
			if mode == ModePreview {
				RenderMarkdown(ActionsMarkdown(actions))
			}

			res := Apply(actions, files, mode, cfg.Workers)
			if mode != ModePreview {
				PrintApplySummary(res)
			}

			report := BuildReport(files, skipped, groups, actions)
			report.Apply = applyToJSON(res)
			return WriteJSONReport(report, cfg.Root, cfg.JSONOut)
		},
	}
}

// runDetection executes the scan -> analyze -> detect pipeline and prints
// the console report. JSON output is left to the caller, which may extend
// it with planned actions.
func runDetection(cfg *Config) ([]*SourceFile, []SkippedFile, []*DuplicateGroup, error) {
	start := time.Now()

	files, skipped, err := ScanFiles(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	PrintScanComplete(len(files), len(skipped), time.Since(start))

	var cache *TokenCache
	if !cfg.NoCache {
		cache = LoadTokenCache(cfg.Root)
	}

	analyzeStart := time.Now()
	blocks, analyzeSkipped, cacheHits, cacheMisses := AnalyzeAll(files, cfg, cache)
	skipped = append(skipped, analyzeSkipped...)
	PrintAnalyzeComplete(len(blocks), cacheHits, cacheMisses, time.Since(analyzeStart))
	cache.Save(cfg.Root)

	detectStart := time.Now()
	groups := Detect(blocks, cfg)
	PrintDetectComplete(len(groups), time.Since(detectStart))

	PrintGroups(groups, cfg.TopN)
	PrintHotspots(groups)

	totalLines := 0
	for _, f := range files {
		totalLines += f.LineCount
	}
	PrintTotalSummary(len(groups), len(files), totalLines, time.Since(start))

	return files, skipped, groups, nil
}
