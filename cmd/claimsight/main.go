package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claimsight/claimsight/internal/anomaly"
	"github.com/claimsight/claimsight/internal/baseline"
	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/counters"
	"github.com/claimsight/claimsight/internal/label"
	"github.com/claimsight/claimsight/internal/runner"
)

const usageText = `usage: claimsight <command> [flags]

commands:
  baseline   compute per-region monthly billing baselines
  label      score claims against a baseline artifact and flag anomalies
  aggregate  count flagged claims per region
  pipeline   run all three stages over a work directory
`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "baseline":
		err = runBaseline(ctx, os.Args[2:])
	case "label":
		err = runLabel(ctx, os.Args[2:])
	case "aggregate":
		err = runAggregate(ctx, os.Args[2:])
	case "pipeline":
		err = runPipeline(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "claimsight: unknown command %q\n%s", cmd, usageText)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig loads the YAML config when a path is given, or falls back
// to the built-in defaults so every command runs without one.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// parseArgs runs the flag set and turns usage errors into exit code 2,
// matching flag.ExitOnError behavior for misspelled flags.
func parseArgs(fs *flag.FlagSet, args []string, required map[string]*string) {
	fs.Parse(args)
	for name, val := range required {
		if *val == "" {
			fmt.Fprintf(os.Stderr, "claimsight %s: -%s is required\n", fs.Name(), name)
			fs.Usage()
			os.Exit(2)
		}
	}
}

func runBaseline(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("baseline", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (optional)")
	in := fs.String("in", "", "raw claims CSV file")
	out := fs.String("out", "", "baseline output file")
	parseArgs(fs, args, map[string]*string{"in": in, "out": out})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	j := baseline.New(cfg)
	if err := j.Run(ctx, *in, *out, *out+".invalid"); err != nil {
		return err
	}
	return dumpCounters(cfg, j.Counters())
}

func runLabel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("label", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (optional)")
	in := fs.String("in", "", "raw claims CSV file")
	baselinePath := fs.String("baseline", "", "baseline artifact from the baseline command")
	out := fs.String("out", "", "labeled output file")
	parseArgs(fs, args, map[string]*string{"in": in, "baseline": baselinePath, "out": out})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	j := label.New(cfg)
	if err := j.Run(ctx, *in, *baselinePath, *out); err != nil {
		return err
	}
	return dumpCounters(cfg, j.Counters())
}

func runAggregate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (optional)")
	in := fs.String("in", "", "labeled claims file from the label command")
	out := fs.String("out", "", "per-region anomaly counts output file")
	parseArgs(fs, args, map[string]*string{"in": in, "out": out})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	j := anomaly.New(cfg)
	if err := j.Run(ctx, *in, *out, *out+".invalid"); err != nil {
		return err
	}
	return dumpCounters(cfg, j.Counters())
}

func runPipeline(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (optional)")
	in := fs.String("in", "", "raw claims CSV file")
	workDir := fs.String("workdir", "", "directory for stage artifacts")
	watch := fs.Bool("watch", false, "keep running and re-run when the input changes")
	parseArgs(fs, args, map[string]*string{"in": in, "workdir": workDir})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	r := runner.New(cfg)
	if *watch {
		return r.Watch(ctx, *in, *workDir)
	}
	return r.Run(ctx, *in, *workDir)
}

// dumpCounters writes a single stage's counters to the configured
// textfile. The pipeline command dumps all stages itself.
func dumpCounters(cfg *config.Config, set *counters.Set) error {
	if cfg.Metrics.Textfile == "" {
		return nil
	}
	return counters.WriteTextfile(cfg.Metrics.Textfile, set)
}
