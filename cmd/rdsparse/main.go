package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/rdsparse/internal/app"
	"github.com/bft-labs/rdsparse/internal/cliconfig"
	"github.com/bft-labs/rdsparse/internal/watch"
	"github.com/bft-labs/rdsparse/pkg/log"
)

const longHelp = `Split and decode RDS (Radio Data System) log captures.

  split     group tagged session-log lines into one <channel>.csv per channel
  decode    append the ASCII text of the trailing binary tokens to each CSV row
  pipeline  split, then decode every channel file into <channel>_ascii.txt

Configure via flags, RDSPARSE_* environment variables or a TOML/YAML file
(default: $HOME/.rdsparse/config.toml). Inputs ending in .gz or .zst are
decompressed on the fly.`

var exampleUsage = strings.TrimSpace(`
  rdsparse split --session capture/session.log --out-dir channels
  rdsparse decode --input channels/958.csv --output 958_ascii.txt
  rdsparse pipeline --session session.log.zst --report - --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := newRootCommand(&cfg, &cfgPath)
	if err := root.Execute(); err != nil {
		logger := cliconfig.Logger()
		logger.Error().Err(err).Msg("rdsparse")
		os.Exit(1)
	}
}

func newRootCommand(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	root := &cobra.Command{
		Use:           "rdsparse",
		Short:         "Split and decode RDS log captures",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(cfgPath, "config", "", "path to config file (default: $HOME/.rdsparse/config.toml)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console or json)")
	pf.StringVar(&cfg.Report, "report", cfg.Report, "write a JSON run report to this path ('-' for stdout)")
	pf.BoolVar(&cfg.Watch, "watch", cfg.Watch, "re-run whenever the input file changes")

	split := &cobra.Command{
		Use:   "split",
		Short: "Split a session log into per-channel CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, cfg, *cfgPath, app.CommandSplit)
		},
	}
	addSplitFlags(split.Flags(), cfg)

	decode := &cobra.Command{
		Use:   "decode",
		Short: "Decode trailing binary tokens of a CSV file into ASCII",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, cfg, *cfgPath, app.CommandDecode)
		},
	}
	addDecodeFlags(decode.Flags(), cfg)
	decode.Flags().StringVar(&cfg.DecodeInput, "input", cfg.DecodeInput, "CSV file to decode")
	decode.Flags().StringVar(&cfg.DecodeOutput, "output", cfg.DecodeOutput, "decoded output file")

	pipeline := &cobra.Command{
		Use:   "pipeline",
		Short: "Split a session log and decode every channel file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, cfg, *cfgPath, app.CommandPipeline)
		},
	}
	addSplitFlags(pipeline.Flags(), cfg)
	addDecodeFlags(pipeline.Flags(), cfg)

	root.AddCommand(split, decode, pipeline)
	return root
}

func addSplitFlags(fs *pflag.FlagSet, cfg *cliconfig.Config) {
	fs.StringVar(&cfg.SessionLog, "session", cfg.SessionLog, "session log to split")
	fs.StringVar(&cfg.Tag, "tag", cfg.Tag, "line prefix selecting RDS lines")
	fs.IntVar(&cfg.MinLines, "min-lines", cfg.MinLines, "minimum payloads before a channel file is written")
	fs.StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "directory for channel files")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "abort on malformed tagged lines instead of skipping them")
}

func addDecodeFlags(fs *pflag.FlagSet, cfg *cliconfig.Config) {
	fs.IntVar(&cfg.Tokens, "tokens", cfg.Tokens, "number of trailing binary tokens decoded per row")
}

// execute resolves configuration (flags > env > file > defaults) and runs
// command once, or repeatedly in watch mode.
func execute(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath, command string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	} else if !cliconfig.FileExists(cfgFile) {
		return fmt.Errorf("config file %s not found", cfgFile)
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cliconfig.ApplyFileConfig(cfg, fc, changed)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zl, err := cliconfig.NewLogger(cmd.ErrOrStderr(), *cfg)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	logger := log.NewZerologAdapterWithLogger(zl).With(log.String("run_id", runID))
	logger.Debug("configuration", log.Any("config", *cfg), log.String("command", command))

	runner := app.NewRunner(*cfg, app.WithLogger(logger), app.WithRunID(runID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Watch {
		return runner.Run(ctx, command)
	}

	w := watch.New(runner.Input(command), watch.WithLogger(logger))
	return w.Run(ctx, func(ctx context.Context) error {
		return runner.Run(ctx, command)
	})
}
