package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bft-labs/rdsparse/internal/adapters/fs"
	"github.com/bft-labs/rdsparse/internal/cliconfig"
	"github.com/bft-labs/rdsparse/pkg/log"
	"github.com/bft-labs/rdsparse/pkg/rds"
)

// Commands understood by Runner.Run.
const (
	CommandSplit    = "split"
	CommandDecode   = "decode"
	CommandPipeline = "pipeline"
)

// asciiSuffix names the decoded file of a channel file in pipeline mode.
const asciiSuffix = "_ascii.txt"

// Runner executes processing passes for a validated Config.
type Runner struct {
	cfg    cliconfig.Config
	logger log.Logger
	runID  string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunID tags reports with an identifier for the run.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner creates a Runner. cfg must already be validated.
func NewRunner(cfg cliconfig.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Input returns the file a command reads, which watch mode observes.
func (r *Runner) Input(command string) string {
	if command == CommandDecode {
		return r.cfg.DecodeInput
	}
	return r.cfg.SessionLog
}

// Run executes command, logs its summary and writes the report file when
// one is configured. The report reflects the work done before any error.
func (r *Runner) Run(ctx context.Context, command string) error {
	var (
		rep *Report
		err error
	)
	switch command {
	case CommandSplit:
		rep, err = r.Split(ctx)
	case CommandDecode:
		rep, err = r.Decode(ctx)
	case CommandPipeline:
		rep, err = r.Pipeline(ctx)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		r.logger.Error(command+" failed", append(rep.Fields(), log.Err(err))...)
	} else {
		r.logger.Info(command+" complete", rep.Fields()...)
	}

	if r.cfg.Report != "" {
		if werr := rep.WriteJSON(r.cfg.Report); werr != nil && err == nil {
			err = fmt.Errorf("write report: %w", werr)
		}
	}
	return err
}

// Split groups the session log by channel and writes one file per channel
// holding at least MinLines payloads.
func (r *Runner) Split(ctx context.Context) (*Report, error) {
	rep := r.newReport(CommandSplit, r.cfg.SessionLog)

	in, err := fs.OpenInput(r.cfg.SessionLog)
	if err != nil {
		return rep, fmt.Errorf("open session log: %w", err)
	}
	defer in.Close()

	sp := rds.NewSplitter(r.cfg.Tag,
		rds.WithLogger(r.logger),
		rds.WithStrict(r.cfg.Strict),
	)
	res, err := sp.Split(ctx, in)
	if err != nil {
		return rep, err
	}
	rep.LinesRead = res.Lines
	rep.TaggedLines = res.Tagged
	rep.MalformedLines = res.Malformed

	for _, g := range res.Dropped(r.cfg.MinLines) {
		rep.ChannelsDropped++
		r.logger.Debug("channel below threshold",
			log.String("channel", g.Channel),
			log.Int("payloads", len(g.Payloads)),
			log.Int("min_lines", r.cfg.MinLines),
		)
	}

	for _, g := range res.Kept(r.cfg.MinLines) {
		path := filepath.Join(r.cfg.OutDir, g.FileName())
		err := fs.WriteFileAtomic(path, func(w io.Writer) error {
			return rds.WriteGroup(w, g)
		})
		if err != nil {
			return rep, fmt.Errorf("write channel %s: %w", g.Channel, err)
		}
		rep.ChannelsKept++
		rep.Files = append(rep.Files, path)
		r.logger.Info("wrote channel file",
			log.String("channel", g.Channel),
			log.String("path", path),
			log.Int("payloads", len(g.Payloads)),
		)
	}

	return rep, nil
}

// Decode decodes DecodeInput into DecodeOutput.
func (r *Runner) Decode(ctx context.Context) (*Report, error) {
	rep := r.newReport(CommandDecode, r.cfg.DecodeInput)

	rows, err := r.decodeFile(ctx, r.cfg.DecodeInput, r.cfg.DecodeOutput)
	rep.RowsDecoded = rows
	if err != nil {
		return rep, err
	}
	rep.Files = append(rep.Files, r.cfg.DecodeOutput)
	return rep, nil
}

// Pipeline splits the session log and decodes every channel file written,
// placing <channel>_ascii.txt next to <channel>.csv.
func (r *Runner) Pipeline(ctx context.Context) (*Report, error) {
	rep, err := r.Split(ctx)
	if err != nil {
		return rep, err
	}
	rep.Command = CommandPipeline

	channelFiles := append([]string(nil), rep.Files...)
	for _, in := range channelFiles {
		out := strings.TrimSuffix(in, rds.ChannelFileExt) + asciiSuffix
		rows, err := r.decodeFile(ctx, in, out)
		rep.RowsDecoded += rows
		if err != nil {
			return rep, err
		}
		rep.Files = append(rep.Files, out)
	}
	return rep, nil
}

func (r *Runner) decodeFile(ctx context.Context, inPath, outPath string) (int, error) {
	in, err := fs.OpenInput(inPath)
	if err != nil {
		return 0, fmt.Errorf("open decode input: %w", err)
	}
	defer in.Close()

	dec := rds.NewDecoder(rds.WithTokens(r.cfg.Tokens))

	var rows int
	err = fs.WriteFileAtomic(outPath, func(w io.Writer) error {
		var derr error
		rows, derr = dec.Decode(ctx, in, w)
		return derr
	})
	if err != nil {
		return rows, fmt.Errorf("decode %s: %w", inPath, err)
	}

	r.logger.Info("wrote decoded file",
		log.String("input", inPath),
		log.String("path", outPath),
		log.Int("rows", rows),
	)
	return rows, nil
}

func (r *Runner) newReport(command, input string) *Report {
	return &Report{
		RunID:   r.runID,
		Command: command,
		Input:   input,
	}
}
