package rds

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bft-labs/rdsparse/pkg/log"
)

const (
	// DefaultTag is the literal prefix of RDS lines in a session log.
	DefaultTag = "[RDS]"

	// DefaultMinLines is the payload count a channel needs before it is
	// written out.
	DefaultMinLines = 20

	// ChannelFileExt is appended to the channel identifier to name its file.
	ChannelFileExt = ".csv"
)

// Entry is the channel identifier and payload extracted from one tagged line.
type Entry struct {
	Channel string
	Payload string
}

// Group holds the payloads of one channel in the order they were read.
type Group struct {
	Channel  string
	Payloads []string
}

// FileName returns the name of the file the group is written to.
func (g *Group) FileName() string {
	return g.Channel + ChannelFileExt
}

// SplitResult is the outcome of one pass over a session log.
type SplitResult struct {
	// Groups in the order their channel was first seen.
	Groups []*Group

	Lines     int
	Tagged    int
	Malformed int

	index map[string]*Group
}

func newSplitResult() *SplitResult {
	return &SplitResult{index: make(map[string]*Group)}
}

func (r *SplitResult) add(e Entry) {
	g, ok := r.index[e.Channel]
	if !ok {
		g = &Group{Channel: e.Channel}
		r.index[e.Channel] = g
		r.Groups = append(r.Groups, g)
	}
	g.Payloads = append(g.Payloads, e.Payload)
}

// Group returns the group of a channel, or nil if the channel was not seen.
func (r *SplitResult) Group(channel string) *Group {
	return r.index[channel]
}

// Kept returns the groups holding at least min payloads.
func (r *SplitResult) Kept(min int) []*Group {
	var out []*Group
	for _, g := range r.Groups {
		if len(g.Payloads) >= min {
			out = append(out, g)
		}
	}
	return out
}

// Dropped returns the groups holding fewer than min payloads.
func (r *SplitResult) Dropped(min int) []*Group {
	var out []*Group
	for _, g := range r.Groups {
		if len(g.Payloads) < min {
			out = append(out, g)
		}
	}
	return out
}

// Splitter groups tagged session-log lines by channel.
// A Splitter holds no state between calls to Split.
type Splitter struct {
	tag  string
	opts options
}

// NewSplitter creates a Splitter selecting lines that begin with tag.
// An empty tag selects DefaultTag.
func NewSplitter(tag string, opts ...Option) *Splitter {
	if tag == "" {
		tag = DefaultTag
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Splitter{tag: tag, opts: o}
}

// Split reads r to the end and groups the payloads of tagged lines.
// Untagged lines are counted but otherwise ignored. Malformed tagged lines
// are skipped and logged, or returned as a *LineError in strict mode.
func (s *Splitter) Split(ctx context.Context, r io.Reader) (*SplitResult, error) {
	res := newSplitResult()
	sc := newLineScanner(r)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Lines++

		entry, tagged, err := ParseLine(s.tag, sc.Text())
		if !tagged {
			continue
		}
		res.Tagged++

		if err != nil {
			if s.opts.strict {
				return nil, &LineError{Line: res.Lines, Err: err}
			}
			res.Malformed++
			s.opts.logger.Warn("skipping malformed tagged line",
				log.Int("line", res.Lines),
				log.Err(err),
			)
			continue
		}
		res.add(entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}

	return res, nil
}

// ParseLine extracts the channel and payload from a line.
//
// tagged reports whether the line begins with tag; untagged lines return a
// zero Entry and nil error. A tagged line is split on the first two commas:
// the channel is the second whitespace-separated field of the first part and
// the payload is the trimmed third part. The second part is discarded.
func ParseLine(tag, line string) (entry Entry, tagged bool, err error) {
	if !strings.HasPrefix(line, tag) {
		return Entry{}, false, nil
	}

	parts := strings.SplitN(line, ",", 3)
	if len(parts) < 3 {
		return Entry{}, true, fmt.Errorf("%w: want 3 comma-separated fields, got %d", ErrMalformedLine, len(parts))
	}

	head := strings.Fields(parts[0])
	if len(head) < 2 {
		return Entry{}, true, fmt.Errorf("%w: no channel identifier after tag", ErrMalformedLine)
	}

	channel := head[1]
	if !validChannel(channel) {
		return Entry{}, true, fmt.Errorf("%w: channel %q is not a plain file name", ErrMalformedLine, channel)
	}

	return Entry{Channel: channel, Payload: strings.TrimSpace(parts[2])}, true, nil
}

// validChannel rejects identifiers that would escape the output directory.
func validChannel(ch string) bool {
	if ch == "." || ch == ".." {
		return false
	}
	return !strings.ContainsAny(ch, `/\`+"\x00")
}

// WriteGroup writes the payloads of g to w, one per line.
func WriteGroup(w io.Writer, g *Group) error {
	for _, p := range g.Payloads {
		if _, err := io.WriteString(w, p+"\n"); err != nil {
			return err
		}
	}
	return nil
}
