package app

import (
	"encoding/json"
	"io"
	"os"

	"github.com/bft-labs/rdsparse/internal/adapters/fs"
	"github.com/bft-labs/rdsparse/pkg/log"
)

// Report aggregates the statistics of one run.
type Report struct {
	RunID           string   `json:"run_id,omitempty"`
	Command         string   `json:"command"`
	Input           string   `json:"input"`
	LinesRead       int      `json:"lines_read"`
	TaggedLines     int      `json:"tagged_lines"`
	MalformedLines  int      `json:"malformed_lines"`
	ChannelsKept    int      `json:"channels_kept"`
	ChannelsDropped int      `json:"channels_dropped"`
	RowsDecoded     int      `json:"rows_decoded"`
	Files           []string `json:"files"`
}

// Fields returns the report as log fields.
func (r *Report) Fields() []log.Field {
	return []log.Field{
		log.String("input", r.Input),
		log.Int("lines_read", r.LinesRead),
		log.Int("tagged_lines", r.TaggedLines),
		log.Int("malformed_lines", r.MalformedLines),
		log.Int("channels_kept", r.ChannelsKept),
		log.Int("channels_dropped", r.ChannelsDropped),
		log.Int("rows_decoded", r.RowsDecoded),
		log.Strings("files", r.Files),
	}
}

// WriteJSON writes the report to path, or to stdout when path is "-".
func (r *Report) WriteJSON(path string) error {
	if path == "-" {
		return r.encode(os.Stdout)
	}
	return fs.WriteFileAtomic(path, r.encode)
}

func (r *Report) encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
