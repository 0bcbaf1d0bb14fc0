// Package rds parses RDS (Radio Data System) log captures.
//
// Two independent single-pass components live here:
//
//   - [Splitter] groups the payloads of tagged session-log lines by channel
//     identifier, keeping first-seen channel order and insertion order of
//     payloads.
//   - [Decoder] reinterprets the trailing binary tokens of each CSV row as
//     ASCII and appends the decoded text to the row.
//
// # Usage
//
//	sp := rds.NewSplitter(rds.DefaultTag, rds.WithLogger(logger))
//	res, err := sp.Split(ctx, in)
//	if err != nil {
//	    return err
//	}
//	for _, g := range res.Kept(rds.DefaultMinLines) {
//	    // write g.Payloads to <g.Channel>.csv
//	}
//
//	dec := rds.NewDecoder()
//	rows, err := dec.Decode(ctx, csvIn, out)
//
// Neither component touches the file system; callers own opening and
// closing of inputs and outputs.
package rds
