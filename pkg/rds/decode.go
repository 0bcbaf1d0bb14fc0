package rds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// DefaultTokens is the number of trailing tokens decoded per row.
	DefaultTokens = 4

	// Separator sits between the input row and its decoded text.
	Separator = " -> "

	// Sentinel replaces every value outside the printable ASCII range.
	Sentinel byte = 0x00

	minPrintable = 32
	maxPrintable = 126
)

// DecodeToken parses a base-2 token and maps it to a printable ASCII byte.
// Values outside [32,126], including negative values and values that do not
// fit in 64 bits, map to Sentinel. Any non-binary character is an error.
func DecodeToken(tok string) (byte, error) {
	v, err := strconv.ParseInt(tok, 2, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Sentinel, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidToken, tok)
	}
	if v < minPrintable || v > maxPrintable {
		return Sentinel, nil
	}
	return byte(v), nil
}

// EncodeChar renders c as an 8-digit binary token.
func EncodeChar(c byte) string {
	return fmt.Sprintf("%08b", c)
}

// Tokens splits a row on commas and returns the trimmed, non-empty cells.
func Tokens(line string) []string {
	var out []string
	for _, p := range strings.Split(line, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Decoder appends the ASCII rendering of trailing binary tokens to CSV rows.
type Decoder struct {
	opts options
}

// NewDecoder creates a Decoder. By default it reads DefaultTokens tokens.
func NewDecoder(opts ...Option) *Decoder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{opts: o}
}

// DecodeLine decodes the last tokens of a row. Rows with fewer tokens than
// configured decode all of them; a row without tokens decodes to "".
func (d *Decoder) DecodeLine(line string) (string, error) {
	toks := Tokens(line)
	if n := d.opts.tokens; len(toks) > n {
		toks = toks[len(toks)-n:]
	}

	out := make([]byte, 0, len(toks))
	for _, tok := range toks {
		c, err := DecodeToken(tok)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	return string(out), nil
}

// Decode reads rows from r and writes "<row> -> <decoded>" lines to w.
// It returns the number of rows written. The first invalid token aborts the
// run with a *LineError.
func (d *Decoder) Decode(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	sc := newLineScanner(r)
	bw := bufio.NewWriter(w)

	rows := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		line := strings.TrimSpace(sc.Text())

		decoded, err := d.DecodeLine(line)
		if err != nil {
			return rows, &LineError{Line: rows + 1, Err: err}
		}
		if _, err := bw.WriteString(line + Separator + decoded + "\n"); err != nil {
			return rows, err
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return rows, fmt.Errorf("read rows: %w", err)
	}

	return rows, bw.Flush()
}
