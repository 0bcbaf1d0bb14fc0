package rds

import (
	"bufio"
	"io"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return sc
}
