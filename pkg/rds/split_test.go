package rds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func sessionLog(channel string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "[RDS] %s 12:00:%02d, pi=C201, 0100%04d, 01001000, 01101001\n", channel, i, i)
	}
	return b.String()
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		want       Entry
		wantTagged bool
		wantErr    bool
	}{
		{
			name:       "tagged line",
			line:       "[RDS] 1 10:00:00, grp, 01000001, 01000010",
			want:       Entry{Channel: "1", Payload: "01000001, 01000010"},
			wantTagged: true,
		},
		{
			name:       "payload is trimmed",
			line:       "[RDS]   958  ts ,x,   data  ",
			want:       Entry{Channel: "958", Payload: "data"},
			wantTagged: true,
		},
		{
			name:       "empty payload",
			line:       "[RDS] 7,a,",
			want:       Entry{Channel: "7", Payload: ""},
			wantTagged: true,
		},
		{
			name: "untagged line",
			line: "INFO tuner locked, 98.5, MHz",
		},
		{
			name: "tag must be a prefix",
			line: " [RDS] 1, a, b",
		},
		{
			name:       "one comma only",
			line:       "[RDS] 1, data",
			wantTagged: true,
			wantErr:    true,
		},
		{
			name:       "no channel token",
			line:       "[RDS], a, b",
			wantTagged: true,
			wantErr:    true,
		},
		{
			name:       "channel with path separator",
			line:       "[RDS] ../etc, a, b",
			wantTagged: true,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tagged, err := ParseLine(DefaultTag, tt.line)
			if tagged != tt.wantTagged {
				t.Fatalf("ParseLine() tagged = %v, want %v", tagged, tt.wantTagged)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedLine) {
				t.Fatalf("ParseLine() error = %v, want ErrMalformedLine", err)
			}
			if got != tt.want {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSplitThreshold(t *testing.T) {
	tests := []struct {
		name     string
		lines    int
		wantKept int
	}{
		{"exactly twenty lines", 20, 1},
		{"nineteen lines", 19, 0},
		{"more than twenty", 35, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewSplitter(DefaultTag).Split(context.Background(), strings.NewReader(sessionLog("1", tt.lines)))
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			kept := res.Kept(DefaultMinLines)
			if len(kept) != tt.wantKept {
				t.Fatalf("Kept() = %d groups, want %d", len(kept), tt.wantKept)
			}
			if tt.wantKept == 0 {
				if len(res.Dropped(DefaultMinLines)) != 1 {
					t.Fatalf("Dropped() = %d groups, want 1", len(res.Dropped(DefaultMinLines)))
				}
				return
			}
			if got := len(kept[0].Payloads); got != tt.lines {
				t.Fatalf("payloads = %d, want %d", got, tt.lines)
			}
			for i, p := range kept[0].Payloads {
				want := fmt.Sprintf("0100%04d, 01001000, 01101001", i)
				if p != want {
					t.Fatalf("payload %d = %q, want %q", i, p, want)
				}
			}
		})
	}
}

func TestSplitIgnoresUntaggedLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "[RDS] 1 t, g, p%d\n", i)
		fmt.Fprintf(&b, "[TUNER] 1 t, g, noise%d\n", i)
		b.WriteString("\n")
	}

	res, err := NewSplitter(DefaultTag).Split(context.Background(), strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if res.Lines != 60 {
		t.Errorf("Lines = %d, want 60", res.Lines)
	}
	if res.Tagged != 20 {
		t.Errorf("Tagged = %d, want 20", res.Tagged)
	}
	g := res.Group("1")
	if g == nil || len(g.Payloads) != 20 {
		t.Fatalf("channel 1 = %+v, want 20 payloads", g)
	}
	for _, p := range g.Payloads {
		if strings.HasPrefix(p, "noise") {
			t.Fatalf("untagged payload %q was grouped", p)
		}
	}
}

func TestSplitKeepsFirstSeenChannelOrder(t *testing.T) {
	input := strings.Join([]string{
		"[RDS] 958 t, g, a1",
		"[RDS] 1 t, g, b1",
		"[RDS] 958 t, g, a2",
		"[RDS] 42 t, g, c1",
		"[RDS] 1 t, g, b2",
	}, "\n")

	res, err := NewSplitter(DefaultTag).Split(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	var channels []string
	for _, g := range res.Groups {
		channels = append(channels, g.Channel)
	}
	if want := []string{"958", "1", "42"}; !reflect.DeepEqual(channels, want) {
		t.Fatalf("channels = %v, want %v", channels, want)
	}
	if want := []string{"a1", "a2"}; !reflect.DeepEqual(res.Group("958").Payloads, want) {
		t.Fatalf("958 payloads = %v, want %v", res.Group("958").Payloads, want)
	}
}

func TestSplitMalformedLines(t *testing.T) {
	input := "[RDS] 1 t, g, ok\n[RDS] 1 broken\n[RDS] 1 t, g, ok2\n"

	t.Run("skipped by default", func(t *testing.T) {
		res, err := NewSplitter(DefaultTag).Split(context.Background(), strings.NewReader(input))
		if err != nil {
			t.Fatalf("Split() error = %v", err)
		}
		if res.Malformed != 1 {
			t.Errorf("Malformed = %d, want 1", res.Malformed)
		}
		if got := res.Group("1").Payloads; !reflect.DeepEqual(got, []string{"ok", "ok2"}) {
			t.Errorf("payloads = %v", got)
		}
	})

	t.Run("fatal when strict", func(t *testing.T) {
		_, err := NewSplitter(DefaultTag, WithStrict(true)).Split(context.Background(), strings.NewReader(input))
		if !errors.Is(err, ErrMalformedLine) {
			t.Fatalf("Split() error = %v, want ErrMalformedLine", err)
		}
		var lerr *LineError
		if !errors.As(err, &lerr) || lerr.Line != 2 {
			t.Fatalf("Split() error = %v, want line 2", err)
		}
	})
}

func TestSplitCustomTag(t *testing.T) {
	input := "<rds> 3 t, g, x\n[RDS] 3 t, g, y\n"
	res, err := NewSplitter("<rds>").Split(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if got := res.Group("3").Payloads; !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("payloads = %v, want [x]", got)
	}
}

func TestSplitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSplitter(DefaultTag).Split(ctx, strings.NewReader(sessionLog("1", 3)))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Split() error = %v, want context.Canceled", err)
	}
}

func TestWriteGroup(t *testing.T) {
	g := &Group{Channel: "958", Payloads: []string{"a, b", "c"}}

	var buf bytes.Buffer
	if err := WriteGroup(&buf, g); err != nil {
		t.Fatalf("WriteGroup() error = %v", err)
	}
	if got, want := buf.String(), "a, b\nc\n"; got != want {
		t.Errorf("WriteGroup() = %q, want %q", got, want)
	}
	if g.FileName() != "958.csv" {
		t.Errorf("FileName() = %q, want 958.csv", g.FileName())
	}
}
