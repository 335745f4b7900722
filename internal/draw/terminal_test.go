package draw

import (
	"bytes"
	"strings"
	"testing"
)

func TestChunkWriterAppliesOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 4, 2)

	cw.WriteAt(1, 1, "hi")
	if out.Len() != 0 {
		t.Fatal("Expected nothing written before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := out.String(); got != "\033[3;5Hhi" {
		t.Errorf("Expected offset cursor move, got %q", got)
	}
}

func TestChunkWriterWriteBlock(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	cw.SetOffset(1, 0)

	cw.WriteBlock(2, 5, "ab\ncd")
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := out.String(); got != "\033[5;3Hab\033[6;3Hcd" {
		t.Errorf("Expected one line per row, got %q", got)
	}
}

func TestChunkWriterFlushesLargeFrames(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	frame := strings.Repeat("x", 3*maxChunkSize+17)

	cw.WriteString(frame)
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out.String() != frame {
		t.Errorf("Expected %d bytes, got %d", len(frame), out.Len())
	}

	// The buffer is reset after Flush.
	if err := cw.Flush(); err != nil || out.Len() != len(frame) {
		t.Errorf("Expected second Flush to write nothing, got %d bytes", out.Len()-len(frame))
	}
}
