package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_HeadersAndRows(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "NAME", "VENDOR")
	tbl.Row("leaf1", "arista_eos")
	tbl.Row("access-sw-1", "cisco_ios")
	tbl.Flush()

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("output has %d lines, want headers + divider + 2 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("first line = %q, want headers", lines[0])
	}
	if !strings.HasPrefix(lines[1], "----") {
		t.Errorf("second line = %q, want divider", lines[1])
	}
	if !strings.Contains(lines[2], "leaf1") || !strings.Contains(lines[3], "access-sw-1") {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestTable_EmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "NAME", "VENDOR")
	tbl.Flush()

	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTable_ColumnsAligned(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "NAME", "STATE")
	tbl.Row("a", "up")
	tbl.Row("longer-name", "down")
	tbl.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	col := strings.Index(lines[3], "down")
	if col < 0 || strings.Index(lines[2], "up") != col {
		t.Errorf("second column not aligned:\n%s", buf.String())
	}
}
