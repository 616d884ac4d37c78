package diagio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oceanmodel/lagtrack/driver"
	"github.com/oceanmodel/lagtrack/particle"
)

func TestCSVWriterWritesHeaderOnceAndOneRowPerDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	diags := []driver.Diagnostic{
		{ID: 0, X: 0.1, Y: 0.2, Z: -0.5, Host: 3, Status: particle.Active},
		{ID: 1, X: 0.4, Y: 0.6, Z: -0.1, Host: 3, Status: particle.Beached},
	}
	if err := w.Write(0, diags); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(30, diags); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5 (1 header + 2x2 rows)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "t,id,x,y,z,host,status") {
		t.Errorf("header = %q", lines[0])
	}
}
