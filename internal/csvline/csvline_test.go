package csvline

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trimmed", "  a , b ,c  ", []string{"a", "b", "c"}},
		{"empty fields", "a,,c,", []string{"a", "", "c", ""}},
		{"empty line", "", []string{""}},
		{"quoted comma", `A,"B,C",D`, []string{"A", "B,C", "D"}},
		{"doubled quote", `"He said ""hi"""`, []string{`He said "hi"`}},
		{"quoted whitespace", ` "  x  " ,y`, []string{"  x  ", "y"}},
		{"quoted empty", `a,"",c`, []string{"a", "", "c"}},
		{"mixed quoting", `ab"c,d"e`, []string{"abc,de"}},
		{"carriage return", "a,b\r", []string{"a", "b"}},
		{"unbalanced quote", `a,"b,c,d`, []string{"a", "b,c,d"}},
		{"utf8", "Société Générale,€", []string{"Société Générale", "€"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseLineFieldCount(t *testing.T) {
	for n := 1; n <= 20; n++ {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = " v "
		}
		got := ParseLine(strings.Join(parts, ","))
		if len(got) != n {
			t.Fatalf("ParseLine with %d fields returned %d", n, len(got))
		}
		for i, f := range got {
			if f != "v" {
				t.Errorf("field %d = %q, want %q", i, f, "v")
			}
		}
	}
}

func TestReadLinesSkipsBlank(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("a,b\n\n  \nc,d\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("ReadLines returned %d lines, want 2: %q", len(lines), lines)
	}
}

func TestReadTable(t *testing.T) {
	input := "Symbol,Security Name,ETF\nAAPL,\"Apple Inc., Common Stock\",N\n\nSPY,SPDR S&P 500,Y\nSHORT\n"
	tbl, err := ReadTable(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("ReadTable returned %d rows, want 3", len(tbl.Rows))
	}
	if !tbl.Has("Security Name") || tbl.Has("Missing") {
		t.Error("Has reports wrong column presence")
	}

	if got := tbl.Rows[0].Get("Security Name"); got != "Apple Inc., Common Stock" {
		t.Errorf("row 0 Security Name = %q", got)
	}
	if got := tbl.Rows[1].Get("ETF"); got != "Y" {
		t.Errorf("row 1 ETF = %q, want Y", got)
	}
	// Short rows and unknown columns read as empty.
	if got := tbl.Rows[2].Get("ETF"); got != "" {
		t.Errorf("short row ETF = %q, want empty", got)
	}
	if got := tbl.Rows[0].Get("Nope"); got != "" {
		t.Errorf("unknown column = %q, want empty", got)
	}
	if got := tbl.Rows[0].At(2); got != "N" {
		t.Errorf("At(2) = %q, want N", got)
	}
	if got := tbl.Rows[0].At(9); got != "" {
		t.Errorf("At(9) = %q, want empty", got)
	}
}

func TestReadTableEmpty(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Header) != 0 || len(tbl.Rows) != 0 {
		t.Errorf("empty input produced %d header cols and %d rows", len(tbl.Header), len(tbl.Rows))
	}
}
