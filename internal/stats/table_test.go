package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Rule", "Category", "Count"}
	rows := [][]string{
		{"spelling", "correctness", "12"},
		{"wordy", "clarity", "3"},
	}
	lines := FormatTable(headers, rows, map[int]bool{2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Rule     Category    Count" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "spelling correctness    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "wordy    clarity         3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := FormatTable([]string{"A", "B"}, [][]string{{"日本", "x"}}, nil)
	if lines[1] != "日本 x" {
		t.Fatalf("expected wide runes to count as two cells, got %q", lines[1])
	}
	if lines[0] != "A    B" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
}
