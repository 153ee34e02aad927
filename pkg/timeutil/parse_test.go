package timeutil

import (
	"testing"
	"time"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "valid timestamp",
			input: "2024-01-15 10:30:45",
			want:  time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:  "midnight",
			input: "2024-01-01 00:00:00",
			want:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "empty", input: "", wantErr: true},
		{name: "month out of range", input: "2024-13-01 00:00:00", wantErr: true},
		{name: "RFC3339 is not accepted", input: "2024-01-15T10:30:45Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntry(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEntry(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseEntry(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatEntry(t *testing.T) {
	in := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	if got := FormatEntry(in); got != "2024-03-09 07:05:01" {
		t.Errorf("FormatEntry() = %q", got)
	}
}

func TestCompareEntry(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-01-01 00:00:01", "2024-01-01 00:00:00", 1},
		{"2024-01-01 00:00:00", "2024-01-01 00:00:01", -1},
		{"2024-01-01 00:00:00", "2024-01-01 00:00:00", 0},
		{"2024-12-31 23:59:59", "2025-01-01 00:00:00", -1},
		// unparseable falls back to string order
		{"2024-99-01 00:00:00", "2024-01-01 00:00:00", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			if got := CompareEntry(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareEntry(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
