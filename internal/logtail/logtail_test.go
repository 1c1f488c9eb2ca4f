package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil || lines != nil {
		t.Fatalf("Read(missing) = %v, %v, want nil, nil", lines, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entry
		ok    bool
	}{
		{
			name:  "plain message",
			input: "time=2026-10-17T09:12:03.114+02:00 level=INFO msg=started",
			want:  Entry{Time: "2026-10-17T09:12:03.114+02:00", Level: "INFO", Message: "started"},
			ok:    true,
		},
		{
			name:  "quoted message with attrs",
			input: `time=2026-10-17T09:12:03.114+02:00 level=WARN msg="device enumeration failed" error="open /dev/input: \"busy\"" key=3`,
			want: Entry{
				Time:    "2026-10-17T09:12:03.114+02:00",
				Level:   "WARN",
				Message: "device enumeration failed",
				Attrs:   `error="open /dev/input: \"busy\"" key=3`,
			},
			ok: true,
		},
		{
			name:  "custom level",
			input: "time=2026-10-17T09:12:03Z level=ERROR+2 msg=x",
			want:  Entry{Time: "2026-10-17T09:12:03Z", Level: "ERROR+2", Message: "x"},
			ok:    true,
		},
		{
			name:  "not slog",
			input: "panic: runtime error",
			ok:    false,
		},
		{
			name:  "missing level",
			input: "time=2026-10-17T09:12:03Z msg=x",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func plainPalette() Palette {
	s := lipgloss.NewStyle()
	return Palette{Time: s, Info: s, Warn: s, Error: s, Debug: s, Attrs: s}
}

func TestColorizeLine(t *testing.T) {
	p := plainPalette()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty line",
			input:    "",
			expected: "",
		},
		{
			name:     "unparsed line",
			input:    "goroutine 1 [running]:",
			expected: "goroutine 1 [running]:",
		},
		{
			name:     "message only",
			input:    "time=2026-10-17T09:12:03.114+02:00 level=INFO msg=started",
			expected: "09:12:03 INFO started",
		},
		{
			name:     "message with attrs",
			input:    `time=2026-10-17T09:12:03.114+02:00 level=DEBUG msg="switched page" page=customers`,
			expected: "09:12:03 DEBUG switched page page=customers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.ColorizeLine(tt.input)
			if result != tt.expected {
				t.Errorf("ColorizeLine() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestColorizeLines(t *testing.T) {
	input := []string{
		"time=2026-10-17T09:12:03Z level=INFO msg=a",
		"plain",
	}
	expected := []string{"09:12:03 INFO a", "plain"}

	result := plainPalette().ColorizeLines(input)
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("ColorizeLines() = %q, want %q", result, expected)
	}
}
