package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// maxLines of zero or less returns every line. A missing file yields no
// lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	idx, count := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one line written by slog's text handler.
type Entry struct {
	Time    string
	Level   string
	Message string
	Attrs   string // remaining key=value pairs, unparsed
}

// Parse splits a slog text line into its leading fields. It reports false
// for lines that do not start with time= and level=.
func Parse(line string) (Entry, bool) {
	var e Entry
	rest := line

	val, rest, ok := field(rest, "time")
	if !ok {
		return Entry{}, false
	}
	e.Time = val
	if val, rest, ok = field(rest, "level"); !ok {
		return Entry{}, false
	}
	e.Level = val
	if val, next, ok := field(rest, "msg"); ok {
		e.Message = val
		rest = next
	}
	e.Attrs = rest
	return e, true
}

// field consumes `key=value ` from the front of s. Quoted values may hold
// spaces and escaped quotes.
func field(s, key string) (string, string, bool) {
	s = strings.TrimLeft(s, " ")
	if !strings.HasPrefix(s, key+"=") {
		return "", s, false
	}
	s = s[len(key)+1:]
	if !strings.HasPrefix(s, `"`) {
		end := strings.IndexByte(s, ' ')
		if end < 0 {
			return s, "", true
		}
		return s[:end], s[end+1:], true
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), strings.TrimLeft(s[i+1:], " "), true
		default:
			b.WriteByte(s[i])
		}
	}
	return "", s, false
}
