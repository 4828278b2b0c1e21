package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
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
	count := 0
	idx := 0
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

// Entry is one decoded log record.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Error   string
	Fields  map[string]string // remaining keys, stringified
	Raw     string
}

var reserved = map[string]bool{
	"time": true, "level": true, "message": true, "error": true,
	"service": true, "stack": true,
}

// Parse decodes a zerolog JSON line. Lines that are not JSON objects come
// back as an entry carrying only Raw and Message.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: strings.TrimSpace(line)}

	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return entry
	}

	if v, ok := payload["time"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			entry.Time = ts
		}
	}
	entry.Level, _ = payload["level"].(string)
	entry.Message, _ = payload["message"].(string)
	entry.Error, _ = payload["error"].(string)

	for k, v := range payload {
		if reserved[k] {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]string)
		}
		entry.Fields[k] = fmt.Sprint(v)
	}
	return entry
}

// ReadEntries parses the last maxLines records of the log at path.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Format renders an entry as a single plain line:
//
//	15:04:05 WARN  request failed  method=POST status=401 – 401 Unauthorized
func Format(e Entry) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level))
	}
	b.WriteString(e.Message)

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" ")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, e.Fields[k])
		}
	}
	if e.Error != "" {
		b.WriteString(" – ")
		b.WriteString(e.Error)
	}
	return b.String()
}
