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
// non-positive maxLines returns every line. A missing file yields no lines.
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

// Entry is one decoded JSON log line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Fields    []Field // remaining keys, sorted by name
	Raw       string  // original text when the line is not JSON
}

// Field is an extra key/value pair carried by an entry.
type Field struct {
	Key   string
	Value string
}

// reserved keys are rendered in fixed positions rather than as fields.
var reserved = map[string]struct{}{
	"time": {}, "level": {}, "message": {}, "component": {}, "app": {},
}

// Parse decodes a zerolog JSON line. Lines that are not JSON objects come back
// with only Raw set.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{Raw: line}
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return Entry{Raw: line}
	}

	e := Entry{
		Level:     stringField(obj, "level"),
		Component: stringField(obj, "component"),
		Message:   stringField(obj, "message"),
	}
	if ts := stringField(obj, "time"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = t
		}
	}
	for k, v := range obj {
		if _, skip := reserved[k]; skip {
			continue
		}
		e.Fields = append(e.Fields, Field{Key: k, Value: formatValue(v)})
	}
	sort.Slice(e.Fields, func(i, j int) bool { return e.Fields[i].Key < e.Fields[j].Key })
	return e
}

// ParseLines decodes every line.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		out = append(out, Parse(line))
	}
	return out
}

// IsJSON reports whether the entry was decoded from a JSON line.
func (e Entry) IsJSON() bool {
	return e.Raw == "" && (e.Level != "" || e.Message != "" || !e.Time.IsZero())
}

// LevelLabel returns the upper-case level padded for column alignment.
func (e Entry) LevelLabel() string {
	level := strings.ToUpper(e.Level)
	if level == "" {
		level = "-"
	}
	return fmt.Sprintf("%-5s", level)
}

// String renders the entry as plain text:
//
//	15:04:05 WARN  [poller] fetch failed error="list returned status 500"
func (e Entry) String() string {
	if !e.IsJSON() {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format(time.TimeOnly))
		b.WriteByte(' ')
	}
	b.WriteString(e.LevelLabel())
	if e.Component != "" {
		b.WriteString(" [")
		b.WriteString(e.Component)
		b.WriteByte(']')
	}
	if e.Message != "" {
		b.WriteByte(' ')
		b.WriteString(e.Message)
	}
	for _, f := range e.Fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case nil:
		return "null"
	case float64, bool:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
