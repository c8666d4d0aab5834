package ingest

import (
	"strings"

	"inkpipe/internal/domain/content"
)

const delimiter = "---"

type decodeState int

const (
	beforeBlock decodeState = iota
	inBlock
	inBody
)

// Decode splits text into its leading metadata block and body. It never
// fails: text without a complete block comes back as body with empty
// metadata.
func Decode(text string) (content.Metadata, string) {
	lines := splitLines(text)
	meta := content.NewMetadata()
	state := beforeBlock
	bodyStart := -1

scan:
	for i, line := range lines {
		switch state {
		case beforeBlock:
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if trimmed != delimiter {
				return content.NewMetadata(), text
			}
			state = inBlock
		case inBlock:
			if strings.TrimSpace(line) == delimiter {
				state = inBody
				bodyStart = i + 1
				break scan
			}
			key, val, ok := parseField(line)
			if !ok {
				continue
			}
			// 重复的 key 覆盖值，位置不变
			meta.Set(key, val)
		}
	}

	// 没找到闭合的 ---，整体当正文
	if state != inBody {
		return content.NewMetadata(), text
	}
	body := strings.Join(lines[bodyStart:], "\n")
	return meta, strings.TrimSpace(body)
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func parseField(line string) (string, content.Value, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", content.Value{}, false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" {
		return "", content.Value{}, false
	}
	raw := strings.TrimSpace(line[idx+1:])
	if len(raw) >= 2 && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		return key, content.List(parseList(raw[1 : len(raw)-1])...), true
	}
	return key, content.Scalar(raw), true
}

// parseList splits on every comma; commas inside quotes are not special.
func parseList(inner string) []string {
	if strings.TrimSpace(inner) == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
			p = p[1 : len(p)-1]
		}
		out = append(out, p)
	}
	return out
}

// Encode renders the block contents (without delimiters): known fields in
// canonical order, then any other keys in the order they were set.
func Encode(meta content.Metadata) string {
	var lines []string
	for _, key := range content.CanonicalOrder {
		if v, ok := meta.Get(key); ok {
			lines = append(lines, encodeField(key, v))
		}
	}
	for _, key := range meta.Keys() {
		if content.IsStandardField(key) {
			continue
		}
		v, _ := meta.Get(key)
		lines = append(lines, encodeField(key, v))
	}
	return strings.Join(lines, "\n")
}

func encodeField(key string, v content.Value) string {
	if !v.IsList() {
		return key + ": " + v.Str()
	}
	items := v.Items()
	quoted := make([]string, len(items))
	for i, item := range items {
		// a leading quote would otherwise be stripped by parseList
		if strings.Contains(item, " ") || strings.HasPrefix(item, `"`) {
			item = `"` + item + `"`
		}
		quoted[i] = item
	}
	return key + ": [" + strings.Join(quoted, ", ") + "]"
}

// Render produces a complete document: block, blank line, trimmed body.
func Render(meta content.Metadata, body string) string {
	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteString("\n")
	if block := Encode(meta); block != "" {
		b.WriteString(block)
		b.WriteString("\n")
	}
	b.WriteString(delimiter)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String()
}

// HasBlock reports whether text opens with a metadata delimiter.
func HasBlock(text string) bool {
	return strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), delimiter)
}
