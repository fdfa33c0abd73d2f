package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(f string) bool {
	return f == formatTable || f == formatJSON || f == formatYAML
}

type printer struct {
	w      io.Writer
	format string
}

// print writes v as JSON or YAML, or calls table for the table format
func (p printer) print(v any, render func(w io.Writer)) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		out, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = p.w.Write(out)
		return err
	default:
		t := &table{out: p.w}
		render(t)
		return t.Flush()
	}
}

// cellGap is the number of spaces between aligned columns
const cellGap = 2

// table buffers tab-separated lines and aligns each run of consecutive tabbed
// lines on Flush. Cells are measured with lipgloss.Width, so emoji and other
// wide runes keep the columns straight.
type table struct {
	out io.Writer
	buf bytes.Buffer
}

func (t *table) Write(p []byte) (int, error) {
	return t.buf.Write(p)
}

// Flush writes the aligned text to the underlying writer
func (t *table) Flush() error {
	if t.buf.Len() == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(t.buf.String(), "\n"), "\n")
	t.buf.Reset()

	var b strings.Builder
	for i := 0; i < len(lines); {
		if !strings.Contains(lines[i], "\t") {
			b.WriteString(lines[i])
			b.WriteByte('\n')
			i++
			continue
		}
		j := i
		for j < len(lines) && strings.Contains(lines[j], "\t") {
			j++
		}
		alignBlock(&b, lines[i:j])
		i = j
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

// alignBlock pads every cell but the last in each line to its column width
func alignBlock(b *strings.Builder, lines []string) {
	rows := make([][]string, len(lines))
	var widths []int
	for i, line := range lines {
		rows[i] = strings.Split(line, "\t")
		for c, cell := range rows[i][:len(rows[i])-1] {
			if c == len(widths) {
				widths = append(widths, 0)
			}
			widths[c] = max(widths[c], lipgloss.Width(cell))
		}
	}
	for _, cells := range rows {
		for c, cell := range cells {
			b.WriteString(cell)
			if c < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[c]-lipgloss.Width(cell)+cellGap))
			}
		}
		b.WriteByte('\n')
	}
}

// toYAML renders v with its JSON field names and order. JSON is valid YAML, so the
// encoded document is parsed into a node tree and re-emitted in block style.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func row(w io.Writer, cols ...any) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
