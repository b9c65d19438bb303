package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table prints left-aligned columns padded by display width, so exercise names with
// wide runes still line up.
type table struct {
	header []string
	rows   [][]string
}

func newTable(header ...string) *table {
	return &table{header: header}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.header))
	for i, h := range t.header {
		w[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i >= len(w) {
				break
			}
			if cw := runewidth.StringWidth(c); cw > w[i] {
				w[i] = cw
			}
		}
	}
	return w
}

func (t *table) write(out io.Writer) error {
	w := t.widths()
	line := func(cells []string) string {
		parts := make([]string, len(w))
		for i := range w {
			var c string
			if i < len(cells) {
				c = cells[i]
			}
			if i == len(w)-1 {
				parts[i] = c
			} else {
				parts[i] = runewidth.FillRight(c, w[i])
			}
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	if _, err := fmt.Fprintln(out, line(t.header)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, row := range t.rows {
		if _, err := fmt.Fprintln(out, line(row)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
