package calldump

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"callmodel/internal/calls"
)

// Options control text rendering.
type Options struct {
	// Color highlights keys and variant names.
	Color bool
	// Indent is the per-level indentation, two spaces when empty.
	Indent string
}

// Text renders call with default options.
func (d *Dumper) Text(call calls.Call) (string, error) {
	var sb strings.Builder
	if err := d.Write(&sb, call, Options{}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write renders call to w. Nothing is written when call is stale.
func (d *Dumper) Write(w io.Writer, call calls.Call, opts Options) error {
	root, err := d.tree(call)
	if err != nil {
		return err
	}
	p := newPainter(opts)
	var sb strings.Builder
	sb.WriteString(p.header(root.key) + ":\n")
	p.block(&sb, root.children, 1)
	_, err = io.WriteString(w, sb.String())
	return err
}

type painter struct {
	indent string
	header func(a ...any) string
	key    func(a ...any) string
	value  func(a ...any) string
}

func newPainter(opts Options) *painter {
	p := &painter{indent: opts.Indent}
	if p.indent == "" {
		p.indent = "  "
	}
	header := color.New(color.FgMagenta, color.Bold)
	key := color.New(color.FgCyan)
	value := color.New(color.FgGreen)
	for _, c := range []*color.Color{header, key, value} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	p.header = header.SprintFunc()
	p.key = key.SprintFunc()
	p.value = value.SprintFunc()
	return p
}

// block writes siblings at depth. Keys of leaf siblings are padded to a common
// display width so that the "=" signs line up.
func (p *painter) block(sb *strings.Builder, nodes []node, depth int) {
	width := 0
	for _, n := range nodes {
		if n.children == nil {
			width = max(width, runewidth.StringWidth(n.key))
		}
	}
	prefix := strings.Repeat(p.indent, depth)
	for _, n := range nodes {
		sb.WriteString(prefix)
		if n.children != nil {
			sb.WriteString(p.key(n.key) + ":\n")
			p.block(sb, n.children, depth+1)
			continue
		}
		pad := width - runewidth.StringWidth(n.key)
		sb.WriteString(p.key(n.key) + strings.Repeat(" ", pad) + " = " + p.value(n.value) + "\n")
	}
}
