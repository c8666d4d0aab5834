package render

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

type Heading struct {
	Level int
	ID    string
	Text  string
}

// Image is a markdown image reference as written in the body.
type Image struct {
	Alt  string
	Dest string
}

type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &MarkdownRenderer{md: md}
}

type MarkdownResult struct {
	HTML     []byte
	Headings []Heading
	Images   []Image
}

func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	reader := text.NewReader(src)
	doc := r.md.Parser().Parse(reader, parser.WithContext(ctx))

	var heads []Heading
	var images []Image
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			var idStr string
			if id, ok := node.AttributeString("id"); ok {
				switch v := id.(type) {
				case string:
					idStr = v
				case []byte:
					idStr = string(v)
				}
			}
			heads = append(heads, Heading{
				Level: node.Level,
				ID:    idStr,
				Text:  childText(node, src),
			})
		case *ast.Image:
			images = append(images, Image{
				Alt:  strings.TrimSpace(childText(node, src)),
				Dest: string(node.Destination),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML:     buf.Bytes(),
		Headings: heads,
		Images:   images,
	}, nil
}

// PlainText renders markdown and returns the visible text with whitespace
// runs collapsed to single spaces.
func (r *MarkdownRenderer) PlainText(src []byte) (string, error) {
	return r.text(src, "script, style")
}

// ProseText is PlainText without code blocks and inline code.
func (r *MarkdownRenderer) ProseText(src []byte) (string, error) {
	return r.text(src, "script, style, pre, code")
}

func (r *MarkdownRenderer) text(src []byte, drop string) (string, error) {
	res, err := r.Render(src)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.HTML))
	if err != nil {
		return "", err
	}
	doc.Find(drop).Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

func childText(n ast.Node, src []byte) string {
	var b bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		default:
			b.WriteString(childText(c, src))
		}
	}
	return b.String()
}
