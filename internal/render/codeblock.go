package render

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docserve/internal/highlight"
)

// codeBlockRenderer replaces goldmark's fenced code block output with
// highlight service output. Code content goes straight from the source
// segments into the highlighter, so it is neither double-escaped nor
// re-parsed as Markdown.
type codeBlockRenderer struct {
	highlighter *highlight.Service
}

func newCodeBlockRenderer(highlighter *highlight.Service) renderer.NodeRenderer {
	return &codeBlockRenderer{highlighter: highlighter}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeBlockRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.FencedCodeBlock)
	language := string(n.Language(source))

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	if err := r.highlighter.Highlight(w, code.String(), language); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}
