package markdown

import (
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Mermaid is a Goldmark extension that renders ```mermaid fenced code blocks
// as <pre class="mermaid"> elements so the client-side mermaid runtime can
// pick them up, instead of emitting them as highlighted code.
type Mermaid struct{}

// Extend registers the mermaid AST transformer and renderer.
func (Mermaid) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(mermaidTransformer{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mermaidRenderer{}, 100),
	))
}

// KindMermaidBlock identifies diagram blocks in the AST.
var KindMermaidBlock = gmast.NewNodeKind("MermaidBlock")

// MermaidBlock replaces a mermaid fenced code block after parsing. Its lines
// hold the raw diagram source.
type MermaidBlock struct {
	gmast.BaseBlock
}

func (b *MermaidBlock) Kind() gmast.NodeKind {
	return KindMermaidBlock
}

func (b *MermaidBlock) Dump(source []byte, level int) {
	gmast.DumpHelper(b, source, level, nil, nil)
}

// mermaidTransformer swaps mermaid fences for MermaidBlock nodes so the
// default fenced-code renderer never sees them.
type mermaidTransformer struct{}

func (mermaidTransformer) Transform(doc *gmast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var fences []*gmast.FencedCodeBlock
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if fc, ok := n.(*gmast.FencedCodeBlock); ok && string(fc.Language(source)) == "mermaid" {
			fences = append(fences, fc)
		}
		return gmast.WalkContinue, nil
	})

	for _, fc := range fences {
		block := &MermaidBlock{}
		block.SetLines(fc.Lines())
		parent := fc.Parent()
		parent.ReplaceChild(parent, fc, block)
	}
}

type mermaidRenderer struct{}

func (r *mermaidRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMermaidBlock, r.render)
}

func (r *mermaidRenderer) render(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<pre class="mermaid">`)
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
		}
		return gmast.WalkContinue, nil
	}
	_, _ = w.WriteString("</pre>\n")
	return gmast.WalkContinue, nil
}
