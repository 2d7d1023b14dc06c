// Package highlight provides the shared syntax highlighting service used by
// the Markdown renderer. One Service instance is constructed at startup and
// injected wherever code blocks are rendered; the expensive setup happens at
// most once per process, on first use.
package highlight

import (
	stdhtml "html"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Options configures the style pair used for emitted CSS. Class-based output
// means the HTML itself is theme-neutral; themes are applied by serving the
// corresponding stylesheet.
type Options struct {
	LightStyle string
	DarkStyle  string
}

// DefaultOptions matches the GitHub light/dark pairing.
func DefaultOptions() Options {
	return Options{LightStyle: "github", DarkStyle: "github-dark"}
}

// supportedLanguages is the fixed grammar set registered with the service.
// Anything else falls back to escaped plain text.
var supportedLanguages = map[string]struct{}{
	"javascript": {}, "typescript": {}, "jsx": {}, "tsx": {},
	"python": {}, "rust": {}, "go": {}, "java": {}, "c": {}, "cpp": {},
	"html": {}, "css": {}, "json": {}, "yaml": {}, "toml": {},
	"bash": {}, "shell": {}, "sh": {}, "sql": {}, "graphql": {},
	"markdown": {}, "diff": {}, "text": {}, "plaintext": {},
}

// Service converts raw code into syntax-colored HTML fragments.
// Safe for concurrent use; initialization is guarded so concurrent first
// calls share one setup instead of racing duplicate builds.
type Service struct {
	opts Options

	initOnce  sync.Once
	formatter *chromahtml.Formatter
	light     *chroma.Style
	dark      *chroma.Style
}

// NewService constructs an uninitialized Service. Setup is deferred until the
// first Highlight or CSS call.
func NewService(opts Options) *Service {
	if opts.LightStyle == "" {
		opts.LightStyle = DefaultOptions().LightStyle
	}
	if opts.DarkStyle == "" {
		opts.DarkStyle = DefaultOptions().DarkStyle
	}
	return &Service{opts: opts}
}

func (s *Service) init() {
	s.initOnce.Do(func() {
		s.formatter = chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.TabWidth(4),
		)
		s.light = styles.Get(s.opts.LightStyle)
		s.dark = styles.Get(s.opts.DarkStyle)
	})
}

// Highlight writes an HTML fragment for the given source and language.
//
// Unregistered or unrecognized languages degrade to an escaped plain-text
// code block. The output is well-formed HTML in every path and never contains
// unescaped input.
func (s *Service) Highlight(w io.Writer, source, language string) error {
	s.init()

	lang := strings.ToLower(strings.TrimSpace(language))
	if _, ok := supportedLanguages[lang]; !ok {
		return writePlain(w, source)
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		return writePlain(w, source)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return writePlain(w, source)
	}

	return s.formatter.Format(w, s.light, iterator)
}

// LightCSS writes the stylesheet for the light style.
func (s *Service) LightCSS(w io.Writer) error {
	s.init()
	return s.formatter.WriteCSS(w, s.light)
}

// DarkCSS writes the stylesheet for the dark style.
func (s *Service) DarkCSS(w io.Writer) error {
	s.init()
	return s.formatter.WriteCSS(w, s.dark)
}

// writePlain emits an escaped plain-text code block.
func writePlain(w io.Writer, source string) error {
	if _, err := io.WriteString(w, `<pre class="chroma"><code>`); err != nil {
		return err
	}
	if _, err := io.WriteString(w, stdhtml.EscapeString(source)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</code></pre>")
	return err
}
