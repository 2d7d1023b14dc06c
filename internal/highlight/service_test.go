package highlight

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHighlight_KnownLanguage(t *testing.T) {
	svc := NewService(DefaultOptions())

	var buf bytes.Buffer
	err := svc.Highlight(&buf, "package main\n\nfunc main() {}\n", "go")
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "chroma")
	require.Contains(t, out, "<pre")
	// Class-based output, no inline theme styles on tokens.
	require.Contains(t, out, "class=")
}

func TestHighlight_UnknownLanguage_EscapedFallback(t *testing.T) {
	svc := NewService(DefaultOptions())

	var buf bytes.Buffer
	err := svc.Highlight(&buf, "<script>alert(1)</script>", "klingon")
	require.NoError(t, err)

	out := buf.String()
	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
	require.True(t, strings.HasPrefix(out, `<pre class="chroma"><code>`))
	require.True(t, strings.HasSuffix(out, "</code></pre>"))
}

func TestHighlight_EmptyLanguage_EscapedFallback(t *testing.T) {
	svc := NewService(DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, svc.Highlight(&buf, "plain text & more", ""))
	require.Contains(t, buf.String(), "plain text &amp; more")
}

func TestHighlight_ConcurrentFirstUse(t *testing.T) {
	svc := NewService(DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf bytes.Buffer
			require.NoError(t, svc.Highlight(&buf, "x = 1", "python"))
			require.NotEmpty(t, buf.String())
		}()
	}
	wg.Wait()
}

func TestHighlight_Deterministic(t *testing.T) {
	svc := NewService(DefaultOptions())

	var a, b bytes.Buffer
	require.NoError(t, svc.Highlight(&a, "SELECT 1;", "sql"))
	require.NoError(t, svc.Highlight(&b, "SELECT 1;", "sql"))
	require.Equal(t, a.String(), b.String())
}

func TestCSS_BothThemes(t *testing.T) {
	svc := NewService(Options{LightStyle: "github", DarkStyle: "github-dark"})

	var light, dark bytes.Buffer
	require.NoError(t, svc.LightCSS(&light))
	require.NoError(t, svc.DarkCSS(&dark))
	require.NotEmpty(t, light.String())
	require.NotEmpty(t, dark.String())
}
