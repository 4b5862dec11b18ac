package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/isora-dev/isora/pkg/vdom"
)

func renderString(t *testing.T, node *vdom.VNode) string {
	t.Helper()
	out, err := New(Config{}).ToString(node)
	require.NoError(t, err)
	return out
}

func TestRenderElement(t *testing.T) {
	out := renderString(t, vdom.Div(vdom.Class("box"), vdom.Text("hi")))
	assert.Equal(t, `<div class="box">hi</div>`, out)
}

func TestRenderNested(t *testing.T) {
	node := vdom.Ul(
		vdom.Class("list"),
		vdom.Li(vdom.Text("one")),
		vdom.Li(vdom.Text("two")),
	)
	out := renderString(t, node)
	assert.Equal(t, `<ul class="list"><li>one</li><li>two</li></ul>`, out)
}

func TestRenderAttrsSorted(t *testing.T) {
	node := vdom.El("div",
		vdom.AttrOf("id", "a"),
		vdom.AttrOf("class", "b"),
		vdom.AttrOf("title", "c"),
	)
	out := renderString(t, node)
	assert.Equal(t, `<div class="b" id="a" title="c"></div>`, out)
}

func TestRenderVoidElement(t *testing.T) {
	out := renderString(t, vdom.Img(vdom.Src("/a.png"), vdom.AttrOf("alt", "pic")))
	assert.Equal(t, `<img alt="pic" src="/a.png">`, out)
}

func TestRenderBooleanAttrs(t *testing.T) {
	out := renderString(t, vdom.Input(vdom.Type("checkbox"), vdom.Disabled(true)))
	assert.Equal(t, `<input disabled type="checkbox">`, out)

	out = renderString(t, vdom.Input(vdom.Type("checkbox"), vdom.Disabled(false)))
	assert.Equal(t, `<input type="checkbox">`, out)
}

func TestRenderEscapesText(t *testing.T) {
	out := renderString(t, vdom.P(vdom.Text(`<script>alert("x")</script>`)))
	assert.Equal(t, `<p>&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;</p>`, out)
}

func TestRenderEscapesAttrs(t *testing.T) {
	out := renderString(t, vdom.Div(vdom.AttrOf("title", `a"b<c`)))
	assert.Equal(t, `<div title="a&quot;b&lt;c"></div>`, out)
}

func TestRenderRawUnescaped(t *testing.T) {
	out := renderString(t, vdom.Div(vdom.Raw(`<b>bold</b>`)))
	assert.Equal(t, `<div><b>bold</b></div>`, out)
}

func TestRenderRawSanitized(t *testing.T) {
	r := New(Config{Sanitizer: NewUGCSanitizer()})
	out, err := r.ToString(vdom.Div(vdom.Raw(`<b>ok</b><script>alert(1)</script>`)))
	require.NoError(t, err)
	assert.Contains(t, out, "<b>ok</b>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderFragment(t *testing.T) {
	node := vdom.Fragment(
		vdom.P(vdom.Text("a")),
		vdom.P(vdom.Text("b")),
	)
	assert.Equal(t, `<p>a</p><p>b</p>`, renderString(t, node))
}

func TestRenderComponent(t *testing.T) {
	comp := vdom.Func(func() *vdom.VNode {
		return vdom.Span(vdom.Text("inner"))
	})
	out := renderString(t, vdom.Div(comp))
	assert.Equal(t, `<div><span>inner</span></div>`, out)
}

func TestRenderNil(t *testing.T) {
	assert.Equal(t, "", renderString(t, nil))
}

func TestRenderEmptyTag(t *testing.T) {
	_, err := New(Config{}).ToString(&vdom.VNode{Kind: vdom.KindElement})
	assert.Error(t, err)
}

func TestRenderActionBindings(t *testing.T) {
	node := vdom.Div(
		vdom.Button(vdom.On("click", "counter.increment"), vdom.Text("+")),
		vdom.Button(vdom.On("click", "counter.decrement"), vdom.Text("-")),
	)
	out := renderString(t, node)
	assert.Contains(t, out, `data-h="h1"`)
	assert.Contains(t, out, `data-h="h2"`)
	assert.Contains(t, out, `data-on-click="counter.increment"`)
	assert.Contains(t, out, `data-on-click="counter.decrement"`)
	// The binding never renders as a live event attribute.
	assert.NotContains(t, out, `onclick`)
}

func TestRenderMarkersSequential(t *testing.T) {
	r := New(Config{})
	node := vdom.Form(
		vdom.Input(vdom.On("input", "search.update")),
		vdom.Button(vdom.On("click", "search.submit"), vdom.Text("go")),
	)
	out, err := r.ToString(node)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), r.MarkerCount())
	assert.Less(t, strings.Index(out, `data-h="h1"`), strings.Index(out, `data-h="h2"`))

	r.Reset()
	out, err = r.ToString(vdom.Button(vdom.On("click", "again")))
	require.NoError(t, err)
	assert.Contains(t, out, `data-h="h1"`)
}

func TestRenderLeavesTreeUntouched(t *testing.T) {
	node := vdom.Div(
		vdom.Button(vdom.On("click", "a"), vdom.Text("a")),
		vdom.Button(vdom.On("click", "b"), vdom.Text("b")),
	)

	var wg sync.WaitGroup
	outs := make([]string, 4)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := New(Config{}).ToString(node)
			assert.NoError(t, err)
			outs[i] = out
		}(i)
	}
	wg.Wait()

	for _, out := range outs[1:] {
		assert.Equal(t, outs[0], out)
	}
	vdom.Walk(node, func(n *vdom.VNode) {
		assert.Empty(t, n.Marker)
	})
}

func TestRenderPretty(t *testing.T) {
	node := vdom.Div(
		vdom.Class("outer"),
		vdom.Div(vdom.Class("inner"), vdom.Text("x")),
	)
	out, err := New(Config{Pretty: true}).ToString(node)
	require.NoError(t, err)
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, `  <div class="inner">`)
}

func TestRenderedTreeParses(t *testing.T) {
	node := vdom.Div(
		vdom.Class("page"),
		vdom.H1(vdom.Text("Title & more")),
		vdom.Ul(vdom.Li(vdom.A(vdom.Href("/a?x=1&y=2"), vdom.Text("link")))),
		vdom.Img(vdom.Src("/i.png")),
		vdom.Button(vdom.On("click", "go"), vdom.Text("go")),
	)
	out := renderString(t, node)

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	var tags []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tags = append(tags, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	assert.Subset(t, tags, []string{"div", "h1", "ul", "li", "a", "img", "button"})
}
