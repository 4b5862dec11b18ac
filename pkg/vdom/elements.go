package vdom

// voidElements cannot have children and render without a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// IsVoidElement reports whether tag is an HTML void element.
func IsVoidElement(tag string) bool { return voidElements[tag] }

// El creates an element node. Arguments may be, in any mix:
// Attr, []Attr, *VNode, []*VNode, Component, string (text shorthand),
// or nil (ignored, which keeps conditional construction tidy).
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}
	for _, arg := range args {
		appendArg(node, arg)
	}
	return node
}

func appendArg(node *VNode, arg any) {
	switch v := arg.(type) {
	case nil:
	case Attr:
		if v.Key != "" {
			node.Props[v.Key] = v.Value
		}
	case []Attr:
		for _, a := range v {
			if a.Key != "" {
				node.Props[a.Key] = a.Value
			}
		}
	case *VNode:
		if v != nil {
			node.Children = append(node.Children, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				node.Children = append(node.Children, c)
			}
		}
	case Component:
		node.Children = append(node.Children, &VNode{Kind: KindComponent, Comp: v})
	case string:
		node.Children = append(node.Children, Text(v))
	}
}

// Document structure

func Html(args ...any) *VNode { return El("html", args...) }
func Head(args ...any) *VNode { return El("head", args...) }
func Body(args ...any) *VNode { return El("body", args...) }

// Sectioning

func Header(args ...any) *VNode  { return El("header", args...) }
func Footer(args ...any) *VNode  { return El("footer", args...) }
func Main(args ...any) *VNode    { return El("main", args...) }
func Nav(args ...any) *VNode     { return El("nav", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func Article(args ...any) *VNode { return El("article", args...) }
func Aside(args ...any) *VNode   { return El("aside", args...) }

// Headings

func H1(args ...any) *VNode { return El("h1", args...) }
func H2(args ...any) *VNode { return El("h2", args...) }
func H3(args ...any) *VNode { return El("h3", args...) }
func H4(args ...any) *VNode { return El("h4", args...) }
func H5(args ...any) *VNode { return El("h5", args...) }
func H6(args ...any) *VNode { return El("h6", args...) }

// Grouping content

func Div(args ...any) *VNode        { return El("div", args...) }
func P(args ...any) *VNode          { return El("p", args...) }
func Pre(args ...any) *VNode        { return El("pre", args...) }
func Blockquote(args ...any) *VNode { return El("blockquote", args...) }
func Ol(args ...any) *VNode         { return El("ol", args...) }
func Ul(args ...any) *VNode         { return El("ul", args...) }
func Li(args ...any) *VNode         { return El("li", args...) }
func Dl(args ...any) *VNode         { return El("dl", args...) }
func Dt(args ...any) *VNode         { return El("dt", args...) }
func Dd(args ...any) *VNode         { return El("dd", args...) }
func Figure(args ...any) *VNode     { return El("figure", args...) }
func Figcaption(args ...any) *VNode { return El("figcaption", args...) }
func Hr(args ...any) *VNode         { return El("hr", args...) }

// Text-level semantics

func A(args ...any) *VNode      { return El("a", args...) }
func Span(args ...any) *VNode   { return El("span", args...) }
func Em(args ...any) *VNode     { return El("em", args...) }
func Strong(args ...any) *VNode { return El("strong", args...) }
func Small(args ...any) *VNode  { return El("small", args...) }
func Code(args ...any) *VNode   { return El("code", args...) }
func Br(args ...any) *VNode     { return El("br", args...) }
func Time(args ...any) *VNode   { return El("time", args...) }

// Embedded content

func Img(args ...any) *VNode    { return El("img", args...) }
func Iframe(args ...any) *VNode { return El("iframe", args...) }
func Svg(args ...any) *VNode    { return El("svg", args...) }
func Video(args ...any) *VNode  { return El("video", args...) }
func Audio(args ...any) *VNode  { return El("audio", args...) }
func Source(args ...any) *VNode { return El("source", args...) }

// Tables

func Table(args ...any) *VNode { return El("table", args...) }
func Thead(args ...any) *VNode { return El("thead", args...) }
func Tbody(args ...any) *VNode { return El("tbody", args...) }
func Tfoot(args ...any) *VNode { return El("tfoot", args...) }
func Tr(args ...any) *VNode    { return El("tr", args...) }
func Th(args ...any) *VNode    { return El("th", args...) }
func Td(args ...any) *VNode    { return El("td", args...) }

// Forms

func Form(args ...any) *VNode     { return El("form", args...) }
func Label(args ...any) *VNode    { return El("label", args...) }
func Input(args ...any) *VNode    { return El("input", args...) }
func Button(args ...any) *VNode   { return El("button", args...) }
func Select(args ...any) *VNode   { return El("select", args...) }
func Option(args ...any) *VNode   { return El("option", args...) }
func Textarea(args ...any) *VNode { return El("textarea", args...) }
func Fieldset(args ...any) *VNode { return El("fieldset", args...) }

// Head elements (used by the head manager and document shell)

func Title(args ...any) *VNode    { return El("title", args...) }
func Meta(args ...any) *VNode     { return El("meta", args...) }
func LinkEl(args ...any) *VNode   { return El("link", args...) }
func Style(args ...any) *VNode    { return El("style", args...) }
func Script(args ...any) *VNode   { return El("script", args...) }
func Base(args ...any) *VNode     { return El("base", args...) }
func Noscript(args ...any) *VNode { return El("noscript", args...) }
