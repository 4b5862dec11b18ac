package render

import (
	"bytes"
	"io"

	"github.com/isora-dev/isora/pkg/head"
	"github.com/isora-dev/isora/pkg/state"
	"github.com/isora-dev/isora/pkg/vdom"
)

// StateElementID is the id of the inline script element carrying the
// hydration snapshot. The client runtime reads and JSON-parses its
// text content.
const StateElementID = "__isora_state__"

// DocumentConfig describes the HTML shell around a rendered page.
type DocumentConfig struct {
	// Lang is the <html lang> attribute. Defaults to "en".
	Lang string

	// RootID is the id of the mount element wrapping the page markup.
	// Defaults to "app".
	RootID string

	// ClientScript is the URL of the client runtime bundle. Empty
	// disables the script tag (static-only rendering).
	ClientScript string

	// ReloadScript is an inline snippet injected at the end of body.
	// The dev server uses it for live reload; empty in production.
	ReloadScript string
}

// Document assembles complete HTML pages: doctype, head from a head
// manager, the rendered tree inside the mount element, the hydration
// state payload, and the client runtime script.
type Document struct {
	config   DocumentConfig
	renderer *Renderer
}

// NewDocument creates a document assembler sharing the renderer's
// output settings.
func NewDocument(config DocumentConfig, renderer *Renderer) *Document {
	if config.Lang == "" {
		config.Lang = "en"
	}
	if config.RootID == "" {
		config.RootID = "app"
	}
	return &Document{config: config, renderer: renderer}
}

// WriteTo renders the full document. The state snapshot is embedded as
// an inert application/json script so markup and data always travel
// together; the client parses it before attaching behavior.
func (d *Document) WriteTo(w io.Writer, page *vdom.VNode, hm *head.Manager, st *state.Store) error {
	body, err := d.renderer.ToString(page)
	if err != nil {
		return err
	}

	snapshot := []byte("{}")
	if st != nil {
		snapshot, err = st.Snapshot()
		if err != nil {
			return err
		}
	}

	headNodes := hm.Nodes()

	children := []*vdom.VNode{
		vdom.Div(vdom.ID(d.config.RootID), vdom.Raw(body)),
		vdom.Script(
			vdom.Type("application/json"),
			vdom.ID(StateElementID),
			vdom.Raw(string(snapshot)),
		),
	}
	if d.config.ClientScript != "" {
		children = append(children, vdom.Script(
			vdom.Src(d.config.ClientScript),
			vdom.Defer(true),
		))
	}
	if d.config.ReloadScript != "" {
		children = append(children, vdom.Script(vdom.Raw(d.config.ReloadScript)))
	}

	doc := vdom.Html(
		vdom.AttrOf("lang", d.config.Lang),
		vdom.Head(headNodes),
		vdom.Body(children),
	)

	if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
		return err
	}
	// The shell is rendered by a fresh renderer so page markers are
	// not re-numbered; the body is already final HTML.
	shell := New(Config{Pretty: d.renderer.config.Pretty, Indent: d.renderer.config.Indent})
	return shell.ToWriter(w, doc)
}

// Render renders the full document to a byte slice.
func (d *Document) Render(page *vdom.VNode, hm *head.Manager, st *state.Store) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteTo(&buf, page, hm, st); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
