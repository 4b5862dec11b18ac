// Package render turns vdom trees into HTML.
//
// Renderer produces the markup for one component tree; Document wraps
// a rendered tree in the full HTML shell with head tags and the
// hydration state payload.
package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	ierrors "github.com/isora-dev/isora/internal/errors"
	"github.com/isora-dev/isora/pkg/vdom"
)

// Config configures the renderer.
type Config struct {
	// Pretty indents output for readability. Development only; it
	// inflates output and can introduce whitespace text nodes.
	Pretty bool

	// Indent is the per-level indent string in pretty mode.
	// Defaults to two spaces.
	Indent string

	// Sanitizer, when set, filters KindRaw content before it is
	// written. Raw nodes bypass escaping, so untrusted fragments
	// should pass through a policy (see WithUGCSanitizer).
	Sanitizer Sanitizer
}

// Renderer renders vdom trees to HTML. Not safe for concurrent use;
// create one per request or guard with a pool.
type Renderer struct {
	config  Config
	markers vdom.MarkerGen
}

// New creates a renderer.
func New(config Config) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// ToString renders a tree to a string.
func (r *Renderer) ToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.ToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToWriter streams a tree to w. Marker ids continue from previous
// calls; use Reset between requests.
func (r *Renderer) ToWriter(w io.Writer, node *vdom.VNode) error {
	return r.renderNode(w, node, 0)
}

// MarkerCount returns how many hydration markers were assigned.
func (r *Renderer) MarkerCount() uint32 { return r.markers.Count() }

// Reset restarts marker numbering for renderer reuse.
func (r *Renderer) Reset() { r.markers.Reset() }

func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, depth)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeText(node.Text))
		return err
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
		return nil
	case vdom.KindComponent:
		if node.Comp == nil {
			return nil
		}
		return r.renderNode(w, node.Comp.Render(), depth)
	case vdom.KindRaw:
		return r.renderRaw(w, node)
	default:
		return ierrors.New("I101").Wrap(fmt.Errorf("kind %d", node.Kind))
	}
}

func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode, depth int) error {
	if node.Tag == "" {
		return ierrors.Newf(ierrors.CategoryRender, "element node with empty tag")
	}

	if r.config.Pretty && depth > 0 {
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "<"+node.Tag); err != nil {
		return err
	}
	if err := r.renderAttrs(w, node); err != nil {
		return err
	}

	if vdom.IsVoidElement(node.Tag) {
		_, err := io.WriteString(w, ">")
		if err == nil && r.config.Pretty {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	blockChildren := r.config.Pretty && len(node.Children) > 0 && !isInlineOnly(node)
	if blockChildren {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}

	if blockChildren {
		if err := r.writeIndent(w, depth); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "</"+node.Tag+">"); err != nil {
		return err
	}
	if r.config.Pretty {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// renderAttrs writes attributes in sorted key order so output is
// deterministic. Action bindings ("on" keys) become data-on-<event>
// attributes, and elements carrying any binding get a data-h marker.
func (r *Renderer) renderAttrs(w io.Writer, node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if isBindingKey(key) {
			continue
		}
		value := node.Props[key]
		if value == nil {
			continue
		}
		if b, ok := value.(bool); ok {
			if b {
				if _, err := io.WriteString(w, " "+key); err != nil {
					return err
				}
			}
			continue
		}
		s := vdom.ValueString(value)
		if _, err := io.WriteString(w, ` `+key+`="`+escapeAttr(s)+`"`); err != nil {
			return err
		}
	}

	if node.NeedsMarker() {
		// The marker id lives in the output and the renderer's
		// generator, never on the node, so a tree can be rendered
		// concurrently.
		marker := r.markers.Next()
		if _, err := io.WriteString(w, ` data-h="`+marker+`"`); err != nil {
			return err
		}
		for _, key := range keys {
			if !isBindingKey(key) {
				continue
			}
			action := vdom.ValueString(node.Props[key])
			event := key[2:]
			if _, err := io.WriteString(w, ` data-on-`+event+`="`+escapeAttr(action)+`"`); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Renderer) renderRaw(w io.Writer, node *vdom.VNode) error {
	html := node.Text
	if r.config.Sanitizer != nil {
		html = r.config.Sanitizer.Sanitize(html)
	}
	_, err := io.WriteString(w, html)
	return err
}

func (r *Renderer) writeIndent(w io.Writer, depth int) error {
	_, err := io.WriteString(w, strings.Repeat(r.config.Indent, depth))
	return err
}

func isBindingKey(key string) bool {
	return strings.HasPrefix(key, "on") && len(key) > 2
}

// inlineTags are elements whose children stay on one line in pretty
// mode so text flow is not broken by whitespace.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "code": true, "em": true,
	"i": true, "label": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "title": true,
}

func isInlineOnly(node *vdom.VNode) bool {
	if inlineTags[node.Tag] {
		return true
	}
	for _, child := range node.Children {
		if child != nil && child.Kind != vdom.KindText && child.Kind != vdom.KindRaw {
			return false
		}
	}
	return true
}
