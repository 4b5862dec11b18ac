// Package head collects document head tags during loaders and rendering.
//
// One Manager exists per request. Loaders and components register
// titles, meta tags, and links while the page is being produced; the
// document shell renders the final head from the manager. The title
// follows "deepest wins": the last SetTitle call before the document is
// assembled takes effect, which in practice is the page overriding its
// layouts.
package head

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/isora-dev/isora/pkg/vdom"
)

// Meta describes a <meta> element. Exactly one of Name, Property, or
// HTTPEquiv identifies the tag; registrations with the same identity
// replace earlier ones.
type Meta struct {
	Name      string
	Property  string // OpenGraph style
	HTTPEquiv string
	Content   string
}

func (m Meta) identity() string {
	switch {
	case m.Name != "":
		return "name:" + m.Name
	case m.Property != "":
		return "property:" + m.Property
	case m.HTTPEquiv != "":
		return "http-equiv:" + m.HTTPEquiv
	default:
		return "content:" + m.Content
	}
}

// Link describes a <link> element.
type Link struct {
	Rel         string
	Href        string
	Type        string
	Sizes       string
	Media       string
	CrossOrigin string
}

// Script describes a <script> element registered for the head.
type Script struct {
	Src    string
	Type   string
	Defer  bool
	Async  bool
	Inline string
}

// Manager accumulates head tags for one request. Safe for concurrent
// use: loaders run in parallel and may all touch the manager.
type Manager struct {
	mu            sync.Mutex
	title         string
	titleSet      bool
	titleTemplate string
	metaOrder     []string
	meta          map[string]Meta
	links         []Link
	scripts       []Script
	styles        []string
}

// NewManager creates an empty head manager.
func NewManager() *Manager {
	return &Manager{meta: make(map[string]Meta)}
}

// SetTitle sets the document title. Later calls win.
func (m *Manager) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
	m.titleSet = true
}

// SetTitleTemplate sets a fmt-style template applied to the title,
// e.g. "%s · Acme". A template without %s is used verbatim.
func (m *Manager) SetTitleTemplate(tmpl string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.titleTemplate = tmpl
}

// Title returns the effective title after template application.
func (m *Manager) Title() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderTitleLocked()
}

func (m *Manager) renderTitleLocked() string {
	if !m.titleSet {
		return ""
	}
	if m.titleTemplate == "" {
		return m.title
	}
	if !strings.Contains(m.titleTemplate, "%s") {
		return m.titleTemplate
	}
	return fmt.Sprintf(m.titleTemplate, m.title)
}

// AddMeta registers a meta tag, replacing any earlier tag with the same
// identity (name, property, or http-equiv).
func (m *Manager) AddMeta(meta Meta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := meta.identity()
	if _, seen := m.meta[id]; !seen {
		m.metaOrder = append(m.metaOrder, id)
	}
	m.meta[id] = meta
}

// AddLink registers a link tag. Duplicates by (rel, href) collapse.
func (m *Manager) AddLink(link Link) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.Rel == link.Rel && l.Href == link.Href {
			return
		}
	}
	m.links = append(m.links, link)
}

// AddScript registers a script tag for the head.
func (m *Manager) AddScript(s Script) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, s)
}

// AddStyle registers an inline CSS block.
func (m *Manager) AddStyle(css string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.styles = append(m.styles, css)
}

// Metas returns registered meta tags in first-registration order.
func (m *Manager) Metas() []Meta {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Meta, 0, len(m.metaOrder))
	for _, id := range m.metaOrder {
		out = append(out, m.meta[id])
	}
	return out
}

// Nodes renders the collected head entries to vdom nodes, ready for
// the document shell. The charset and viewport defaults come first so
// user registrations can never precede the charset declaration.
func (m *Manager) Nodes() []*vdom.VNode {
	m.mu.Lock()
	defer m.mu.Unlock()

	nodes := []*vdom.VNode{
		vdom.Meta(vdom.Charset("utf-8")),
		vdom.Meta(vdom.NameAttr("viewport"), vdom.Content("width=device-width, initial-scale=1")),
	}

	if title := m.renderTitleLocked(); title != "" {
		nodes = append(nodes, vdom.Title(vdom.Text(title)))
	}

	for _, id := range m.metaOrder {
		meta := m.meta[id]
		args := make([]any, 0, 4)
		if meta.Name != "" {
			args = append(args, vdom.NameAttr(meta.Name))
		}
		if meta.Property != "" {
			args = append(args, vdom.Property(meta.Property))
		}
		if meta.HTTPEquiv != "" {
			args = append(args, vdom.AttrOf("http-equiv", meta.HTTPEquiv))
		}
		args = append(args, vdom.Content(meta.Content))
		nodes = append(nodes, vdom.Meta(args...))
	}

	for _, link := range m.links {
		args := make([]any, 0, 6)
		args = append(args, vdom.Rel(link.Rel), vdom.Href(link.Href))
		if link.Type != "" {
			args = append(args, vdom.Type(link.Type))
		}
		if link.Sizes != "" {
			args = append(args, vdom.AttrOf("sizes", link.Sizes))
		}
		if link.Media != "" {
			args = append(args, vdom.AttrOf("media", link.Media))
		}
		if link.CrossOrigin != "" {
			args = append(args, vdom.AttrOf("crossorigin", link.CrossOrigin))
		}
		nodes = append(nodes, vdom.LinkEl(args...))
	}

	for _, css := range m.styles {
		nodes = append(nodes, vdom.Style(vdom.Raw(css)))
	}

	for _, s := range m.scripts {
		args := make([]any, 0, 5)
		if s.Src != "" {
			args = append(args, vdom.Src(s.Src))
		}
		if s.Type != "" {
			args = append(args, vdom.Type(s.Type))
		}
		if s.Defer {
			args = append(args, vdom.Defer(true))
		}
		if s.Async {
			args = append(args, vdom.Async(true))
		}
		if s.Inline != "" {
			args = append(args, vdom.Raw(s.Inline))
		}
		nodes = append(nodes, vdom.Script(args...))
	}

	return nodes
}

// SortedMetaIdentities returns meta identities sorted, for diagnostics.
func (m *Manager) SortedMetaIdentities() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.metaOrder...)
	sort.Strings(out)
	return out
}
