package render

import (
	"io"
	"net/http"

	"github.com/isora-dev/isora/pkg/head"
	"github.com/isora-dev/isora/pkg/state"
	"github.com/isora-dev/isora/pkg/vdom"
)

// StreamDocument writes the document in flushed sections: the head
// goes out before the page body is rendered, cutting time to first
// paint on slow pages. Loaders have already run by the time streaming
// starts, so the head and state are final.
type StreamDocument struct {
	doc     *Document
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStreamDocument wraps a response writer for sectioned output.
// Writers without http.Flusher degrade to buffered behavior.
func NewStreamDocument(w http.ResponseWriter, doc *Document) *StreamDocument {
	flusher, _ := w.(http.Flusher)
	return &StreamDocument{doc: doc, w: w, flusher: flusher}
}

// Write streams the document: doctype and head first, then the page
// markup, then the state payload and scripts.
func (s *StreamDocument) Write(page *vdom.VNode, hm *head.Manager, st *state.Store) error {
	cfg := s.doc.config

	if _, err := io.WriteString(s.w, `<!DOCTYPE html><html lang="`+escapeAttr(cfg.Lang)+`">`); err != nil {
		return err
	}

	headTree := vdom.Head(hm.Nodes())
	shell := New(Config{})
	if err := shell.ToWriter(s.w, headTree); err != nil {
		return err
	}
	if _, err := io.WriteString(s.w, `<body><div id="`+escapeAttr(cfg.RootID)+`">`); err != nil {
		return err
	}
	s.flush()

	if err := s.doc.renderer.ToWriter(s.w, page); err != nil {
		return err
	}
	if _, err := io.WriteString(s.w, `</div>`); err != nil {
		return err
	}
	s.flush()

	snapshot := []byte("{}")
	if st != nil {
		var err error
		snapshot, err = st.Snapshot()
		if err != nil {
			return err
		}
	}
	if _, err := io.WriteString(s.w,
		`<script type="application/json" id="`+StateElementID+`">`+string(snapshot)+`</script>`); err != nil {
		return err
	}
	if cfg.ClientScript != "" {
		if _, err := io.WriteString(s.w, `<script src="`+escapeAttr(cfg.ClientScript)+`" defer></script>`); err != nil {
			return err
		}
	}
	if cfg.ReloadScript != "" {
		if _, err := io.WriteString(s.w, `<script>`+cfg.ReloadScript+`</script>`); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(s.w, `</body></html>`); err != nil {
		return err
	}
	s.flush()
	return nil
}

func (s *StreamDocument) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
