package wiki

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/twellen/glossover/dom"
	"github.com/twellen/glossover/glossary"
)

// Rect is a node's layout box in document coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Geometry supplies layout information when a rendering host is attached.
// The engine works without one: panel placement falls back to a fixed offset
// from the marker and skips viewport clamping.
type Geometry interface {
	// RectOf returns the layout box of n, false when the node has none.
	RectOf(n *html.Node) (Rect, bool)
	// Viewport returns the visible width and height.
	Viewport() (w, h float64)
}

// fallback offsets used when no Geometry is attached.
const (
	fallbackOffsetX = 8
	fallbackOffsetY = 16
)

// Popup controls the single definition panel. At most one panel exists at a
// time; activating a second marker replaces the first, activating the same
// marker again dismisses it.
type Popup struct {
	doc    *dom.Document
	geo    Geometry
	cfg    Config
	logger *slog.Logger

	active  *Mark
	panel   *html.Node
	armedAt time.Time

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewPopup builds the popup controller. geo may be nil.
func NewPopup(doc *dom.Document, geo Geometry, cfg Config, logger *slog.Logger) *Popup {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Popup{doc: doc, geo: geo, cfg: cfg, logger: logger, Now: time.Now}
}

// Active returns the mark whose panel is currently shown, or nil.
func (p *Popup) Active() *Mark { return p.active }

// Activate shows the definition panel for the mark. Activating the mark that
// already owns the panel toggles it off instead.
func (p *Popup) Activate(m *Mark, e *glossary.Entry) {
	if m == nil || e == nil {
		return
	}
	if p.active != nil && p.active.ID == m.ID {
		p.Deactivate()
		return
	}
	p.Deactivate()

	x, y := p.position(m)
	panel := dom.Element("div",
		PopupAttr, m.ID,
		"style", fmt.Sprintf(
			"position:absolute;left:%.0fpx;top:%.0fpx;width:%dpx;max-height:%dpx;overflow:auto;",
			x, y, p.cfg.PanelWidth, p.cfg.PanelHeight),
	)

	// The panel subtree is assembled detached with plain node appends.
	// Subscribers see a single insert of the attribute-carrying panel, which
	// the engine's own subscription filters out.
	title := dom.Element("strong")
	title.AppendChild(dom.TextNode(e.Term))
	panel.AppendChild(title)

	for _, n := range parseDefinition(e.Definition) {
		panel.AppendChild(n)
	}

	if e.Link != "" {
		a := dom.Element("a", "href", e.Link, "target", "_blank", "rel", "noopener")
		a.AppendChild(dom.TextNode("Learn more"))
		panel.AppendChild(a)
	}

	p.doc.AppendChild(p.doc.Body(), panel)
	p.active = m
	p.panel = panel
	p.armedAt = p.Now()
	p.logger.Debug("wiki: popup activated", "mark", m.ID, "entry", e.ID)
}

// Deactivate removes the panel, if any.
func (p *Popup) Deactivate() {
	if p.panel != nil {
		p.doc.RemoveNode(p.panel)
	}
	p.active = nil
	p.panel = nil
}

// OnInteraction dismisses the panel when the interaction target is outside
// both the panel and the active marker. Interactions inside either keep the
// panel open; interactions before the arm delay elapses are ignored so the
// activating click does not immediately dismiss its own panel.
func (p *Popup) OnInteraction(target *html.Node) {
	if p.active == nil {
		return
	}
	if p.Now().Sub(p.armedAt) < p.cfg.DismissArmDelay {
		return
	}
	if dom.HasAttrUp(target, PopupAttr) {
		return
	}
	if dom.Ancestor(target, func(n *html.Node) bool { return n == p.active.Wrapper }) != nil {
		return
	}
	p.Deactivate()
}

// position computes the panel's top-left corner. With geometry attached the
// panel sits below the marker, flipped above when it would overflow the
// viewport bottom, and clamped horizontally. Without geometry it sits at a
// fixed offset from nothing in particular, which a rendering host then lays
// out normally.
func (p *Popup) position(m *Mark) (x, y float64) {
	if p.geo == nil {
		return fallbackOffsetX, fallbackOffsetY
	}
	r, ok := p.geo.RectOf(m.Wrapper)
	if !ok {
		return fallbackOffsetX, fallbackOffsetY
	}
	vw, vh := p.geo.Viewport()

	x = r.X
	if limit := vw - float64(p.cfg.PanelWidth); x > limit {
		x = limit
	}
	if x < 0 {
		x = 0
	}

	y = r.Y + r.H
	if y+float64(p.cfg.PanelHeight) > vh {
		if above := r.Y - float64(p.cfg.PanelHeight); above >= 0 {
			y = above
		}
	}
	return x, y
}

// parseDefinition turns the sanitized definition HTML into nodes. Parse
// failure degrades to a single text node with the raw string, so a malformed
// definition still shows something.
func parseDefinition(def string) []*html.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(def), ctx)
	if err != nil || len(nodes) == 0 {
		return []*html.Node{dom.TextNode(def)}
	}
	return nodes
}
