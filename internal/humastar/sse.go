// Package humastar serves Datastar hypermedia from Huma operations: server
// sent element patches and signals, request signals, and the Link header
// sources the API's transformer reads.
package humastar

import (
	"bytes"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/joeblew999/plat-mapstyle/internal/templates"
)

// Empty is the placeholder shown by RenderList when there is nothing to list.
type Empty struct {
	Title   string
	Message string
}

// SelectOptionData feeds the select-option fragment.
type SelectOptionData struct {
	Value string
	Label string
}

// Handler is embedded by editor handlers that answer with fragments.
type Handler struct {
	Renderer *templates.Renderer
}

// Stream answers with an event stream and hands fn the open stream.
func (h *Handler) Stream(fn func(sse SSE)) *huma.StreamResponse {
	return &huma.StreamResponse{Body: func(ctx huma.Context) {
		fn(NewSSE(ctx))
	}}
}

// RenderList renders one tmpl fragment per item, or the empty-state
// fragment when items is empty. Fragments that fail to render are skipped.
func (h *Handler) RenderList(tmpl string, items []any, empty Empty) string {
	var buf bytes.Buffer
	if len(items) == 0 {
		_ = h.Renderer.RenderToBuffer(&buf, "empty-state", empty)
		return buf.String()
	}
	for _, item := range items {
		_ = h.Renderer.RenderToBuffer(&buf, tmpl, item)
	}
	return buf.String()
}

// RenderSelect renders a placeholder option with an empty value followed by
// options.
func (h *Handler) RenderSelect(placeholder string, options []SelectOptionData) string {
	var buf bytes.Buffer
	for _, opt := range append([]SelectOptionData{{Label: placeholder}}, options...) {
		_ = h.Renderer.RenderToBuffer(&buf, "select-option", opt)
	}
	return buf.String()
}

// SSE is a Datastar event stream opened on a Huma response.
type SSE struct {
	*datastar.ServerSentEventGenerator
}

// NewSSE opens the stream on ctx's underlying writer.
func NewSSE(ctx huma.Context) SSE {
	r, w := humago.Unwrap(ctx)
	return SSE{datastar.NewSSE(w, r)}
}

// Patch replaces the inner HTML of the elements matching selector.
func (s SSE) Patch(html, selector string) {
	s.PatchElements(html,
		datastar.WithSelector(selector),
		datastar.WithModeInner(),
		datastar.WithViewTransitions(),
	)
}

// Error sets the error signal the editor shows as a banner.
func (s SSE) Error(msg string) { s.Signals(map[string]any{"error": msg}) }

// Success sets the success signal.
func (s SSE) Success(msg string) { s.Signals(map[string]any{"success": msg}) }

func (s SSE) Signals(signals map[string]any) {
	_ = s.MarshalAndPatchSignals(signals)
}
