package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/ghdoc/internal/domain/document"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RegionResponse is the JSON representation of a surface region.
type RegionResponse struct {
	Handle int    `json:"handle"`
	Kind   string `json:"kind"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// TextResponse carries the whole surface text.
type TextResponse struct {
	Lines []string `json:"lines"`
}

// EditingResponse reports the region in edit mode, if any.
type EditingResponse struct {
	Editing bool            `json:"editing"`
	Region  *RegionResponse `json:"region,omitempty"`
}

// SaveResponse reports how many remote operations a save started. Error is
// set when some pending changes were rejected before dispatch.
type SaveResponse struct {
	Dispatched int    `json:"dispatched"`
	Error      string `json:"error,omitempty"`
}

// PreviewResponse is the rendered form of the editable region under a line.
type PreviewResponse struct {
	Kind     string `json:"kind"`
	HTML     string `json:"html"`
	DiffHunk string `json:"diff_hunk,omitempty"`
}

// MarkdownResponse is the rendered form of a markdown body.
type MarkdownResponse struct {
	HTML string `json:"html"`
}

// SurfacesResponse lists the open surfaces.
type SurfacesResponse struct {
	Surfaces []string `json:"surfaces"`
}

// HealthResponse is the JSON response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// LineRequest addresses one surface line.
type LineRequest struct {
	Line int `json:"line"`
}

// ReplaceLinesRequest replaces lines [Start, End) with Lines.
type ReplaceLinesRequest struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Lines []string `json:"lines"`
}

// MarkdownRequest carries a markdown body to render.
type MarkdownRequest struct {
	Body string `json:"body"`
}

func toRegionResponse(r document.Region) RegionResponse {
	return RegionResponse{
		Handle: int(r.Handle),
		Kind:   r.Ref.Kind.String(),
		Start:  r.Start,
		End:    r.End,
	}
}
