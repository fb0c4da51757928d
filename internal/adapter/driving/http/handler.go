package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/ghdoc/internal/application"
	"github.com/ericfisherdev/ghdoc/internal/domain/document"
	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

// maxRequestBody bounds every request body the API accepts.
const maxRequestBody = 1 << 20

// Handler is the HTTP driving adapter that lets a host editor drive surfaces.
type Handler struct {
	workspace *application.Workspace
	messages  *application.MessageLog
	scheme    string
	logger    *slog.Logger
}

// NewHandler creates a Handler. messages may be nil when the workspace
// reports through another notifier.
func NewHandler(
	workspace *application.Workspace,
	messages *application.MessageLog,
	scheme string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		workspace: workspace,
		messages:  messages,
		scheme:    scheme,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging, recovery and body-limit middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	const surface = "/api/v1/surfaces/{owner}/{repo}/{kind}/{number}"

	mux.HandleFunc("GET /api/v1/surfaces", h.ListSurfaces)
	mux.HandleFunc("POST "+surface, h.OpenSurface)
	mux.HandleFunc("DELETE "+surface, h.CloseSurface)
	mux.HandleFunc("GET "+surface+"/state", h.GetState)
	mux.HandleFunc("GET "+surface+"/text", h.GetText)
	mux.HandleFunc("GET "+surface+"/decorations", h.GetDecorations)
	mux.HandleFunc("PUT "+surface+"/lines", h.ReplaceLines)
	mux.HandleFunc("GET "+surface+"/edit", h.GetEditing)
	mux.HandleFunc("POST "+surface+"/edit", h.EnterEdit)
	mux.HandleFunc("DELETE "+surface+"/edit", h.LeaveEdit)
	mux.HandleFunc("POST "+surface+"/comments", h.AddComment)
	mux.HandleFunc("POST "+surface+"/replies", h.AddReply)
	mux.HandleFunc("POST "+surface+"/save", h.Save)
	mux.HandleFunc("POST "+surface+"/flush", h.Flush)
	mux.HandleFunc("POST "+surface+"/reload", h.Reload)
	mux.HandleFunc("GET "+surface+"/messages", h.ListMessages)
	mux.HandleFunc("GET "+surface+"/preview", h.Preview)
	mux.HandleFunc("POST /api/v1/markdown", h.Markdown)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = bodyLimitMiddleware(maxRequestBody, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// surfaceName builds the surface name addressed by the request path.
func (h *Handler) surfaceName(r *http.Request) string {
	return fmt.Sprintf("%s://%s/%s/%s/%s",
		h.scheme,
		r.PathValue("owner"),
		r.PathValue("repo"),
		r.PathValue("kind"),
		r.PathValue("number"),
	)
}

// session returns the open session addressed by the request, writing a 404
// when the surface has not been opened.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*application.Session, bool) {
	s, ok := h.workspace.Get(h.surfaceName(r))
	if !ok {
		writeError(w, http.StatusNotFound, "surface is not open")
		return nil, false
	}
	return s, true
}

// writeFailure maps a domain or application error onto an HTTP status.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		loadErr       *document.LoadError
		validationErr *document.ValidationError
	)

	switch {
	case errors.Is(err, model.ErrInvalidSurfaceName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &loadErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &validationErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, application.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, document.ErrNotEditable),
		errors.Is(err, document.ErrPendingComment),
		errors.Is(err, document.ErrNoThread),
		errors.Is(err, application.ErrNotLoaded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrSessionClosed):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timed out")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// ListSurfaces returns the names of all open surfaces.
func (h *Handler) ListSurfaces(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SurfacesResponse{Surfaces: h.workspace.Names()})
}

// OpenSurface loads a surface, or returns the already open one, and responds
// with its state.
func (h *Handler) OpenSurface(w http.ResponseWriter, r *http.Request) {
	s, err := h.workspace.Open(r.Context(), h.surfaceName(r))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.writeState(w, r, s)
}

// CloseSurface waits for in-flight saves, then drops the surface and its
// persisted state.
func (h *Handler) CloseSurface(w http.ResponseWriter, r *http.Request) {
	if err := h.workspace.Close(r.Context(), h.surfaceName(r)); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetState returns the persisted-state view of a surface.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	h.writeState(w, r, s)
}

func (h *Handler) writeState(w http.ResponseWriter, r *http.Request, s *application.Session) {
	state, err := s.State(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// GetText returns every line of the surface.
func (h *Handler) GetText(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	lines, err := s.Text(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if lines == nil {
		lines = []string{}
	}

	writeJSON(w, http.StatusOK, TextResponse{Lines: lines})
}

// GetDecorations returns the styled extents and folds of the surface.
func (h *Handler) GetDecorations(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var decorations document.Decorations
	err := s.View(r.Context(), func(d *document.Document) error {
		decorations = d.Decorations()
		return nil
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, decorations)
}

// ReplaceLines applies a host edit to the surface.
func (h *Handler) ReplaceLines(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ReplaceLinesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.ReplaceLines(r.Context(), req.Start, req.End, req.Lines); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetEditing reports the region in edit mode.
func (h *Handler) GetEditing(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp EditingResponse
	err := s.View(r.Context(), func(d *document.Document) error {
		if region, editing := d.Editing(); editing {
			rr := toRegionResponse(region)
			resp = EditingResponse{Editing: true, Region: &rr}
		}
		return nil
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// EnterEdit switches the editable region under a line into edit mode. Outside
// an editable region it responds 409 and the host must stay in view mode.
func (h *Handler) EnterEdit(w http.ResponseWriter, r *http.Request) {
	h.regionUpdate(w, r, http.StatusOK, func(d *document.Document, line int) (document.Region, error) {
		return d.EnterEdit(line)
	})
}

// LeaveEdit masks the edited region again.
func (h *Handler) LeaveEdit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	err := s.Update(r.Context(), func(d *document.Document) error {
		d.LeaveEdit()
		return nil
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddComment appends a new issue comment at the end of the surface.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var region document.Region
	err := s.Update(r.Context(), func(d *document.Document) error {
		var err error
		region, err = d.AddIssueComment()
		return err
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRegionResponse(region))
}

// AddReply appends a reply to the review thread under a line.
func (h *Handler) AddReply(w http.ResponseWriter, r *http.Request) {
	h.regionUpdate(w, r, http.StatusCreated, func(d *document.Document, line int) (document.Region, error) {
		return d.AddThreadReply(line)
	})
}

// regionUpdate decodes a LineRequest, runs fn on the document and responds
// with the region it returns.
func (h *Handler) regionUpdate(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	fn func(d *document.Document, line int) (document.Region, error),
) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req LineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var region document.Region
	err := s.Update(r.Context(), func(d *document.Document) error {
		var err error
		region, err = fn(d, req.Line)
		return err
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, status, toRegionResponse(region))
}

// Save dispatches every pending change. Results are applied asynchronously;
// the response only reports how many remote operations were started.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	n, err := s.Save(r.Context())

	var validationErr *document.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, SaveResponse{Dispatched: n})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, SaveResponse{Dispatched: n, Error: err.Error()})
	default:
		h.writeFailure(w, r, err)
	}
}

// Flush waits until every dispatched save has been applied.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Flush(r.Context()); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reload discards unsaved changes and loads the remote object again.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Reload(r.Context()); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.writeState(w, r, s)
}

// ListMessages returns the recent notifications of a surface.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages := []application.Message{}
	if h.messages != nil {
		messages = h.messages.Messages(h.surfaceName(r))
	}

	writeJSON(w, http.StatusOK, messages)
}

// Preview renders the editable region under the "line" query parameter.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	line, err := strconv.Atoi(r.URL.Query().Get("line"))
	if err != nil || line < 0 {
		writeError(w, http.StatusBadRequest, "invalid line")
		return
	}

	var resp PreviewResponse
	err = s.View(r.Context(), func(d *document.Document) error {
		var err error
		resp, err = preview(d, line)
		return err
	})
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func preview(d *document.Document, line int) (PreviewResponse, error) {
	region, ok := d.RegionAt(line)
	if !ok || !region.Ref.Kind.Editable() {
		return PreviewResponse{}, document.ErrNotEditable
	}

	resp := PreviewResponse{Kind: region.Ref.Kind.String()}
	switch region.Ref.Kind {
	case document.RegionTitle:
		resp.HTML = htmlSanitizer.Sanitize(d.Title().Body)
	case document.RegionDescription:
		resp.HTML = RenderMarkdown(d.Description().Body)
	case document.RegionComment:
		c, ok := d.Comment(region.Ref.Slot)
		if !ok {
			return PreviewResponse{}, document.ErrNotEditable
		}
		resp.HTML = RenderMarkdown(c.Body)
		resp.DiffHunk = RenderDiffHunk(threadHunk(d.Issue(), c.ThreadID))
	}

	return resp, nil
}

// threadHunk returns the diff hunk owned by the first comment of a thread.
func threadHunk(issue *model.Issue, threadID string) string {
	if threadID == "" || issue == nil {
		return ""
	}
	for _, t := range issue.ReviewThreads {
		if t.ID != threadID {
			continue
		}
		if first, ok := t.FirstComment(); ok {
			return first.DiffHunk
		}
	}
	return ""
}

// Markdown renders an arbitrary markdown body, for previews of text
// that is not bound to a region yet.
func (h *Handler) Markdown(w http.ResponseWriter, r *http.Request) {
	var req MarkdownRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, MarkdownResponse{HTML: RenderMarkdown(req.Body)})
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
