package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxRequestBodySize bounds JSON request bodies (64KB).
const maxRequestBodySize = 64 << 10

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type MessageRequest struct {
	Text string `json:"text"`
}

type AnswerRequest struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type DoctorSearchRequest struct {
	Location string `json:"location"`
}

// SessionView is what the chat widget renders.
type SessionView struct {
	ID              string             `json:"id"`
	Phase           Phase              `json:"phase"`
	Active          bool               `json:"active"`
	QuestionIndex   int                `json:"question_index"`
	CurrentQuestion *Question          `json:"current_question,omitempty"`
	Answers         map[string]float64 `json:"answers,omitempty"`
	Transcript      []Message          `json:"transcript"`
	Providers       []Provider         `json:"providers"`
	Error           string             `json:"error,omitempty"`
	Report          *Report            `json:"report,omitempty"`
	ReportURL       string             `json:"report_url,omitempty"`
}

func newSessionView(s *Session, c Catalog) SessionView {
	v := SessionView{
		ID:            s.ID.String(),
		Phase:         s.Assessment.Phase,
		Active:        s.Assessment.Active(),
		QuestionIndex: s.Assessment.Index,
		Answers:       s.Assessment.Answers,
		Transcript:    s.Transcript,
		Providers:     s.Providers,
		Error:         s.LastError,
		Report:        s.Report,
	}
	if v.Transcript == nil {
		v.Transcript = []Message{}
	}
	if v.Providers == nil {
		v.Providers = []Provider{}
	}
	if q, ok := s.Assessment.Current(c); ok {
		v.CurrentQuestion = &q
	}
	if s.Report != nil {
		v.ReportURL = fmt.Sprintf("/api/sessions/%s/report", s.ID)
	}
	return v
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog())
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(s, h.svc.Catalog()))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s, err := h.svc.GetSession(r.Context(), id)
	h.respond(w, s, err)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req MessageRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.svc.SendMessage(r.Context(), id, req.Text)
	h.respond(w, s, err)
}

func (h *Handler) StartAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s, err := h.svc.StartAssessment(r.Context(), id)
	h.respond(w, s, err)
}

func (h *Handler) SelectOption(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req AnswerRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.svc.SelectOption(r.Context(), id, req.Key, req.Label)
	h.respond(w, s, err)
}

func (h *Handler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req DoctorSearchRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.svc.SearchDoctors(r.Context(), id, req.Location)
	h.respond(w, s, err)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if s.Report == nil {
		writeError(w, http.StatusNotFound, "no report available for this session")
		return
	}

	w.Header().Set("Content-Type", s.Report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, s.Report.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(s.Report.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(s.Report.Data); err != nil {
		slog.Warn("writing report failed", "session_id", id, "error", err)
	}
}

func (h *Handler) respond(w http.ResponseWriter, s *Session, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s, h.svc.Catalog()))
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/questions", h.ListQuestions)
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/messages", h.SendMessage)
		r.Post("/assessment", h.StartAssessment)
		r.Post("/assessment/answers", h.SelectOption)
		r.Post("/doctors", h.SearchDoctors)
		r.Get("/report", h.DownloadReport)
	})
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSessionBusy),
		errors.Is(err, ErrAwaitingOption),
		errors.Is(err, ErrAlreadyActive),
		errors.Is(err, ErrNotActive),
		errors.Is(err, ErrWrongQuestion):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownOption), errors.Is(err, ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
