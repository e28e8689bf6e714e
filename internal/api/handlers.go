package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	scerrors "github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/annotations"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
	"github.com/FocuswithJustin/JuniperScripture/internal/prefs"
	"github.com/FocuswithJustin/JuniperScripture/internal/reader"
	"github.com/FocuswithJustin/JuniperScripture/internal/store"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// TranslationInfo describes one catalog entry.
type TranslationInfo struct {
	catalog.Descriptor
	Available bool `json:"available"`
	Active    bool `json:"active"`
}

// VerseInfo is a verse as sent to clients.
type VerseInfo struct {
	Address   canon.Address `json:"address"`
	Reference string        `json:"reference"`
	Verse     int           `json:"verse"`
	Text      string        `json:"text"`
}

// ChapterInfo is one chapter of one translation.
type ChapterInfo struct {
	Translation string      `json:"translation"`
	Book        canon.Book  `json:"book"`
	Chapter     int         `json:"chapter"`
	Target      int         `json:"target"`
	Seq         uint64      `json:"seq,omitempty"`
	Verses      []VerseInfo `json:"verses"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Translation string `json:"translation,omitempty"`
	Clients     int    `json:"clients"`
}

func chapterInfo(v store.View, target int, seq uint64, plain bool) ChapterInfo {
	verses := make([]VerseInfo, len(v.Verses))
	for i, vv := range v.Verses {
		text := vv.DisplayText()
		if plain {
			text = vv.PlainText()
		}
		verses[i] = VerseInfo{
			Address:   vv.Address(),
			Reference: vv.Address().String(),
			Verse:     vv.Verse,
			Text:      text,
		}
	}
	return ChapterInfo{
		Translation: v.Translation.ID,
		Book:        canon.NamedBook(v.Book),
		Chapter:     v.Chapter,
		Target:      target,
		Seq:         seq,
		Verses:      verses,
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"name":    "Juniper Scripture API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"GET /translations",
			"GET /books",
			"GET /chapters/:book",
			"GET /verses/:book/:chapter",
			"POST /switch/:id",
			"GET|POST /navigate?ref=",
			"GET /current",
			"GET /annotations/:book/:chapter",
			"POST /annotations",
			"DELETE /annotations/:id",
			"WS /ws",
		},
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := HealthInfo{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Clients: s.hub.ClientCount(),
	}
	if d, ok := s.session.Store().Active(); ok {
		info.Translation = d.ID
	} else {
		info.Status = "degraded"
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	cat := s.session.Store().Catalog()
	active, _ := s.session.Store().Active()

	all := cat.All()
	out := make([]TranslationInfo, len(all))
	for i, d := range all {
		out[i] = TranslationInfo{Descriptor: d, Available: cat.IsAvailable(d), Active: d.ID == active.ID}
	}
	respondList(w, out, len(out))
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.session.Books()
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondList(w, books, len(books))
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	book, ok := pathInt(w, r, "book")
	if !ok {
		return
	}
	chapters, err := s.session.Chapters(book)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondList(w, chapters, len(chapters))
}

func (s *Server) handleVerses(w http.ResponseWriter, r *http.Request) {
	book, ok := pathInt(w, r, "book")
	if !ok {
		return
	}
	chapter, ok := pathInt(w, r, "chapter")
	if !ok {
		return
	}
	view, err := s.session.Chapter(book, chapter)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	plain := r.URL.Query().Get("format") == "plain"
	target := -1
	if len(view.Verses) > 0 {
		target = 0
	}
	respond(w, http.StatusOK, chapterInfo(view, target, 0, plain))
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.Switch(r.Context(), r.PathValue("id"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	s.remember(p)
	respond(w, http.StatusOK, chapterInfo(p.View, p.Target, p.Seq, false))
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	addr, err := canon.ParseReference(ref)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	p, err := s.session.Navigate(r.Context(), addr)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	s.remember(p)
	respond(w, http.StatusOK, chapterInfo(p.View, p.Target, p.Seq, false))
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	p, ok := s.session.Current()
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "NO_TRANSLATION", "No view has been published")
		return
	}
	respond(w, http.StatusOK, chapterInfo(p.View, p.Target, p.Seq, false))
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	book, ok := pathInt(w, r, "book")
	if !ok {
		return
	}
	chapter, ok := pathInt(w, r, "chapter")
	if !ok {
		return
	}
	list := s.notes.Chapter(book, chapter)
	respondList(w, list, len(list))
}

func (s *Server) handleAddAnnotation(w http.ResponseWriter, r *http.Request) {
	var a annotations.Annotation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid annotation body")
		return
	}
	// Quote the verse from the active translation when the client did not.
	if a.Quote == "" && a.Address.Valid() {
		if view, err := s.session.Chapter(a.Address.Book, a.Address.Chapter); err == nil {
			if i := store.IndexOf(view.Verses, a.Address.Verse); i >= 0 {
				q := annotations.FromVerse(a.Kind, view.Verses[i], view.Translation)
				a.Quote, a.Translation = q.Quote, q.Translation
			}
		}
	}
	added, err := s.notes.Add(a)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respond(w, http.StatusCreated, added)
}

func (s *Server) handleDeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Remove(r.PathValue("id")); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// remember persists the reading position when a preferences file is
// configured. Failures are logged, not returned to the client.
func (s *Server) remember(p reader.Published) {
	if s.cfg.PrefsPath == "" {
		return
	}
	_, err := prefs.Update(s.cfg.PrefsPath, func(pr *prefs.Prefs) {
		pr.Translation = p.Translation.ID
		pr.SetPosition(p.TargetAddress())
	})
	if err != nil {
		logging.Warn("prefs_save_failed", "path", s.cfg.PrefsPath, "error", err.Error())
	}
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be an integer")
		return 0, false
	}
	return n, true
}

// respondFailure maps domain errors onto HTTP statuses.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, scerrors.ErrDataSourceNotFound):
		status, code = http.StatusNotFound, "DATA_SOURCE_NOT_FOUND"
	case errors.Is(err, scerrors.ErrOpenFailed):
		status, code = http.StatusInternalServerError, "OPEN_FAILED"
	case errors.Is(err, scerrors.ErrQuery):
		status, code = http.StatusInternalServerError, "QUERY_FAILED"
	case errors.Is(err, scerrors.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, scerrors.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, reader.ErrNoTranslation):
		status, code = http.StatusServiceUnavailable, "NO_TRANSLATION"
	case errors.Is(err, reader.ErrSuperseded):
		status, code = http.StatusConflict, "SUPERSEDED"
	}
	if status >= 500 {
		logging.ErrorContext(r.Context(), "request_failed", "path", r.URL.Path, "code", code, "error", err.Error())
	}
	respondError(w, status, code, err.Error())
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Total: total, Timestamp: timestamp()},
	})
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: timestamp()},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: timestamp()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
