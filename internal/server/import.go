package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/tonearm/tonearm/internal/importer"
	"github.com/tonearm/tonearm/internal/matcher"
	"github.com/tonearm/tonearm/internal/models"
	"github.com/tonearm/tonearm/internal/parser"
	"github.com/tonearm/tonearm/internal/repositories"
	"github.com/tonearm/tonearm/internal/shared"
)

// DefaultPlaylistName is used when neither the request nor the parsed
// playlist carries a name.
const DefaultPlaylistName = "Imported Playlist"

// ImportHandler serves the import job lifecycle: creation, polling,
// confirmation, and pre-flight validation.
type ImportHandler struct {
	engine *importer.Engine
	jobs   *repositories.ImportJobRepository
	cfg    shared.ImportConfig
	logger *log.Logger
}

// NewImportHandler creates the handler for the /import routes.
func NewImportHandler(engine *importer.Engine, jobs *repositories.ImportJobRepository, cfg shared.ImportConfig, logger *log.Logger) *ImportHandler {
	return &ImportHandler{engine: engine, jobs: jobs, cfg: cfg, logger: logger}
}

// Routes implements [Handler].
func (h *ImportHandler) Routes() []string {
	return []string{"/import", "/import/validate"}
}

// ServeHTTP dispatches by path and method.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/import/validate" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, CodeInvalidRequest, "method not allowed")
			return
		}
		h.validate(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.confirm(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, CodeInvalidRequest, "method not allowed")
	}
}

type importRequest struct {
	Content             string `json:"content"`
	Format              string `json:"format,omitempty"`
	PlaylistName        string `json:"playlistName,omitempty"`
	PlaylistDescription string `json:"playlistDescription,omitempty"`
	TargetPlatform      string `json:"targetPlatform"`
	AutoMatch           bool   `json:"autoMatch"`
	CreatePlaylist      bool   `json:"createPlaylist"`
}

type importAccepted struct {
	ImportJobID  string           `json:"importJobId"`
	PlaylistName string           `json:"playlistName"`
	Status       models.JobStatus `json:"status"`
	TotalSongs   int              `json:"totalSongs"`
}

// create parses the submitted playlist, persists a processing job, and kicks
// off the background matcher. The response returns before any matching runs.
func (h *ImportHandler) create(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get(UserHeader)
	if user == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "missing "+UserHeader+" header")
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "content is required")
		return
	}
	if req.TargetPlatform == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "targetPlatform is required")
		return
	}

	parsed, err := parser.Parse(req.Content, parser.ParseFormat(req.Format))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeParseError, err.Error())
		return
	}

	name := req.PlaylistName
	if name == "" {
		name = parsed.Playlist.Playlist.Name
	}
	if name == "" {
		name = DefaultPlaylistName
	}

	job := models.NewImportJob(0, user, string(parsed.Format), req.TargetPlatform, name, req.PlaylistDescription)
	job.SetTotalSongs(len(parsed.Playlist.Tracks))

	if err := h.jobs.Create(job); err != nil {
		h.logger.Error("failed to create import job", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to create import job")
		return
	}

	// With autoMatch off every scored song lands in pending_review; only an
	// exact ISRC hit still auto-accepts.
	threshold := h.cfg.AutoAcceptThreshold
	if !req.AutoMatch {
		threshold = matcher.MaxScore + 1
	}

	opts := importer.JobOptions{
		Match: matcher.Options{
			Platforms:     []string{req.TargetPlatform},
			Fuzzy:         true,
			MinConfidence: threshold,
			MaxMatches:    h.cfg.MaxMatchesPerSong,
		},
		CreatePlaylist: req.CreatePlaylist,
	}

	// Snapshot the response before handing the job to the background
	// goroutine: after Start the job is owned by the matching loop and
	// observable only through the persisted row.
	accepted := importAccepted{
		ImportJobID:  job.ID(),
		PlaylistName: job.PlaylistName(),
		Status:       job.Status(),
		TotalSongs:   job.TotalSongs(),
	}
	h.engine.Start(job, parsed.Playlist.Tracks, opts)

	writeJSON(w, http.StatusAccepted, accepted)
}

// get returns the full persisted job projection, scoped to the caller.
// A job owned by another user is indistinguishable from a missing one.
func (h *ImportHandler) get(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get(UserHeader)
	if user == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "missing "+UserHeader+" header")
		return
	}

	jobID := r.URL.Query().Get("importJobId")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "importJobId is required")
		return
	}

	job, err := h.jobs.GetForUser(jobID, user)
	if err != nil {
		if errors.Is(err, shared.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, CodeNotFound, "import job not found")
			return
		}
		h.logger.Error("failed to load import job", "job", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to load import job")
		return
	}

	writeJSON(w, http.StatusOK, job.Projection())
}

type confirmRequest struct {
	ImportJobID  string                   `json:"importJobId"`
	MatchResults []models.SongMatchResult `json:"matchResults"`
}

type confirmResponse struct {
	Success    bool   `json:"success"`
	PlaylistID string `json:"playlistId,omitempty"`
	SongsAdded int    `json:"songsAdded"`
}

// confirm finalizes a job with the caller's per-song decisions and
// materializes the resulting playlist.
func (h *ImportHandler) confirm(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get(UserHeader)
	if user == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "missing "+UserHeader+" header")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed request body")
		return
	}
	if req.ImportJobID == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "importJobId is required")
		return
	}

	res, err := h.engine.Confirm(user, req.ImportJobID, req.MatchResults)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrJobNotFound):
			writeError(w, http.StatusNotFound, CodeNotFound, "import job not found")
		case errors.Is(err, shared.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		case errors.Is(err, shared.ErrJobNotConfirmable):
			writeError(w, http.StatusConflict, CodeConflict, err.Error())
		case errors.Is(err, shared.ErrDuplicatePlaylist):
			writeError(w, http.StatusConflict, CodeConflict, err.Error())
		default:
			h.logger.Error("failed to confirm import job", "job", req.ImportJobID, "error", err)
			writeError(w, http.StatusInternalServerError, CodeInternalError, "failed to confirm import job")
		}
		return
	}

	writeJSON(w, http.StatusOK, confirmResponse{
		Success:    true,
		PlaylistID: res.PlaylistID,
		SongsAdded: res.SongsAdded,
	})
}

type validateRequest struct {
	Content string `json:"content"`
	Format  string `json:"format,omitempty"`
}

type validateResponse struct {
	Valid    bool             `json:"valid"`
	Errors   []string         `json:"errors,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
	Playlist *models.Playlist `json:"playlist,omitempty"`
}

// validate runs the pure pre-flight check without creating a job.
func (h *ImportHandler) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "malformed request body")
		return
	}

	parsed, err := parser.Parse(req.Content, parser.ParseFormat(req.Format))
	if err != nil {
		writeJSON(w, http.StatusOK, validateResponse{Valid: false, Errors: []string{err.Error()}})
		return
	}

	warnings := parsed.Warnings
	if len(parsed.Playlist.Tracks) == 0 {
		warnings = append(warnings, "playlist contains no songs")
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:    true,
		Warnings: warnings,
		Playlist: &parsed.Playlist.Playlist,
	})
}
