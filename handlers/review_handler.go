package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/async-tournament/middleware"
	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/services"
	"github.com/Dosada05/async-tournament/web"
)

// PageRenderer renders one of the reviewer HTML pages.
type PageRenderer interface {
	Render(w io.Writer, page string, data any) error
}

// ReviewHandler serves the moderator review pages.
type ReviewHandler struct {
	reviewService *services.ReviewService
	pages         PageRenderer
	logger        *slog.Logger
}

func NewReviewHandler(reviewService *services.ReviewService, pages PageRenderer, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		pages:         pages,
		logger:        logger,
	}
}

type queuePage struct {
	User       *models.User
	Tournament *models.Tournament
	Races      []models.Race
	Params     services.QueueParams
}

type reviewPage struct {
	User           *models.User
	Tournament     *models.Tournament
	Race           *models.Race
	AlreadyClaimed bool
	ReviewStatuses []models.ReviewStatus
}

type errorPage struct {
	User       *models.User
	Status     int
	StatusText string
	Message    string
}

var reviewStatuses = []models.ReviewStatus{
	models.ReviewStatusPending,
	models.ReviewStatusApproved,
	models.ReviewStatusRejected,
}

// Queue lists the races of a tournament awaiting review.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournament_id")
	if err != nil {
		h.renderError(w, r, http.StatusNotFound, "Tournament not found.")
		return
	}
	user := middleware.UserFromContext(r.Context())

	result, err := h.reviewService.Queue(r.Context(), tournamentID, user, r.URL.Query())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "queue.html", queuePage{
		User:       user,
		Tournament: result.Tournament,
		Races:      result.Races,
		Params:     result.Params,
	})
}

// Review opens a race for review, claiming it when nobody holds it.
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	tournamentID, raceID, ok := h.raceIDs(w, r)
	if !ok {
		return
	}
	user := middleware.UserFromContext(r.Context())

	view, err := h.reviewService.Claim(r.Context(), tournamentID, raceID, user)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "review.html", reviewPage{
		User:           user,
		Tournament:     view.Tournament,
		Race:           view.Race,
		AlreadyClaimed: view.AlreadyClaimed,
		ReviewStatuses: reviewStatuses,
	})
}

// Submit records the review form and returns to the queue.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	tournamentID, raceID, ok := h.raceIDs(w, r)
	if !ok {
		return
	}
	user := middleware.UserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Malformed review form.")
		return
	}

	var decision services.ReviewDecision
	if r.PostForm.Has("review_status") {
		v := r.PostForm.Get("review_status")
		decision.ReviewStatus = &v
	}
	if r.PostForm.Has("reviewer_notes") {
		v := r.PostForm.Get("reviewer_notes")
		decision.ReviewerNotes = &v
	}

	if _, err := h.reviewService.Decide(r.Context(), tournamentID, raceID, user, decision); err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/races/"+strconv.Itoa(tournamentID), http.StatusSeeOther)
}

func (h *ReviewHandler) raceIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	tournamentID, err := getIDFromURL(r, "tournament_id")
	if err != nil {
		h.renderError(w, r, http.StatusNotFound, "Tournament not found.")
		return 0, 0, false
	}
	raceID, err := getIDFromURL(r, "race_id")
	if err != nil {
		h.renderError(w, r, http.StatusNotFound, "Race not found.")
		return 0, 0, false
	}
	return tournamentID, raceID, true
}

var pageMessages = map[error]string{
	services.ErrTournamentNotFound: "Tournament not found.",
	services.ErrRaceNotFound:       "Race not found.",
	services.ErrNotAuthorized:      "You are not authorized to view this tournament.",
	services.ErrRaceNotReviewable:  "This race cannot be reviewed yet.",
	services.ErrRaceReattempted:    "This race was marked as reattempted and cannot be reviewed.",
	services.ErrSelfReview:         "You are not authorized to review your own tournament run.",
	services.ErrInvalidReviewState: "Invalid review status.",
	services.ErrInvalidFilter:      "Invalid filter value.",
}

func (h *ReviewHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForServiceError(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "review request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		h.renderError(w, r, status, "The server encountered a problem and could not process your request.")
		return
	}

	message := err.Error()
	for sentinel, text := range pageMessages {
		if errors.Is(err, sentinel) {
			message = text
			break
		}
	}
	h.renderError(w, r, status, message)
}

func (h *ReviewHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error.html", errorPage{
		User:       middleware.UserFromContext(r.Context()),
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    message,
	})
}

func (h *ReviewHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if err := h.pages.Render(&buf, page, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.DebugContext(r.Context(), "failed to write page", slog.String("page", page), slog.Any("error", err))
	}
}

var _ PageRenderer = (*web.Renderer)(nil)
