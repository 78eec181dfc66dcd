package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/resolvelab/coach/internal/interview"
	"github.com/resolvelab/coach/models"
	"github.com/resolvelab/coach/session"
)

// InterviewHandler exposes the interview flow over HTTP.
type InterviewHandler struct {
	Orch   *interview.Orchestrator
	Logger *log.Logger
}

func (h *InterviewHandler) Register(e *echo.Echo) {
	e.POST("/start_session", h.startSession)
	e.POST("/get_next_question", h.submitAnswer)
	e.POST("/submit_answer", h.submitAnswer)
	e.POST("/generate-resolution", h.generateResolution)
	e.POST("/render-resolution", h.renderResolution)
}

// QuestionResponse is the payload returned for every question round.
type QuestionResponse struct {
	Question       *models.QuestionEnvelope `json:"question"`
	InterviewID    string                   `json:"interviewId"`
	ThreadID       string                   `json:"threadId"`
	QuestionNumber int                      `json:"questionNumber"`
	QuestionerID   string                   `json:"questionerId"`
	ComposerID     string                   `json:"composerId"`
}

// ResolutionResponse is the payload returned once the document exists.
type ResolutionResponse struct {
	Resolution string `json:"resolution"`
	ThreadID   string `json:"threadId"`
	Done       bool   `json:"done"`
}

func (h *InterviewHandler) startSession(c echo.Context) error {
	var req struct {
		Name               string `json:"name"`
		Location           string `json:"location"`
		ResolutionType     string `json:"resolutionType"`
		SpecificResolution string `json:"specificResolution"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	turn, err := h.Orch.Start(c.Request().Context(), interview.StartParams{
		Name:               req.Name,
		Location:           req.Location,
		ResolutionType:     req.ResolutionType,
		SpecificResolution: req.SpecificResolution,
	})
	if err != nil {
		return httpError(err)
	}
	if h.Logger != nil {
		h.Logger.Printf("interview %s started on thread %s", turn.InterviewID, turn.ThreadID)
	}
	return c.JSON(http.StatusOK, questionResponse(turn))
}

func (h *InterviewHandler) submitAnswer(c echo.Context) error {
	var req struct {
		ThreadID string `json:"threadId"`
		Answer   string `json:"answer"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ThreadID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "threadId is required")
	}
	if req.Answer == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "answer is required")
	}

	turn, err := h.Orch.SubmitAnswer(c.Request().Context(), req.ThreadID, req.Answer)
	if err != nil {
		return httpError(err)
	}
	if turn.Done {
		if h.Logger != nil {
			h.Logger.Printf("interview %s finished on thread %s", turn.InterviewID, turn.ThreadID)
		}
		return c.JSON(http.StatusOK, ResolutionResponse{Resolution: turn.Resolution, ThreadID: turn.ThreadID, Done: true})
	}
	return c.JSON(http.StatusOK, questionResponse(turn))
}

func (h *InterviewHandler) generateResolution(c echo.Context) error {
	var req struct {
		ThreadID string `json:"threadId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ThreadID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "threadId is required")
	}

	doc, err := h.Orch.GenerateResolution(c.Request().Context(), req.ThreadID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ResolutionResponse{Resolution: doc, ThreadID: req.ThreadID, Done: true})
}

func questionResponse(turn *interview.Turn) QuestionResponse {
	return QuestionResponse{
		Question:       turn.Question,
		InterviewID:    turn.InterviewID,
		ThreadID:       turn.ThreadID,
		QuestionNumber: turn.Number,
		QuestionerID:   turn.QuestionerID,
		ComposerID:     turn.ComposerID,
	}
}

// httpError maps interview failures onto the HTTP error taxonomy. Everything
// not singled out here is a 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, interview.ErrRunTimeout):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "Request timed out. Please try again.")
	case errors.Is(err, session.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, interview.ErrInterviewDone):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
