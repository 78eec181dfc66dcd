package server

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/resolvelab/coach/internal/interview"
)

// Resolutions embed raw emphasis and link tags, so raw HTML passes through.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

func (h *InterviewHandler) renderResolution(c echo.Context) error {
	var req struct {
		Markdown string `json:"markdown"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Markdown == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "markdown is required")
	}

	src := interview.UnescapeEmphasis(req.Markdown)
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"html": buf.String()})
}
