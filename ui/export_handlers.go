package ui

import (
	"log"
	"net/http"

	"gosurvey/app"
	"gosurvey/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleResponsesExport streams the raw responses workbook.
func (s *Server) handleResponsesExport(c *gin.Context) {
	surveyID, ok := s.surveyID(c)
	if !ok {
		return
	}

	workbook, err := s.exports.ExportResponses(c.Request.Context(), surveyID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+timestamped("responses")+`"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// handleAnalytics computes analytics and returns them as JSON, without a
// workbook. Useful for dashboards that render their own charts.
func (s *Server) handleAnalytics(c *gin.Context) {
	surveyID, ok := s.surveyID(c)
	if !ok {
		return
	}
	req, ok := s.bindExportRequest(c)
	if !ok {
		return
	}

	export, err := s.exports.ExportAnalytics(c.Request.Context(), surveyID, req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": export.Results})
}

// handleAnalyticsExport streams the analytics workbook, segmented when the
// request carries a segmentation config.
func (s *Server) handleAnalyticsExport(c *gin.Context) {
	surveyID, ok := s.surveyID(c)
	if !ok {
		return
	}
	req, ok := s.bindExportRequest(c)
	if !ok {
		return
	}

	export, err := s.exports.ExportAnalytics(c.Request.Context(), surveyID, req)
	if err != nil {
		s.renderError(c, err)
		return
	}

	name := "analytics"
	if req.Segmentation != nil {
		name = "segmented_analytics"
	}
	c.Header("Content-Disposition", `attachment; filename="`+timestamped(name)+`"`)
	c.Data(http.StatusOK, xlsxContentType, export.Workbook)
}

func (s *Server) surveyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  errors.CodeInvalidInput,
			"error": "survey id must be a UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) bindExportRequest(c *gin.Context) (app.AnalyticsExportRequest, bool) {
	var req app.AnalyticsExportRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  errors.CodeInvalidInput,
			"error": "malformed export request: " + err.Error(),
		})
		return req, false
	}
	return req, true
}

// renderError maps AppError codes onto HTTP statuses. Validation problems
// are the caller's fault; anything else is a 500.
func (s *Server) renderError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeValidationError, errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Printf("[Server] export failed: %v", err)
	}
	c.JSON(status, gin.H{"code": code, "error": err.Error()})
}
