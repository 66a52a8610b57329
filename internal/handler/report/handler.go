package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/repository"
	"github.com/careloop/visitcare-api/internal/service/report"
	apperrors "github.com/careloop/visitcare-api/pkg/errors"
)

type Handler struct {
	service report.ReportService
}

func NewHandler(service report.ReportService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/monthly", h.GetMonthlyReport)
		reports.POST("/monthly/email", h.EmailMonthlyReport)
	}
}

// fail hands the error to the error middleware; not-found becomes a 404.
func fail(c *gin.Context, err error) {
	var app *apperrors.AppError
	switch {
	case errors.As(err, &app):
		c.Error(app)
	case errors.Is(err, repository.ErrNotFound):
		c.Error(apperrors.NotFound("client", err))
	default:
		c.Error(apperrors.Internal(err))
	}
}

func reportParams(c *gin.Context) (uuid.UUID, time.Time, error) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		return uuid.Nil, time.Time{}, apperrors.BadRequest("invalid client ID", err)
	}
	month, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		return uuid.Nil, time.Time{}, apperrors.BadRequest("invalid month format, want YYYY-MM", err)
	}
	return clientID, month, nil
}

func (h *Handler) GetMonthlyReport(c *gin.Context) {
	clientID, month, err := reportParams(c)
	if err != nil {
		fail(c, err)
		return
	}

	pdf, err := h.service.MonthlyReport(c.Request.Context(), clientID, month)
	if err != nil {
		fail(c, err)
		return
	}

	filename := "care-report-" + month.Format("2006-01") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type emailReportRequest struct {
	To string `json:"to" binding:"required,email"`
}

func (h *Handler) EmailMonthlyReport(c *gin.Context) {
	clientID, month, err := reportParams(c)
	if err != nil {
		fail(c, err)
		return
	}

	var req emailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	if err := h.service.EmailMonthlyReport(c.Request.Context(), clientID, month, req.To); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
