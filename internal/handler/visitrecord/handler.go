package visitrecord

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
	"github.com/careloop/visitcare-api/internal/service/visitrecord"
	apperrors "github.com/careloop/visitcare-api/pkg/errors"
)

var errMissingSession = errors.New("missing session context")

type Handler struct {
	service visitrecord.VisitRecordService
}

func NewHandler(service visitrecord.VisitRecordService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/visit-records")
	{
		records.POST("", h.CreateRecord)
		records.GET("", h.ListRecords)
		records.GET("/:id", h.GetRecord)
	}
}

// fail hands the error to the error middleware; not-found becomes a 404.
func fail(c *gin.Context, err error) {
	var app *apperrors.AppError
	switch {
	case errors.As(err, &app):
		c.Error(app)
	case errors.Is(err, repository.ErrNotFound):
		c.Error(apperrors.NotFound("visit record", err))
	default:
		c.Error(apperrors.Internal(err))
	}
}

func (h *Handler) CreateRecord(c *gin.Context) {
	staffID, ok := c.Get("staff_id")
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	var req model.CreateVisitRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	visitID, err := uuid.Parse(req.VisitID)
	if err != nil {
		fail(c, apperrors.BadRequest("invalid visit ID", err))
		return
	}

	record := &model.VisitRecord{
		VisitID:    visitID,
		Body:       req.Body,
		VitalsNote: req.VitalsNote,
		RecordedBy: staffID.(uuid.UUID),
	}
	if err := h.service.CreateRecord(c.Request.Context(), record); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": record})
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid record ID", err))
		return
	}

	record, err := h.service.GetRecord(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": record})
}

func (h *Handler) ListRecords(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid client ID", err))
		return
	}

	month := time.Now().UTC()
	if m := c.Query("month"); m != "" {
		parsed, err := time.Parse("2006-01", m)
		if err != nil {
			fail(c, apperrors.BadRequest("invalid month format", err))
			return
		}
		month = parsed
	}

	records, err := h.service.ListByClientMonth(c.Request.Context(), clientID, month)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": records})
}
