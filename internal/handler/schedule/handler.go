package schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
	"github.com/careloop/visitcare-api/internal/service/schedule"
	apperrors "github.com/careloop/visitcare-api/pkg/errors"
)

var errMissingSession = errors.New("missing session context")

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.POST("", h.CreateVisits)
		visits.GET("", h.ListVisits)
		visits.GET("/:id", h.GetVisit)
		visits.PUT("/:id", h.UpdateVisit)
		visits.PUT("/:id/scoped", h.ScopedEdit)
		visits.DELETE("/:id", h.DeleteVisit)
	}
	r.GET("/recurrence-groups/:id", h.GetRecurrenceGroup)
}

// actorFrom reads the acting staff and facility set by the auth middleware.
func actorFrom(c *gin.Context) (schedule.Actor, bool) {
	staffID, ok1 := c.Get("staff_id")
	facilityID, ok2 := c.Get("facility_id")
	if !ok1 || !ok2 {
		return schedule.Actor{}, false
	}
	return schedule.Actor{
		StaffID:    staffID.(uuid.UUID),
		FacilityID: facilityID.(uuid.UUID),
	}, true
}

// fail records the error for the error middleware, which picks the HTTP
// status from the AppError. Gateway not-found errors become 404s.
func fail(c *gin.Context, err error) {
	var app *apperrors.AppError
	switch {
	case errors.As(err, &app):
		c.Error(app)
	case errors.Is(err, repository.ErrNotFound):
		c.Error(apperrors.NotFound("visit", err))
	default:
		c.Error(apperrors.Internal(err))
	}
}

func (h *Handler) CreateVisits(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	var req model.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	draft, spec, err := draftFromRequest(&req)
	if err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	result, ids, err := h.service.CreateVisits(c.Request.Context(), actor, draft, spec)
	if err != nil {
		if result.Succeeded > 0 {
			// Partial series creation: report what landed.
			c.JSON(http.StatusMultiStatus, gin.H{
				"status":  "partial",
				"message": err.Error(),
				"data":    gin.H{"created": result.Succeeded, "total": result.Total, "visit_ids": ids},
			})
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   gin.H{"created": result.Succeeded, "total": result.Total, "visit_ids": ids},
	})
}

func (h *Handler) GetVisit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid visit ID", err))
		return
	}

	visit, err := h.service.GetVisit(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": visit})
}

func (h *Handler) ListVisits(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	anchor := time.Now().UTC()
	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			fail(c, apperrors.BadRequest("invalid date format", err))
			return
		}
		anchor = parsed
	}

	granularity := model.CalendarGranularity(c.DefaultQuery("granularity", "week"))

	visits, err := h.service.ListRange(c.Request.Context(), actor.FacilityID, anchor, granularity)
	if err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": visits})
}

func (h *Handler) UpdateVisit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid visit ID", err))
		return
	}

	var req model.UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	update, err := updateFromRequest(&req)
	if err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	if update.IsEmpty() {
		fail(c, apperrors.BadRequest("no fields to update", nil))
		return
	}

	if err := h.service.UpdateVisit(c.Request.Context(), actor, id, update); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) ScopedEdit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid visit ID", err))
		return
	}

	var req model.ScopedEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	update, err := updateFromRequest(&req.Changes)
	if err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	result, err := h.service.ScopedEdit(c.Request.Context(), actor, id, schedule.EditScope(req.Scope), update)
	if err != nil {
		if result.Succeeded > 0 {
			c.JSON(http.StatusMultiStatus, gin.H{
				"status":  "partial",
				"message": err.Error(),
				"data":    gin.H{"updated": result.Succeeded, "total": result.Total},
			})
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"updated": result.Succeeded, "total": result.Total},
	})
}

func (h *Handler) DeleteVisit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid visit ID", err))
		return
	}

	scope := schedule.EditScope(c.DefaultQuery("scope", string(schedule.ScopeSingle)))

	result, err := h.service.ScopedDelete(c.Request.Context(), actor, id, scope)
	if err != nil {
		if result.Succeeded > 0 {
			c.JSON(http.StatusMultiStatus, gin.H{
				"status":  "partial",
				"message": err.Error(),
				"data":    gin.H{"deleted": result.Succeeded, "total": result.Total},
			})
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"deleted": result.Succeeded, "total": result.Total},
	})
}

func (h *Handler) GetRecurrenceGroup(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid group ID", err))
		return
	}

	visits, err := h.service.ListGroup(c.Request.Context(), groupID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": visits})
}

func draftFromRequest(req *model.CreateVisitRequest) (model.VisitDraft, model.RecurrenceSpec, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return model.VisitDraft{}, model.RecurrenceSpec{}, err
	}
	staffID, err := uuid.Parse(req.StaffID)
	if err != nil {
		return model.VisitDraft{}, model.RecurrenceSpec{}, err
	}
	visitDate, err := time.Parse("2006-01-02", req.VisitDate)
	if err != nil {
		return model.VisitDraft{}, model.RecurrenceSpec{}, err
	}

	draft := model.VisitDraft{
		ClientID:  clientID,
		StaffID:   staffID,
		VisitDate: visitDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if req.ServiceTypeID != "" {
		typeID, err := uuid.Parse(req.ServiceTypeID)
		if err != nil {
			return model.VisitDraft{}, model.RecurrenceSpec{}, err
		}
		draft.ServiceTypeID = &typeID
	}

	spec := model.RecurrenceSpec{Type: model.RecurrenceNone}
	if req.Recurrence != nil {
		spec = *req.Recurrence
	}
	return draft, spec, nil
}

func updateFromRequest(req *model.UpdateVisitRequest) (*model.VisitUpdate, error) {
	update := &model.VisitUpdate{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
		Notes:     req.Notes,
	}

	if req.ClientID != nil {
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, err
		}
		update.ClientID = &id
	}
	if req.StaffID != nil {
		id, err := uuid.Parse(*req.StaffID)
		if err != nil {
			return nil, err
		}
		update.StaffID = &id
	}
	if req.ServiceTypeID != nil {
		id, err := uuid.Parse(*req.ServiceTypeID)
		if err != nil {
			return nil, err
		}
		update.ServiceTypeID = &id
	}
	if req.VisitDate != nil {
		date, err := time.Parse("2006-01-02", *req.VisitDate)
		if err != nil {
			return nil, err
		}
		update.VisitDate = &date
	}
	return update, nil
}
