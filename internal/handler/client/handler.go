package client

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careloop/visitcare-api/internal/model"
	"github.com/careloop/visitcare-api/internal/repository"
	"github.com/careloop/visitcare-api/internal/service/client"
	apperrors "github.com/careloop/visitcare-api/pkg/errors"
)

var errMissingSession = errors.New("missing session context")

type Handler struct {
	service client.ClientService
}

func NewHandler(service client.ClientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clients := r.Group("/clients")
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
	r.GET("/staff", h.ListStaff)
	r.GET("/service-types", h.ListServiceTypes)
}

func facilityFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get("facility_id")
	if !ok {
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
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

func (h *Handler) CreateClient(c *gin.Context) {
	facilityID, ok := facilityFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	var req model.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	cl := &model.Client{
		FacilityID: facilityID,
		Name:       req.Name,
		NameKana:   req.NameKana,
		Address:    req.Address,
		Phone:      req.Phone,
		CareLevel:  req.CareLevel,
	}
	if err := h.service.CreateClient(c.Request.Context(), cl); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": cl})
}

func (h *Handler) GetClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid client ID", err))
		return
	}

	cl, err := h.service.GetClient(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cl})
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid client ID", err))
		return
	}

	var req model.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	cl, err := h.service.GetClient(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	if req.Name != nil {
		cl.Name = *req.Name
	}
	if req.NameKana != nil {
		cl.NameKana = *req.NameKana
	}
	if req.Address != nil {
		cl.Address = *req.Address
	}
	if req.Phone != nil {
		cl.Phone = *req.Phone
	}
	if req.CareLevel != nil {
		cl.CareLevel = *req.CareLevel
	}
	if req.Status != nil {
		cl.Status = *req.Status
	}

	if err := h.service.UpdateClient(c.Request.Context(), cl); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": cl})
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, apperrors.BadRequest("invalid client ID", err))
		return
	}

	if err := h.service.DeleteClient(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) ListClients(c *gin.Context) {
	facilityID, ok := facilityFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	filters := &model.ClientFilters{
		FacilityID: facilityID,
		Status:     model.ClientStatus(c.Query("status")),
		SearchTerm: c.Query("search"),
	}

	clients, err := h.service.ListClients(c.Request.Context(), filters)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": clients})
}

func (h *Handler) ListStaff(c *gin.Context) {
	facilityID, ok := facilityFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	staff, err := h.service.ListStaff(c.Request.Context(), facilityID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": staff})
}

func (h *Handler) ListServiceTypes(c *gin.Context) {
	facilityID, ok := facilityFrom(c)
	if !ok {
		fail(c, apperrors.Unauthorized(errMissingSession))
		return
	}

	types, err := h.service.ListServiceTypes(c.Request.Context(), facilityID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": types})
}
