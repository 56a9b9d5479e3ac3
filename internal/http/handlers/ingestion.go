package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/http/response"
	"github.com/yungbote/docvault-backend/internal/platform/ctxutil"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/services"
)

type IngestionHandler struct {
	log              *logger.Logger
	ingestionService services.IngestionService
}

func NewIngestionHandler(log *logger.Logger, ingestionService services.IngestionService) *IngestionHandler {
	return &IngestionHandler{
		log:              log.With("handler", "IngestionHandler"),
		ingestionService: ingestionService,
	}
}

func (h *IngestionHandler) Create(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input services.CreateIngestionJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	job, err := h.ingestionService.Create(dbctx.New(c.Request.Context()), input, rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, job)
}

func (h *IngestionHandler) List(c *gin.Context) {
	q := types.IngestionQuery{
		Status:    types.IngestionStatus(c.Query("status")),
		Type:      types.IngestionType(c.Query("type")),
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 10),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	page, err := h.ingestionService.List(dbctx.New(c.Request.Context()), q)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

func (h *IngestionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	job, err := h.ingestionService.Get(dbctx.New(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, job)
}

func (h *IngestionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var patch services.UpdateIngestionJobInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	job, err := h.ingestionService.Update(dbctx.New(c.Request.Context()), id, patch)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, job)
}

func (h *IngestionHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	job, err := h.ingestionService.Cancel(dbctx.New(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, job)
}

func (h *IngestionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.ingestionService.Remove(dbctx.New(c.Request.Context()), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "ingestion job deleted"})
}

func (h *IngestionHandler) Trigger(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input services.TriggerIngestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	job, err := h.ingestionService.Trigger(dbctx.New(c.Request.Context()), input, rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, job)
}

func (h *IngestionHandler) Statistics(c *gin.Context) {
	stats, err := h.ingestionService.Statistics(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (h *IngestionHandler) MyJobs(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	jobs, err := h.ingestionService.ListByUser(dbctx.New(c.Request.Context()), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}
