package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/http/response"
	"github.com/yungbote/docvault-backend/internal/platform/ctxutil"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/services"
)

const maxMultipartMemory = 32 << 20

type DocumentHandler struct {
	log             *logger.Logger
	documentService services.DocumentService
}

func NewDocumentHandler(log *logger.Logger, documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		log:             log.With("handler", "DocumentHandler"),
		documentService: documentService,
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "file_required", err)
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		sniff, err := fileHeader.Open()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
			return
		}
		buf := make([]byte, 512)
		n, _ := sniff.Read(buf)
		_ = sniff.Close()
		mimeType = http.DetectContentType(buf[:n])
	}
	reader, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer reader.Close()

	input := services.CreateDocumentInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        splitTags(c.PostForm("tags")),
		Category:    types.DocumentCategory(c.PostForm("category")),
		Status:      types.DocumentStatus(c.PostForm("status")),
	}
	file := services.UploadedFile{
		OriginalName: fileHeader.Filename,
		MimeType:     mimeType,
		Size:         fileHeader.Size,
		Reader:       reader,
	}

	doc, err := h.documentService.Create(dbctx.New(c.Request.Context()), input, file, rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	q := types.DocumentQuery{
		Search:    c.Query("search"),
		Category:  types.DocumentCategory(c.Query("category")),
		Status:    types.DocumentStatus(c.Query("status")),
		Tags:      splitTags(c.Query("tags")),
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 10),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	page, err := h.documentService.List(dbctx.New(c.Request.Context()), q)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	doc, err := h.documentService.Get(dbctx.New(c.Request.Context()), id, callerID(rd), callerRole(rd))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var patch services.UpdateDocumentInput
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	doc, err := h.documentService.Update(dbctx.New(c.Request.Context()), id, patch, callerID(rd), callerRole(rd))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.documentService.Remove(dbctx.New(c.Request.Context()), id, callerID(rd), callerRole(rd)); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "document deleted"})
}

func (h *DocumentHandler) Download(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	dl, err := h.documentService.Download(dbctx.New(c.Request.Context()), id, callerID(rd), callerRole(rd))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+dl.Filename+`"`)
	c.Data(http.StatusOK, dl.MimeType, dl.Data)
}

func (h *DocumentHandler) Statistics(c *gin.Context) {
	stats, err := h.documentService.Statistics(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func (h *DocumentHandler) SearchByTags(c *gin.Context) {
	docs, err := h.documentService.SearchByTags(dbctx.New(c.Request.Context()), splitTags(c.Query("tags")))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) MyDocuments(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	docs, err := h.documentService.ListByUser(dbctx.New(c.Request.Context()), rd.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func callerID(rd *ctxutil.RequestData) uuid.UUID {
	if rd == nil {
		return uuid.Nil
	}
	return rd.UserID
}

func callerRole(rd *ctxutil.RequestData) types.UserRole {
	if rd == nil {
		return ""
	}
	return types.UserRole(rd.Role)
}
