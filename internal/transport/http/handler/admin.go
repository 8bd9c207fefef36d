package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
	"docuchat/internal/vectorindex"
)

// AdminHandler exposes index status and the administrative reset.
type AdminHandler struct {
	index     *vectorindex.Memory
	lifecycle *app.LifecycleManager
}

func NewAdminHandler(index *vectorindex.Memory, lifecycle *app.LifecycleManager) *AdminHandler {
	return &AdminHandler{index: index, lifecycle: lifecycle}
}

// IndexStatus reports how many passages are indexed overall.
func (h *AdminHandler) IndexStatus(c *gin.Context) {
	count := h.index.Count()
	response.OK(c, gin.H{
		"total_documents": count,
		"empty":           count == 0,
	})
}

// Reset reclaims every active session and wipes the index and the
// upload root.
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.lifecycle.Reset(c.Request.Context()); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reset failed")
		return
	}
	response.OK(c, gin.H{"reset": true})
}
