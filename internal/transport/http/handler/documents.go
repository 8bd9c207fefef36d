package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/model"
	"docuchat/internal/pkg/sessiontoken"
	"docuchat/internal/store"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

// DocumentsHandler serves upload, file listing and session clearing.
type DocumentsHandler struct {
	sessions  *store.SessionStore
	ingest    *app.IngestService
	lifecycle *app.LifecycleManager

	tokenSecret  string
	cookieName   string
	cookieMaxAge int
	maxFileBytes int64
}

func NewDocumentsHandler(
	sessions *store.SessionStore,
	ingest *app.IngestService,
	lifecycle *app.LifecycleManager,
	tokenSecret, cookieName string,
	cookieMaxAge int,
	maxFileBytes int64,
) *DocumentsHandler {
	return &DocumentsHandler{
		sessions:     sessions,
		ingest:       ingest,
		lifecycle:    lifecycle,
		tokenSecret:  tokenSecret,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		maxFileBytes: maxFileBytes,
	}
}

// Upload accepts a multipart form with one or more "file" parts,
// resolves (or mints) the caller's session, and runs the ingestion
// pipeline. Files with empty names are rejected before the core.
func (h *DocumentsHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	parts := form.File["file"]
	if len(parts) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no files uploaded")
		return
	}

	var files []app.UploadFile
	for _, part := range parts {
		if part.Filename == "" {
			continue
		}
		if part.Size > h.maxFileBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge,
				"file too large: "+part.Filename)
			return
		}
		f, err := part.Open()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, h.maxFileBytes+1))
		_ = f.Close()
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
			return
		}
		if int64(len(data)) > h.maxFileBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge,
				"file too large: "+part.Filename)
			return
		}
		files = append(files, app.UploadFile{
			Name:        part.Filename,
			ContentType: part.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no valid files uploaded")
		return
	}

	sess, created, err := h.sessions.GetOrCreate(middleware.SessionID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		return
	}
	if created {
		token, err := sessiontoken.Mint(h.tokenSecret, sess.ID)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "mint session token failed")
			return
		}
		c.SetCookie(h.cookieName, token, h.cookieMaxAge, "/", "", false, true)
	}

	result, err := h.ingest.Ingest(c.Request.Context(), sess.ID, files)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrShuttingDown):
			response.Error(c, http.StatusServiceUnavailable, response.CodeShuttingDown, "service is shutting down")
		case errors.Is(err, app.ErrEmbeddingUnavailable):
			response.Error(c, http.StatusBadGateway, response.CodeInternalServer, "embedding service unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed")
		}
		return
	}
	response.OK(c, result)
}

// ListFiles returns the file records of the caller's session, empty
// when there is no session yet.
func (h *DocumentsHandler) ListFiles(c *gin.Context) {
	files := h.sessions.ListFiles(middleware.SessionID(c))
	if files == nil {
		files = []model.FileRecord{}
	}
	response.OK(c, gin.H{"files": files})
}

// ClearSession reclaims the caller's session storage and index
// entries and expires the cookie. Clearing a nonexistent session
// succeeds.
func (h *DocumentsHandler) ClearSession(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if err := h.lifecycle.ClearSession(c.Request.Context(), sessionID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear session failed")
		return
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	response.OK(c, gin.H{"cleared_session_id": sessionID})
}
