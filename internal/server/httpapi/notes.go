package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/gin-gonic/gin"
)

type noteRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type attachmentRequest struct {
	FileName string `json:"fileName"`
}

// principal is set by authRequired for every route in the notes group.
func principal(c *gin.Context) auth.Principal {
	p, _ := auth.PrincipalFromContext(c.Request.Context())
	return p
}

// pathID parses a positive integer path parameter. Anything else cannot
// name an existing row.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) listNotes(c *gin.Context) {
	notes, err := s.deps.Notes.List(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, err, msgNoteNotFound)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (s *HTTPServer) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	note, err := s.deps.Notes.Create(c.Request.Context(), principal(c), req.Title, req.Description)
	if err != nil {
		writeError(c, err, msgNoteNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Note added", "id": note.ID, "note": note})
}

func (s *HTTPServer) updateNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoteNotFound})
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	note, err := s.deps.Notes.Update(c.Request.Context(), principal(c), id, req.Title, req.Description)
	if err != nil {
		writeError(c, err, msgNoteNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note updated", "note": note})
}

func (s *HTTPServer) deleteNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoteNotFound})
		return
	}

	if err := s.deps.Notes.Delete(c.Request.Context(), principal(c), id); err != nil {
		writeError(c, err, msgNoteNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}

func (s *HTTPServer) createAttachment(c *gin.Context) {
	noteID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoteNotFound})
		return
	}
	var req attachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	ticket, err := s.deps.Attachments.CreateUpload(c.Request.Context(), principal(c), noteID, req.FileName)
	if err != nil {
		writeError(c, err, msgNoteNotFound)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        ticket.Attachment.ID,
		"key":       ticket.Attachment.StorageKey,
		"fileName":  ticket.Attachment.FileName,
		"uploadUrl": ticket.UploadURL,
	})
}

func (s *HTTPServer) getAttachment(c *gin.Context) {
	noteID, ok1 := pathID(c, "id")
	attID, ok2 := pathID(c, "attachmentID")
	if !ok1 || !ok2 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgAttachNotFound})
		return
	}

	url, err := s.deps.Attachments.DownloadURL(c.Request.Context(), principal(c), noteID, attID)
	if err != nil {
		writeError(c, err, msgAttachNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

func (s *HTTPServer) health(c *gin.Context) {
	if s.deps.Health != nil {
		if err := s.deps.Health(c.Request.Context()); err != nil {
			s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
