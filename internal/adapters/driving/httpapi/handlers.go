package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quaero-labs/quaero/internal/core/domain"
)

// queryRequest is the POST /v1/query payload.
type queryRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	answer, err := s.answers.Answer(c.Request.Context(), req.Question, req.DocumentIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, fmt.Errorf("%w: missing file field: %v", domain.ErrInvalidRequest, err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, fmt.Errorf("read upload: %w", err))
		return
	}

	info, err := s.ingest.IngestBytes(c.Request.Context(), fileHeader.Filename, data, c.PostForm("document_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.ingest.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if docs == nil {
		docs = []domain.DocumentInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := s.ingest.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
