package ui

import (
	stderrors "errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dummycoder/adapters/excel"
	"dummycoder/app"
	"dummycoder/domain/dummy"
	"dummycoder/internal/errors"
	"dummycoder/ui/middleware"
)

// handleIndex serves the upload form
func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, "index.html", gin.H{
		"DefaultSeparator": s.config.DefaultSeparator,
		"MaxUploadMB":      s.config.MaxUploadBytes / (1024 * 1024),
		"DownloadName":     s.config.DownloadName,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleColumns lists the columns of an uploaded file
func (s *Server) handleColumns(c *gin.Context) {
	file, header, err := s.openUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer file.Close()

	inspection, err := s.service.Inspect(c.Request.Context(), file, header.Filename)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inspection)
}

// handlePreview runs the transformation and returns the value universes as JSON
func (s *Server) handlePreview(c *gin.Context) {
	req, closeFile, err := s.parseEncodeForm(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer closeFile()

	outcome, err := s.service.Preview(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id":   outcome.RequestID,
		"columns":      outcome.Columns,
		"row_count":    outcome.RowCount,
		"column_count": outcome.ColumnCount,
		"universes":    outcome.Universes,
		"report_html":  string(outcome.Report.HTML),
	})
}

// handleEncode runs the transformation and streams the workbook back
func (s *Server) handleEncode(c *gin.Context) {
	req, closeFile, err := s.parseEncodeForm(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer closeFile()

	outcome, err := s.service.Run(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.config.DownloadName))
	c.Data(http.StatusOK, excel.MIMEType, outcome.Workbook)
}

// openUpload returns the multipart file in the "dataset" field
func (s *Server) openUpload(c *gin.Context) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		if isBodyTooLarge(err) {
			return nil, nil, errors.UploadTooLarge(c.Request.ContentLength, s.config.MaxUploadBytes)
		}
		log.Printf("[openUpload] FAILED - No file uploaded: %v", err)
		return nil, nil, errors.InvalidInput("No file uploaded")
	}
	if header.Size > s.config.MaxUploadBytes {
		file.Close()
		return nil, nil, errors.UploadTooLarge(header.Size, s.config.MaxUploadBytes)
	}
	return file, header, nil
}

// parseEncodeForm reads the upload and the user's choices. The returned
// function closes the uploaded file.
func (s *Server) parseEncodeForm(c *gin.Context) (app.EncodeRequest, func(), error) {
	file, header, err := s.openUpload(c)
	if err != nil {
		return app.EncodeRequest{}, func() {}, err
	}
	closeFile := func() { file.Close() }

	var columns []string
	for _, name := range c.PostFormArray("columns") {
		if strings.TrimSpace(name) != "" {
			columns = append(columns, name)
		}
	}

	separator, ok := c.GetPostForm("separator")
	if !ok {
		separator = s.config.DefaultSeparator
	}

	// The form sends a hidden "false" followed by the checkbox value, so the
	// last value wins; a missing field means keep.
	keepOriginals := true
	if values := c.PostFormArray("keep_originals"); len(values) > 0 {
		keepOriginals, err = strconv.ParseBool(values[len(values)-1])
		if err != nil {
			closeFile()
			return app.EncodeRequest{}, func() {}, errors.InvalidInput("keep_originals must be true or false")
		}
	}

	var policy dummy.ConflictPolicy
	if raw := c.PostForm("conflict_policy"); raw != "" {
		policy, err = dummy.ParseConflictPolicy(raw)
		if err != nil {
			closeFile()
			return app.EncodeRequest{}, func() {}, err
		}
	}

	return app.EncodeRequest{
		RequestID:      middleware.GetRequestID(c),
		Filename:       header.Filename,
		File:           file,
		Columns:        columns,
		Separator:      separator,
		KeepOriginals:  keepOriginals,
		ConflictPolicy: policy,
	}, closeFile, nil
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	log.Printf("[%s] FAILED (%d %s): %v", c.FullPath(), status, errors.GetCode(err), err)
	c.JSON(status, gin.H{
		"error":      err.Error(),
		"code":       errors.GetCode(err),
		"request_id": middleware.GetRequestID(c),
	})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
