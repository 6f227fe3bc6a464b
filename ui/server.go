package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dummycoder/app"
	"dummycoder/ui/middleware"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// ServerConfig holds the settings the HTTP shell needs
type ServerConfig struct {
	MaxUploadBytes   int64
	DefaultSeparator string
	DownloadName     string
}

// Server is the web front end for the dummy coder
type Server struct {
	router    *gin.Engine
	service   *app.EncodeService
	config    ServerConfig
	templates *template.Template
}

// NewServer creates a web server around the encode service
func NewServer(service *app.EncodeService, config ServerConfig) (*Server, error) {
	if config.DownloadName == "" {
		config.DownloadName = "dummy_coded_dataset.xlsx"
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 50 * 1024 * 1024
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		config:    config,
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api", middleware.LimitUploadSize(s.config.MaxUploadBytes))
	api.POST("/columns", s.handleColumns)
	api.POST("/preview", s.handlePreview)
	api.POST("/encode", s.handleEncode)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting dummy coder UI on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, templateName, data); err != nil {
		log.Printf("Template error: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
