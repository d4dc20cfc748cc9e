// Package api handles HTTP and WebSocket API endpoints
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tablewise/printstudio/internal/backend"
	"github.com/tablewise/printstudio/internal/kitchen"
	"github.com/tablewise/printstudio/internal/preview"
	"github.com/tablewise/printstudio/pkg/templatefmt"
)

// Server is the API server
type Server struct {
	router   *gin.Engine
	backend  *backend.Client
	feed     *kitchen.Feed
	upgrader websocket.Upgrader

	clients   map[*WSClient]bool
	clientsMu sync.RWMutex
}

// NewServer creates a new API server
func NewServer(client *backend.Client, feed *kitchen.Feed) *Server {
	// Set Gin to release mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()

	// CORS middleware
	router.Use(corsMiddleware())

	server := &Server{
		router:  router,
		backend: client,
		feed:    feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		clients: make(map[*WSClient]bool),
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	// Template persistence
	s.router.GET("/template/:family", s.handleGetTemplate)
	s.router.PUT("/template/:family", s.handlePutTemplate)

	// Preview rendering
	s.router.POST("/preview", s.handlePreview)

	// Kitchen board
	s.router.GET("/kitchen/tickets", s.handleGetTickets)
	s.router.POST("/kitchen/ticket/:id/status", s.handleTicketStatus)
	s.router.POST("/kitchen/ticket/:id/reject", s.handleTicketReject)

	// WebSocket
	s.router.GET("/ws", s.handleWebSocket)

	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// handleGetTemplate returns one family's template in flattened wire form.
// A restaurant that never configured a template gets the built-in default,
// never an empty document.
func (s *Server) handleGetTemplate(c *gin.Context) {
	family, err := templatefmt.ParseFamily(c.Param("family"))
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	tpl, err := s.backend.Template(c.Request.Context(), family)
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"family":   family,
		"template": templatefmt.Serialize(tpl),
	})
}

// handlePutTemplate persists one family's template. The body is the flat
// element array; it is normalized through a parse/serialize round trip
// before the write, so malformed input degrades to defaults instead of
// corrupting the stored column.
func (s *Server) handlePutTemplate(c *gin.Context) {
	family, err := templatefmt.ParseFamily(c.Param("family"))
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "unreadable body"})
		return
	}

	tpl := templatefmt.Parse(raw, family)
	if err := s.backend.SaveTemplate(c.Request.Context(), family, templatefmt.Serialize(tpl)); err != nil {
		// No automatic retry; the caller's in-memory state survives.
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true})
}

// handlePreview renders a template to text lines, ANSI-styled text, or a
// PNG, selected by the format query parameter.
func (s *Server) handlePreview(c *gin.Context) {
	var req struct {
		Family     string          `json:"family"`
		Mode       string          `json:"mode" binding:"required"`
		SelectedID string          `json:"selected_id"`
		Template   json.RawMessage `json:"template"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "mode is required"})
		return
	}

	mode, ok := preview.ParseMode(req.Mode)
	if !ok {
		c.JSON(400, gin.H{"error": "mode must be bill, receipt or kot"})
		return
	}

	family := templatefmt.FamilyReceipt
	if mode == preview.ModeKOT {
		family = templatefmt.FamilyKOT
	}
	if req.Family != "" {
		f, err := templatefmt.ParseFamily(req.Family)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		family = f
	}

	tpl := templatefmt.Parse(req.Template, family)
	doc := preview.Render(tpl, mode, req.SelectedID, nil)

	switch c.DefaultQuery("format", "text") {
	case "text":
		c.JSON(200, gin.H{
			"columns": doc.Columns,
			"lines":   doc.TextLines(),
		})
	case "ansi":
		c.String(200, preview.RenderANSI(doc))
	case "png":
		img, err := preview.RenderPNG(doc)
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "image/png", img)
	default:
		c.JSON(400, gin.H{"error": "format must be text, ansi or png"})
	}
}

// handleGetTickets returns the current board snapshot with aggregate
// counts. A failing backend keeps the last good snapshot on screen; the
// staleness is reported alongside the data, never instead of it.
func (s *Server) handleGetTickets(c *gin.Context) {
	tickets := s.feed.Snapshot()
	counts := kitchen.Summarize(tickets, time.Now())

	resp := gin.H{
		"tickets": tickets,
		"counts":  counts,
	}
	if err := s.feed.Err(); err != nil {
		resp["stale"] = true
		resp["error"] = err.Error()
	}

	c.JSON(200, resp)
}

// handleTicketStatus moves a ticket to the requested status
func (s *Server) handleTicketStatus(c *gin.Context) {
	ticketID := c.Param("id")

	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "status is required"})
		return
	}

	status, ok := kitchen.ParseStatus(req.Status)
	if !ok {
		c.JSON(400, gin.H{"error": "unknown status: " + req.Status})
		return
	}

	if err := s.backend.UpdateTicketStatus(c.Request.Context(), ticketID, status); err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	s.feed.RefreshNow()
	c.JSON(200, gin.H{"success": true})
}

// handleTicketReject rejects a ticket
func (s *Server) handleTicketReject(c *gin.Context) {
	ticketID := c.Param("id")

	if err := s.backend.RejectTicket(c.Request.Context(), ticketID); err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	s.feed.RefreshNow()
	c.JSON(200, gin.H{"success": true})
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for embedding in an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
