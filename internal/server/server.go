// Package server is the HTTP surface of the intake pipeline. It decodes
// client payloads, calls the extraction, matching and order components, and
// turns every failure into one JSON error envelope.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/orders-intake/constants"
	"github.com/joseph-ayodele/orders-intake/internal/entity"
	"github.com/joseph-ayodele/orders-intake/internal/extract"
	"github.com/joseph-ayodele/orders-intake/internal/match"
)

// OrderService finalizes and lists orders.
type OrderService interface {
	Finalize(ctx context.Context, customerName, customerID string, items []entity.ConfirmedOrderItem) ([]int64, error)
	ListOrders(ctx context.Context) ([]*entity.Order, error)
}

// OrderExporter renders all orders as an XLSX workbook.
type OrderExporter interface {
	ExportOrdersXLSX(ctx context.Context) ([]byte, error)
}

// Deps are the process-wide collaborators shared by all requests.
type Deps struct {
	Extractor extract.ItemExtractor
	Matcher   match.BatchMatcher
	Orders    OrderService
	Exporter  OrderExporter
	Ping      func(ctx context.Context) error
}

type Options struct {
	AllowedOrigin     string
	MaxUploadBytes    int64
	DefaultMatchLimit int
}

type Server struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
}

func NewServer(deps Deps, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.DefaultMatchLimit <= 0 {
		opts.DefaultMatchLimit = constants.DefaultMatchLimit
	}
	registerJSONFieldNames()
	return &Server{deps: deps, opts: opts, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.logger))
	if s.opts.AllowedOrigin != "" {
		r.Use(allowOrigin(s.opts.AllowedOrigin))
	}

	r.POST("/extract", s.Extract)
	r.POST("/match", s.Match)
	r.POST("/finalize", s.Finalize)
	r.GET("/orders", s.ListOrders)
	r.GET("/orders/export", s.ExportOrders)
	r.GET("/healthz", s.Health)

	return r
}

func (s *Server) Health(c *gin.Context) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(c.Request.Context()); err != nil {
			s.logger.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
