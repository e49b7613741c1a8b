package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pable/cs-logstats/internal/aggregator"
	"github.com/pable/cs-logstats/internal/logfile"
	"github.com/pable/cs-logstats/internal/metrics"
	"github.com/pable/cs-logstats/internal/model"
	"github.com/pable/cs-logstats/internal/parser"
)

// maxUploadBytes caps a log accepted by POST /api/parse, both the request
// body and the decompressed text.
const maxUploadBytes = 64 << 20

// Store is the narrow store contract required by the HTTP API.
type Store interface {
	LogExists(hash string) (bool, error)
	LogCount() (int, error)
	InsertBundle(hash, source string, b *model.Bundle, parsedAt time.Time) error
	ListLogs() ([]model.LogSummary, error)
	GetLogByPrefix(prefix string) (*model.LogSummary, error)
	GetBundle(hash string) (*model.Bundle, error)
	GetReport(hash, kind string) (json.RawMessage, error)
}

// Server provides an HTTP API for parsing logs and reading stored reports.
type Server struct {
	addr      string
	store     Store
	opts      aggregator.Options
	logger    *slog.Logger
	metrics   *metrics.Collector
	registry  *prometheus.Registry
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	maxUpload int64
}

// NewServer creates a new HTTP API server. A nil logger uses slog.Default.
func NewServer(addr string, store Store, opts aggregator.Options, logger *slog.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	collector, reg := metrics.NewCollector()
	return &Server{
		addr:      addr,
		store:     store,
		opts:      opts.WithDefaults(),
		logger:    logger,
		metrics:   collector,
		registry:  reg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		maxUpload: maxUploadBytes,
	}
}

// Handler builds the gin router serving every route.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/parse", s.handleParse)
	r.GET("/api/logs", s.handleListLogs)
	r.GET("/api/logs/:hash", s.handleGetLog)
	r.GET("/api/logs/:hash/:report", s.handleGetReport)
	r.GET("/metrics", gin.WrapH(metrics.Handler(s.registry)))
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	if n, err := s.store.LogCount(); err == nil {
		s.metrics.SetStored(n)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()
	s.logger.Info("http_listen", "addr", listener.Addr().String())

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	n, err := s.store.LogCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).String(),
		"log_count": n,
	})
}

// handleParse accepts a log either as the raw request body or as the "log"
// field of a multipart form. Compressed uploads are recognized by file name
// (the multipart file name, or the "name" query parameter for raw bodies).
// The log is stored unless its hash is already known; ?force=true re-stores.
func (s *Server) handleParse(c *gin.Context) {
	name := c.DefaultQuery("name", "upload.log")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	var body io.Reader = c.Request.Body

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("log")
		if err != nil {
			if tooLarge(err) {
				s.rejectTooLarge(c)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field \"log\""})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		body, name = f, fh.Filename
	}

	content, err := logfile.Decode(name, body, s.maxUpload)
	if err != nil {
		if tooLarge(err) {
			s.rejectTooLarge(c)
			return
		}
		s.metrics.ObserveResult(metrics.ResultError)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty log"})
		return
	}

	hash := parser.HashLog(content)
	exists, err := s.store.LogExists(hash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check store"})
		return
	}
	if exists && c.Query("force") != "true" {
		bundle, err := s.store.GetBundle(hash)
		if err != nil || bundle == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stored reports"})
			return
		}
		s.metrics.ObserveResult(metrics.ResultDuplicate)
		c.JSON(http.StatusOK, gin.H{
			"hash":      hash,
			"source":    name,
			"stored":    false,
			"duplicate": true,
			"reports":   bundle,
		})
		return
	}

	start := time.Now()
	bundle, st := parser.ParseLog(content, s.opts)
	elapsed := time.Since(start)

	if err := s.store.InsertBundle(hash, name, bundle, time.Now()); err != nil {
		s.metrics.ObserveResult(metrics.ResultError)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store reports"})
		return
	}
	s.metrics.Observe(st, elapsed)
	if n, err := s.store.LogCount(); err == nil {
		s.metrics.SetStored(n)
	}
	s.logger.Info("http_parse", "hash", hash[:12], "source", name, "lines", st.Lines, "skipped", st.Skipped, "elapsed", elapsed)

	events := make(map[string]int, len(st.Events))
	for kind, n := range st.Events {
		events[kind.String()] = n
	}
	c.JSON(http.StatusOK, gin.H{
		"hash":      hash,
		"source":    name,
		"stored":    true,
		"duplicate": exists,
		"stats": gin.H{
			"lines":       st.Lines,
			"timestamped": st.Timestamped,
			"skipped":     st.Skipped,
			"events":      events,
		},
		"reports": bundle,
	})
}

func (s *Server) handleListLogs(c *gin.Context) {
	logs, err := s.store.ListLogs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list logs"})
		return
	}
	if logs == nil {
		logs = []model.LogSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// lookup resolves the :hash parameter as a prefix and writes a 404 when
// nothing matches.
func (s *Server) lookup(c *gin.Context) *model.LogSummary {
	log, err := s.store.GetLogByPrefix(c.Param("hash"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read store"})
		return nil
	}
	if log == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
		return nil
	}
	return log
}

func (s *Server) handleGetLog(c *gin.Context) {
	log := s.lookup(c)
	if log == nil {
		return
	}
	bundle, err := s.store.GetBundle(log.Hash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stored reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": log, "reports": bundle})
}

func (s *Server) handleGetReport(c *gin.Context) {
	kind := c.Param("report")
	if !slices.Contains(model.ReportKinds(), kind) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown report", "reports": model.ReportKinds()})
		return
	}
	log := s.lookup(c)
	if log == nil {
		return
	}
	body, err := s.store.GetReport(log.Hash, kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read report"})
		return
	}
	if body == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not stored"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// tooLarge reports whether err came from the body or decompressed size cap.
func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, logfile.ErrTooLarge)
}

func (s *Server) rejectTooLarge(c *gin.Context) {
	s.metrics.ObserveResult(metrics.ResultError)
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("log exceeds %d bytes", s.maxUpload)})
}
