package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"escola/internal/archive"
	"escola/internal/metrics"
	"escola/internal/notify"
	"escola/internal/students"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Healthy(ctx context.Context) bool
}

// Archiver stores exported files remotely.
type Archiver interface {
	Store(ctx context.Context, fileName string, data []byte) (*archive.Result, error)
}

// Handler serves the student registry over HTTP.
type Handler struct {
	reg     *students.Registry
	feed    *notify.Feed
	archive Archiver
	metrics *metrics.Collectors
	checks  map[string]Checker
}

// NewHandler creates a handler. archive and m may be nil.
func NewHandler(reg *students.Registry, feed *notify.Feed, archive Archiver, m *metrics.Collectors) *Handler {
	return &Handler{reg: reg, feed: feed, archive: archive, metrics: m, checks: map[string]Checker{}}
}

// AddCheck registers a dependency reported by /healthz.
func (h *Handler) AddCheck(name string, c Checker) {
	h.checks[name] = c
}

func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":       "Sistema de Controle Escolar",
		"description": "Gerencie alunos e pagamentos de forma simples",
	})
}

func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, check := range h.checks {
		healthy := check.Healthy(c.Request.Context())
		body[name] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ListStudents reloads the registry from the table.
func (h *Handler) ListStudents(c *gin.Context) {
	if err := h.reg.List(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Não foi possível carregar os alunos",
			"alunos": h.reg.Students(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alunos": h.reg.Students(), "loading": h.reg.Loading()})
}

func (h *Handler) CreateStudent(c *gin.Context) {
	var in students.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}
	if err := h.reg.Create(c.Request.Context(), in); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"alunos": h.reg.Students()})
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var in students.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
		return
	}
	if err := h.reg.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alunos": h.reg.Students()})
}

// ToggleStatus flips the payment status. The body may carry the status the
// client currently shows; otherwise the in-memory one is used.
func (h *Handler) ToggleStatus(c *gin.Context) {
	var req struct {
		Current students.PaymentStatus `json:"status_pagamento"`
	}
	// chunked bodies report ContentLength -1, so only a missing body skips binding
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corpo da requisição inválido"})
			return
		}
	}
	id := c.Param("id")
	s, err := h.reg.ToggleStatus(c.Request.Context(), id, req.Current)
	if err != nil {
		writeError(c, err)
		return
	}
	if full, ok := h.reg.Find(id); ok {
		c.JSON(http.StatusOK, gin.H{"aluno": full})
		return
	}
	// stored but not loaded yet
	c.JSON(http.StatusOK, gin.H{"id": s.ID, "status_pagamento": s.PaymentStatus})
}

func (h *Handler) ExportCSV(c *gin.Context) {
	exp := h.reg.ExportCSV(c.Request.Context())
	if h.metrics != nil {
		h.metrics.Exports.Inc()
	}
	c.Header("Content-Disposition", `attachment; filename="`+exp.FileName+`"`)
	c.Data(http.StatusOK, exp.ContentType+"; charset=utf-8", exp.Data)
}

// ArchiveExport exports the current list and keeps a copy on the archive.
func (h *Handler) ArchiveExport(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "armazenamento de exportações não configurado"})
		return
	}
	exp := h.reg.ExportCSV(c.Request.Context())
	res, err := h.archive.Store(c.Request.Context(), exp.FileName, exp.Data)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "falha ao arquivar exportação"})
		return
	}
	if h.metrics != nil {
		h.metrics.Exports.Inc()
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Notifications(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": h.feed.Recent(limit)})
}

func writeError(c *gin.Context, err error) {
	var verr *students.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.First(), "fields": verr.Fields})
	case errors.Is(err, students.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": students.ErrNotFound.Error()})
	case errors.Is(err, students.ErrDuplicateCode):
		c.JSON(http.StatusConflict, gin.H{"error": students.ErrDuplicateCode.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "falha ao acessar o banco de dados"})
	}
}
