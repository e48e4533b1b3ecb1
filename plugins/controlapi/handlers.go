package controlapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
	"github.com/bft-labs/viscactl/pkg/viscactl"
)

// Controller is the part of *viscactl.Controller the API serves.
type Controller interface {
	Status() viscactl.State
	Connected() bool
	Addr() string
	Cursor() int
	Commands() []visca.Command
	SendOnce(ctx context.Context, index int) (viscactl.Report, error)
	Stop() error
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	State     string    `json:"state"`
	Connected bool      `json:"connected"`
	Addr      string    `json:"addr"`
	Cursor    int       `json:"cursor"`
	Commands  int       `json:"commands"`
	Timestamp time.Time `json:"timestamp"`
}

// CommandInfo is one entry of GET /commands.
type CommandInfo struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Frame string `json:"frame"`
	Next  bool   `json:"next,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type handler struct {
	ctrl   Controller
	logger log.Logger
}

// NewRouter builds the gin engine serving ctrl.
func NewRouter(ctrl Controller, logger log.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	h := &handler{ctrl: ctrl, logger: logger}
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLog)

	r.GET("/health", h.health)
	r.GET("/status", h.status)
	r.GET("/commands", h.commands)
	r.POST("/commands/:index/send", h.send)
	r.POST("/stop", h.stop)
	return r
}

func (h *handler) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Debug("control API request",
		log.String("method", c.Request.Method),
		log.String("path", c.Request.URL.Path),
		log.Int("status", c.Writer.Status()),
		log.Duration("elapsed", time.Since(start)),
	)
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

func (h *handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		State:     h.ctrl.Status().String(),
		Connected: h.ctrl.Connected(),
		Addr:      h.ctrl.Addr(),
		Cursor:    h.ctrl.Cursor(),
		Commands:  len(h.ctrl.Commands()),
		Timestamp: time.Now(),
	})
}

func (h *handler) commands(c *gin.Context) {
	cmds := h.ctrl.Commands()
	cursor := h.ctrl.Cursor()

	out := make([]CommandInfo, 0, len(cmds))
	for i, cmd := range cmds {
		out = append(out, CommandInfo{
			Index: i,
			Label: cmd.Label(),
			Frame: cmd.Hex(),
			Next:  i == cursor,
		})
	}
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

func (h *handler) send(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abort(c, http.StatusBadRequest, "bad_index", "index must be an integer")
		return
	}

	report, err := h.ctrl.SendOnce(c.Request.Context(), index)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, viscactl.ErrIndexOutOfRange):
		abort(c, http.StatusNotFound, "index_out_of_range", err.Error())
	case errors.Is(err, viscactl.ErrNotConnected):
		abort(c, http.StatusServiceUnavailable, "not_connected", err.Error())
	default:
		abort(c, http.StatusBadGateway, "send_failed", err.Error())
	}
}

// stop answers before stopping: Stop shuts this server down and waits for
// in-flight requests.
func (h *handler) stop(c *gin.Context) {
	h.logger.Info("stop requested via control API", log.String("remote", c.ClientIP()))
	go func() {
		if err := h.ctrl.Stop(); err != nil {
			h.logger.Error("stop failed", log.Err(err))
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"state": viscactl.StateStopping.String()})
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     code,
		Message:   msg,
		Timestamp: time.Now(),
	})
}
