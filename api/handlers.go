package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chxlky/webhook-relay/internal/config"
	"github.com/chxlky/webhook-relay/internal/mailrelay"
	"github.com/chxlky/webhook-relay/internal/models"
	"github.com/chxlky/webhook-relay/internal/relocator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Relocator *relocator.Relocator
	Relay     *mailrelay.Relay
	Trello    config.TrelloConfig
	Mail      config.MailConfig
}

func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/pr2trello", h.PrToTrelloHandler)
	group.POST("/json2mail", h.JSONToMailHandler)
	group.GET("/health", h.HealthCheckHandler)
}

func (h *Handler) PrToTrelloHandler(c *gin.Context) {
	log := zap.L().With(zap.String("invocationID", uuid.NewString()))

	// GitHub sends a ping when the webhook is created
	if c.GetHeader("X-GitHub-Event") == "ping" {
		log.Info("Received GitHub ping")
		c.JSON(http.StatusOK, models.Ack("pong"))
		return
	}

	var event models.PullRequestEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		log.Warn("Could not bind pull request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	trello, err := h.Trello.WithOverrides(c.GetQuery)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Info("Received pull request event", zap.String("action", event.Action), zap.Int("number", event.Number))

	res := h.Relocator.Relocate(c.Request.Context(), event, trello.Relocator())
	logResult(log, res)
	c.JSON(http.StatusOK, res)
}

func (h *Handler) JSONToMailHandler(c *gin.Context) {
	log := zap.L().With(zap.String("invocationID", uuid.NewString()))

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 && !json.Valid(body) {
		log.Warn("Received non-JSON webhook body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	to := h.Mail.To
	if v, ok := c.GetQuery("email"); ok {
		to = v
	}

	res := h.Relay.Relay(c.Request.Context(), mailrelay.Request{
		Headers: flattenHeaders(c.Request.Header),
		Payload: body,
		To:      to,
	})
	logResult(log, res)
	c.JSON(http.StatusOK, res)
}

func (h *Handler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func flattenHeaders(header http.Header) map[string]string {
	out := make(map[string]string, len(header))
	for name, values := range header {
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func logResult(log *zap.Logger, res models.Result) {
	if res.Acked() {
		log.Info("Invocation acknowledged", zap.Any("ack", res.Ack))
		return
	}
	log.Info("Invocation negated", zap.String("nack", res.Nack))
}
