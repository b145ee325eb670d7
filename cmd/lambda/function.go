package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chxlky/webhook-relay/internal/config"
	"github.com/chxlky/webhook-relay/internal/mailrelay"
	"github.com/chxlky/webhook-relay/internal/models"
	"github.com/chxlky/webhook-relay/internal/relocator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type function struct {
	relocator *relocator.Relocator
	relay     *mailrelay.Relay
	trello    config.TrelloConfig
	mail      config.MailConfig
	logger    *zap.Logger
}

// Handle routes on the path suffix: /json2mail mails the request, anything
// else is treated as a pull request event.
func (f *function) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := f.logger.With(zap.String("invocationID", uuid.NewString()), zap.String("path", req.Path))

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, "Invalid base64 body"), nil
		}
		body = decoded
	}

	query := func(key string) (string, bool) {
		v, ok := req.QueryStringParameters[key]
		return v, ok
	}

	var res models.Result
	if strings.HasSuffix(strings.TrimRight(req.Path, "/"), "/json2mail") {
		if len(strings.TrimSpace(string(body))) > 0 && !json.Valid(body) {
			return errorResponse(http.StatusBadRequest, "Invalid JSON payload"), nil
		}
		to := f.mail.To
		if v, ok := query("email"); ok {
			to = v
		}
		res = f.relay.Relay(ctx, mailrelay.Request{Headers: req.Headers, Payload: body, To: to})
	} else {
		var event models.PullRequestEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Warn("Could not decode pull request payload", zap.Error(err))
			return errorResponse(http.StatusBadRequest, "Invalid JSON payload"), nil
		}
		trello, err := f.trello.WithOverrides(query)
		if err != nil {
			return errorResponse(http.StatusBadRequest, err.Error()), nil
		}
		res = f.relocator.Relocate(ctx, event, trello.Relocator())
	}

	log.Info("Invocation finished", zap.Bool("ack", res.Acked()), zap.String("nack", res.Nack))

	return jsonResponse(http.StatusOK, res), nil
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}
}

func errorResponse(status int, msg string) events.APIGatewayProxyResponse {
	return jsonResponse(status, map[string]string{"error": msg})
}
