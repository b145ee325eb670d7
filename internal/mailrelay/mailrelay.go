// Package mailrelay emails a rendered copy of an inbound webhook request.
package mailrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"sort"

	"github.com/chxlky/webhook-relay/internal/models"
	"go.uber.org/zap"
)

const DefaultSubject = "WebHook receive"

var ErrCannotSend = errors.New("can't send an email with current data")

type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers a prepared email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, email *Email) (string, error)
}

type Request struct {
	Headers map[string]string
	Payload json.RawMessage
	To      string
}

type Config struct {
	From    string
	Subject string
}

type Relay struct {
	sender Sender
	config Config
	logger *zap.Logger
}

func New(sender Sender, cfg Config, logger *zap.Logger) *Relay {
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{sender: sender, config: cfg, logger: logger}
}

func (r *Relay) Relay(ctx context.Context, req Request) models.Result {
	if !CanSend(req) {
		return models.Nack(ErrCannotSend.Error())
	}

	html, err := RenderHTML(req.Headers, req.Payload)
	if err != nil {
		r.logger.Error("Failed to render webhook email", zap.Error(err))
		return models.Nack(err.Error())
	}

	id, err := r.sender.Send(ctx, &Email{
		From:    r.config.From,
		To:      []string{req.To},
		Subject: r.config.Subject,
		HTML:    html,
	})
	if err != nil {
		r.logger.Error("Failed to send webhook email", zap.String("to", req.To), zap.Error(err))
		return models.Nack(err.Error())
	}

	r.logger.Info("Webhook email sent", zap.String("to", req.To), zap.String("messageID", id))

	return models.Ack(id)
}

func CanSend(req Request) bool {
	return req.Headers != nil && hasPayload(req.Payload) && req.To != ""
}

func hasPayload(p json.RawMessage) bool {
	p = bytes.TrimSpace(p)
	return len(p) > 0 && !bytes.Equal(p, []byte("null"))
}

type header struct {
	Name  string
	Value string
}

var bodyTemplate = template.Must(template.New("body").Parse(`
<h4>Headers</h4>
<table>
  <tbody>
{{- range .Headers}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.Value}}</td>
    </tr>
{{- end}}
  </tbody>
</table>
<br/>
<h4>Payload</h4>
<pre>{{.Payload}}</pre>
`))

// RenderHTML lists the headers in name order followed by the indented JSON payload.
func RenderHTML(headers map[string]string, payload json.RawMessage) (string, error) {
	rows := make([]header, 0, len(headers))
	for name, value := range headers {
		rows = append(rows, header{Name: name, Value: value})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		return "", fmt.Errorf("invalid JSON payload: %w", err)
	}

	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		Headers []header
		Payload string
	}{rows, pretty.String()})
	if err != nil {
		return "", fmt.Errorf("failed to render email body: %w", err)
	}

	return buf.String(), nil
}
