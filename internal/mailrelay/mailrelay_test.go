package mailrelay

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func testRequest() Request {
	return Request{
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"User-Agent":     "GitHub-Hookshot/3cf879e",
			"X-GitHub-Event": "pull_request",
		},
		Payload: json.RawMessage(`{"action":"closed","number":7,"pull_request":{"head":{"repo":{"owner":{"login":"guille-moe"}}}}}`),
		To:      "test@lalilulel.ooo",
	}
}

func TestCanSend(t *testing.T) {
	t.Parallel()

	assert.True(t, CanSend(testRequest()))

	noHeaders := testRequest()
	noHeaders.Headers = nil
	assert.False(t, CanSend(noHeaders))

	emptyHeaders := testRequest()
	emptyHeaders.Headers = map[string]string{}
	assert.True(t, CanSend(emptyHeaders))

	noBody := testRequest()
	noBody.Payload = json.RawMessage("null")
	assert.False(t, CanSend(noBody))

	noEmail := testRequest()
	noEmail.To = ""
	assert.False(t, CanSend(noEmail))
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	req := testRequest()
	out, err := RenderHTML(req.Headers, req.Payload)
	require.NoError(t, err)

	assert.Contains(t, out, "<h4>Headers</h4>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "</tbody>")
	assert.Equal(t, 3, strings.Count(out, "<tr>"))
	assert.Contains(t, out, "GitHub-Hookshot/3cf879e")
	assert.Less(t, strings.Index(out, "Content-Type"), strings.Index(out, "X-GitHub-Event"))
	assert.Contains(t, html.UnescapeString(out), `"login": "guille-moe"`)
}

func TestRenderHTML_EscapesHeaders(t *testing.T) {
	t.Parallel()

	out, err := RenderHTML(map[string]string{"X-Evil": "<script>alert(1)</script>"}, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestRenderHTML_InvalidPayload(t *testing.T) {
	t.Parallel()

	_, err := RenderHTML(map[string]string{"A": "b"}, json.RawMessage(`{not json`))
	require.Error(t, err)
}

func TestRelay_Success(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(email *Email) bool {
		return email.To[0] == "test@lalilulel.ooo" &&
			email.Subject == DefaultSubject &&
			email.From == "WebTask Bot <bot@example.com>" &&
			strings.Contains(email.HTML, "<h4>Payload</h4>")
	})).Return("msg_123", nil)

	relay := New(sender, Config{From: "WebTask Bot <bot@example.com>"}, nil)
	res := relay.Relay(context.Background(), testRequest())

	require.True(t, res.Acked(), res.Nack)
	assert.Equal(t, "msg_123", res.Ack)
	sender.AssertExpectations(t)
}

func TestRelay_InvalidData(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	req := testRequest()
	req.To = ""

	res := New(sender, Config{}, nil).Relay(context.Background(), req)

	assert.Equal(t, ErrCannotSend.Error(), res.Nack)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRelay_SendFailure(t *testing.T) {
	t.Parallel()

	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("smtp down"))

	res := New(sender, Config{}, nil).Relay(context.Background(), testRequest())

	assert.False(t, res.Acked())
	assert.Contains(t, res.Nack, "smtp down")
}
