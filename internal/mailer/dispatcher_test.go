package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*email.Email
	fail map[string]error // by first recipient
}

func (f *fakeSender) Send(_ context.Context, e *email.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, e)
	return f.fail[e.To[0]]
}

func (f *fakeSender) byRecipient(to string) *email.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.sent {
		if e.To[0] == to {
			return e
		}
	}
	return nil
}

func testEnvelope() Envelope {
	return Envelope{
		SubmitterName:       "Jane O&#39;Doe",
		SubmitterAddress:    "jane@example.com",
		Reference:           "ref-1",
		NotificationSubject: "New quote request from Jane O&#39;Doe",
		NotificationHTML:    "<p>notification</p>",
		ReplySubject:        "Thank you for contacting me",
		ReplyHTML:           "<p>reply</p>",
	}
}

func TestDispatchSendsBothMessages(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "Site <noreply@example.com>", "ops@example.com")

	res := d.Dispatch(context.Background(), testEnvelope())
	require.NoError(t, res.Err())
	require.Len(t, sender.sent, 2)

	n := sender.byRecipient("ops@example.com")
	require.NotNil(t, n)
	assert.Equal(t, "Site <noreply@example.com>", n.From)
	assert.Equal(t, "New quote request from Jane O'Doe", n.Subject)
	assert.Equal(t, []string{`"Jane O'Doe" <jane@example.com>`}, n.ReplyTo)
	assert.Equal(t, "<p>notification</p>", string(n.HTML))
	assert.Equal(t, "ref-1", n.Headers.Get("X-Entity-Ref-ID"))

	r := sender.byRecipient(`"Jane O'Doe" <jane@example.com>`)
	require.NotNil(t, r)
	assert.Equal(t, "Thank you for contacting me", r.Subject)
	assert.Equal(t, "<p>reply</p>", string(r.HTML))
}

func TestDispatchFailsWhenEitherSendFails(t *testing.T) {
	boom := &APIError{Status: 422, Body: `{"message":"invalid to"}`}

	sender := &fakeSender{fail: map[string]error{`"Jane O'Doe" <jane@example.com>`: boom}}
	res := NewDispatcher(sender, "noreply@example.com", "ops@example.com").Dispatch(context.Background(), testEnvelope())

	require.Error(t, res.Err())
	assert.NoError(t, res.Notification)
	assert.ErrorIs(t, res.Reply, boom)
	assert.Len(t, sender.sent, 2, "the other send still runs")

	var apiErr *APIError
	require.True(t, errors.As(res.Err(), &apiErr))
	assert.Equal(t, 422, apiErr.Status)
	assert.Contains(t, res.Err().Error(), "auto-reply")
}

func TestDispatchReportsBothFailures(t *testing.T) {
	sender := &fakeSender{fail: map[string]error{
		"ops@example.com":                 errors.New("notification down"),
		`"Jane O'Doe" <jane@example.com>`: errors.New("reply down"),
	}}
	res := NewDispatcher(sender, "noreply@example.com", "ops@example.com").Dispatch(context.Background(), testEnvelope())

	err := res.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notification down")
	assert.Contains(t, err.Error(), "reply down")
}

type slowSender struct{}

func (slowSender) Send(ctx context.Context, _ *email.Email) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return nil
	}
}

func TestDispatchAppliesTimeout(t *testing.T) {
	d := NewDispatcher(slowSender{}, "noreply@example.com", "ops@example.com", WithTimeout(20*time.Millisecond))

	res := d.Dispatch(context.Background(), testEnvelope())
	assert.ErrorIs(t, res.Notification, context.DeadlineExceeded)
	assert.ErrorIs(t, res.Reply, context.DeadlineExceeded)
}
