// Package mailer delivers the operator notification and the client
// auto-reply for a submission.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
	"golang.org/x/time/rate"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, e *email.Email) error
}

// APIError is a non-2xx answer from the e-mail API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("email api returned %d: %s", e.Status, e.Body)
}

const maxAPIResponseBytes = 64 << 10

// APISender posts messages to a transactional e-mail HTTP API that accepts
// {from, to, subject, html} JSON with bearer authentication.
type APISender struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	newKey   func() string
}

type APIOption func(*APISender)

func WithHTTPClient(c *http.Client) APIOption {
	return func(s *APISender) { s.client = c }
}

// WithRateLimit caps outbound calls to the provider's allowance.
// rps <= 0 removes the cap.
func WithRateLimit(rps float64, burst int) APIOption {
	return func(s *APISender) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

func NewAPISender(endpoint, apiKey string, opts ...APIOption) *APISender {
	s := &APISender{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(2), 2),
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type apiPayload struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	ReplyTo []string          `json:"reply_to,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

func (s *APISender) Send(ctx context.Context, e *email.Email) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email api throttle: %w", err)
	}

	p := apiPayload{
		From:    e.From,
		To:      e.To,
		Subject: e.Subject,
		HTML:    string(e.HTML),
		Text:    string(e.Text),
		ReplyTo: e.ReplyTo,
	}
	if len(e.Headers) > 0 {
		p.Headers = make(map[string]string, len(e.Headers))
		for k := range e.Headers {
			p.Headers[k] = e.Headers.Get(k)
		}
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Idempotency-Key", s.newKey())

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email api request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

// SMTPSender relays through an SMTP server, with implicit TLS when SSL is set
// and STARTTLS when the server offers it. The connection is closed as soon as
// ctx is done, so a cancelled send is abandoned rather than finished late.
type SMTPSender struct {
	Host string
	Port int
	User string
	Pass string
	SSL  bool
}

func (s SMTPSender) Send(ctx context.Context, e *email.Email) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := s.send(ctx, addr, e); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send via %s: %w", addr, ctxErr)
		}
		return fmt.Errorf("smtp send via %s: %w", addr, err)
	}
	return nil
}

func (s SMTPSender) send(ctx context.Context, addr string, e *email.Email) error {
	from, to, err := envelopeAddresses(e)
	if err != nil {
		return err
	}
	msg, err := e.Bytes()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	var conn net.Conn
	if s.SSL {
		d := &tls.Dialer{Config: &tls.Config{ServerName: s.Host}}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if !s.SSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
				return err
			}
		}
	}
	if s.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.User, s.Pass, s.Host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// envelopeAddresses extracts the bare SMTP envelope addresses of e.
func envelopeAddresses(e *email.Email) (string, []string, error) {
	from, err := mail.ParseAddress(e.From)
	if err != nil {
		return "", nil, fmt.Errorf("parse from %q: %w", e.From, err)
	}
	var to []string
	for _, list := range [][]string{e.To, e.Cc, e.Bcc} {
		for _, raw := range list {
			a, err := mail.ParseAddress(raw)
			if err != nil {
				return "", nil, fmt.Errorf("parse recipient %q: %w", raw, err)
			}
			to = append(to, a.Address)
		}
	}
	if len(to) == 0 {
		return "", nil, errors.New("no recipients")
	}
	return from.Address, to, nil
}
