package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/mail"
	"time"

	"github.com/jordan-wright/email"
	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 10 * time.Second

// Envelope carries everything needed for the two messages of a submission.
type Envelope struct {
	SubmitterName    string
	SubmitterAddress string
	Reference        string

	NotificationSubject string
	NotificationHTML    string
	ReplySubject        string
	ReplyHTML           string
}

// Result holds the outcome of both sends.
type Result struct {
	Notification error
	Reply        error
}

// Err is nil only when both messages were accepted.
func (r Result) Err() error {
	var errs []error
	if r.Notification != nil {
		errs = append(errs, fmt.Errorf("notification: %w", r.Notification))
	}
	if r.Reply != nil {
		errs = append(errs, fmt.Errorf("auto-reply: %w", r.Reply))
	}
	return errors.Join(errs...)
}

// Dispatcher sends the operator notification and the client auto-reply
// concurrently. There is no retry.
type Dispatcher struct {
	sender   Sender
	from     string
	operator string
	timeout  time.Duration
	logger   *slog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithTimeout(d time.Duration) DispatcherOption {
	return func(ds *Dispatcher) { ds.timeout = d }
}

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(ds *Dispatcher) { ds.logger = logger }
}

// NewDispatcher sends from the from address; notifications always go to
// operator.
func NewDispatcher(sender Sender, from, operator string, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:   sender,
		from:     from,
		operator: operator,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) Result {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	submitter := (&mail.Address{
		Name:    html.UnescapeString(env.SubmitterName),
		Address: env.SubmitterAddress,
	}).String()

	notification := d.message(d.operator, env.NotificationSubject, env.NotificationHTML, env.Reference)
	notification.ReplyTo = []string{submitter}

	reply := d.message(submitter, env.ReplySubject, env.ReplyHTML, env.Reference)

	// One failed send must not cancel the other.
	var (
		g   errgroup.Group
		res Result
	)
	g.Go(func() error {
		res.Notification = d.sender.Send(ctx, notification)
		return res.Notification
	})
	g.Go(func() error {
		res.Reply = d.sender.Send(ctx, reply)
		return res.Reply
	})
	if err := g.Wait(); err != nil {
		d.logger.ErrorContext(ctx, "email dispatch failed",
			"err", err,
			"reference", env.Reference,
			"notification_error", errString(res.Notification),
			"reply_error", errString(res.Reply),
		)
	}
	return res
}

func (d *Dispatcher) message(to, subject, body, reference string) *email.Email {
	e := email.NewEmail()
	e.From = d.from
	e.To = []string{to}
	e.Subject = html.UnescapeString(subject)
	e.HTML = []byte(body)
	if reference != "" {
		e.Headers.Set("X-Entity-Ref-ID", reference)
	}
	return e
}

func errString(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
