package courier

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nazarhussain/contact-courier/internal/mailer"
	"github.com/nazarhussain/contact-courier/internal/ratelimit"
	"github.com/nazarhussain/contact-courier/internal/render"
	"github.com/nazarhussain/contact-courier/internal/submission"
)

type errorResponse struct {
	Error      string                  `json:"error"`
	Message    string                  `json:"message,omitempty"`
	Allowed    []string                `json:"allowed,omitempty"`
	ValidTypes []submission.FormType   `json:"validTypes,omitempty"`
	Errors     []string                `json:"errors,omitempty"`
	Details    []submission.FieldError `json:"details,omitempty"`
	RetryAfter int                     `json:"retryAfter,omitempty"`
}

type successResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Reference string `json:"reference,omitempty"`
}

// Dispatcher sends the two e-mails of an accepted submission.
type Dispatcher interface {
	Dispatch(ctx context.Context, env mailer.Envelope) mailer.Result
}

// Handler serves the contact endpoint: CORS, method, API key, rate limit,
// body parse, validation, rendering and e-mail dispatch, in that order.
// Each stage can end the request early.
type Handler struct {
	apiKey     string
	maxBody    int64
	signer     string
	cors       CORS
	limiter    *ratelimit.Limiter
	dispatcher Dispatcher
	now        func() time.Time
	newRef     func() string
}

// NewHandler wires the contact endpoint. A nil limiter disables rate limiting.
func NewHandler(cfg *Config, limiter *ratelimit.Limiter, dispatcher Dispatcher) *Handler {
	return &Handler{
		apiKey:     cfg.APIKey,
		maxBody:    int64(cfg.MaxBodyKB) * 1024,
		signer:     cfg.Email.Signer,
		cors:       NewCORS(cfg.AllowedOrigins),
		limiter:    limiter,
		dispatcher: dispatcher,
		now:        time.Now,
		newRef:     uuid.NewString,
	}
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := LoggerFromContext(ctx)

	h.cors.Apply(w.Header(), r.Header.Get("Origin"))

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "contact handler panic",
				"err", rec,
				"stack", string(debug.Stack()),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Error:   "Internal server error",
				Message: "An unexpected error occurred. Please try again later.",
			})
		}
	}()

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:   "Method not allowed",
			Allowed: []string{http.MethodPost, http.MethodOptions},
		})
		return
	}

	if !h.authorized(r.Header.Get("X-API-Key")) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   "Unauthorized",
			Message: "Invalid or missing API key",
		})
		return
	}

	var raw map[string]any
	decodeErr := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&raw)
	rawType, _ := raw["formType"].(string)
	formType := submission.ParseFormType(rawType)

	// A named but unknown form type is refused before the limiter so it
	// never touches the store. Every other request counts against the quota,
	// including malformed ones.
	if decodeErr == nil && strings.TrimSpace(rawType) != "" && formType == submission.FormUnknown {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "Invalid form type",
			Message:    fmt.Sprintf("Unknown form type %q", rawType),
			ValidTypes: submission.FormTypes,
		})
		return
	}

	identity := ratelimit.ClientIdentity(r)
	ctx = ContextWithAttrs(ctx, "form_type", formType, "identity", identity)
	logger = LoggerFromContext(ctx)
	decision := h.limiter.CheckAndRecord(ctx, identity, h.now())
	ratelimit.SetHeaders(w.Header(), decision)
	if !decision.Allowed {
		logger.WarnContext(ctx, "rate limit exceeded", "retry_after", decision.RetryAfter)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:      "Too many requests",
			Message:    fmt.Sprintf("Rate limit exceeded. Please try again in %d seconds.", decision.RetryAfter),
			RetryAfter: decision.RetryAfter,
		})
		return
	}

	if decodeErr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(decodeErr, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error:   "Payload too large",
				Message: fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid JSON",
			Message: "Request body must be a JSON object",
		})
		return
	}
	if formType == submission.FormUnknown {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "Missing formType",
			ValidTypes: submission.FormTypes,
		})
		return
	}

	sub, verrs := submission.Parse(formType, raw)
	if len(verrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "Validation failed",
			Errors:  verrs.Messages(),
			Details: verrs,
		})
		return
	}

	ref := h.newRef()
	lang := render.Language(sub.Lang())
	title := notificationTitle(sub)
	res := h.dispatcher.Dispatch(ctx, mailer.Envelope{
		SubmitterName:       sub.Submitter().Name,
		SubmitterAddress:    sub.Submitter().Email,
		Reference:           ref,
		NotificationSubject: title,
		NotificationHTML:    render.Notification(title, ref, sub.Fields()),
		ReplySubject:        render.ReplySubject(lang),
		ReplyHTML:           render.Reply(sub.FormType(), lang, h.replyFields(sub)),
	})
	if err := res.Err(); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to send email",
			Message: "Your submission could not be delivered. Please try again later.",
		})
		return
	}

	logger.InfoContext(ctx, "submission delivered",
		"language", lang,
		"reference", ref,
		"remaining", decision.Remaining,
	)
	writeJSON(w, http.StatusOK, successResponse{
		Success:   true,
		Message:   "Thank you! Your message has been sent successfully.",
		Reference: ref,
	})
}

func (h *Handler) authorized(key string) bool {
	if h.apiKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) == 1
}

func (h *Handler) replyFields(sub submission.Submission) render.Fields {
	f := render.Fields{Name: sub.Submitter().Name, Signer: h.signer}
	switch s := sub.(type) {
	case submission.Quote:
		f.Budget = s.Budget
		f.Timeline = s.Timeline
		f.PreferredContact = s.PreferredContact
	case submission.Message:
		f.PreferredContact = s.PreferredContact
	case submission.RecruiterQuery, submission.InterviewProposal:
	}
	return f
}

func notificationTitle(sub submission.Submission) string {
	switch s := sub.(type) {
	case submission.Quote:
		return "New quote request from " + s.Name
	case submission.Message:
		return fmt.Sprintf("New message from %s: %s", s.Name, s.Subject)
	case submission.RecruiterQuery:
		return fmt.Sprintf("Recruiter query: %s at %s", s.RoleTitle, s.CompanyName)
	case submission.InterviewProposal:
		return fmt.Sprintf("Interview proposal: %s at %s", s.RoleTitleInterview, s.CompanyName)
	default:
		return "New contact form submission"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
