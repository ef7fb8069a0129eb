package submission

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultMaxLength = 1000
	LongTextMax      = 5000
	maxEmailLength   = 254
)

var (
	// Approximates RFC 5322: dot-atom local part, dotted domain, no spaces.
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(\.[A-Za-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*@[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)+$`)
	phoneRegex = regexp.MustCompile(`^[0-9+\-() ]{6,20}$`)

	// StrictPolicy strips every tag and escapes what is left.
	policy = bluemonday.StrictPolicy()
)

// FieldError reports one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is every problem found in a submission.
type Errors []FieldError

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

func (e Errors) Messages() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Message
	}
	return out
}

// Clean trims s and strips HTML markup so it is safe to interpolate into an
// HTML document.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(s))
}

// ValidateLength checks a trimmed value against [minLen, maxLen] runes and
// returns an error message, or "" when the value is acceptable. An empty
// value is reported as missing. maxLen <= 0 means DefaultMaxLength.
func ValidateLength(label, value string, minLen, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		return fmt.Sprintf("%s is required", label)
	case n < minLen:
		return fmt.Sprintf("%s must be at least %d characters", label, minLen)
	case n > maxLen:
		return fmt.Sprintf("%s must be at most %d characters", label, maxLen)
	}
	return ""
}

func ValidEmail(s string) bool {
	return len(s) <= maxEmailLength && emailRegex.MatchString(s)
}

// ValidPhone reports whether s looks like a phone number. Empty is valid.
func ValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || phoneRegex.MatchString(s)
}

// Parse validates raw against the rules of formType. It returns either a
// complete record or every error found, never both.
func Parse(formType FormType, raw map[string]any) (Submission, Errors) {
	p := &parser{raw: raw}

	var sub Submission
	switch formType {
	case FormQuote:
		sub = Quote{
			Name:             p.required("name", "Name", 2, DefaultMaxLength),
			Email:            p.email("email", "Email"),
			Phone:            p.phone("phone"),
			Company:          p.optional("company", "Company", DefaultMaxLength),
			Project:          p.required("project", "Project description", 5, LongTextMax),
			Budget:           p.optional("budget", "Budget", DefaultMaxLength),
			Timeline:         p.optional("timeline", "Timeline", DefaultMaxLength),
			PreferredContact: p.optional("preferredContact", "Preferred contact", DefaultMaxLength),
			Language:         p.language(),
		}
	case FormMessage:
		sub = Message{
			Name:             p.required("name", "Name", 2, DefaultMaxLength),
			Email:            p.email("email", "Email"),
			Phone:            p.phone("phone"),
			Subject:          p.required("subject", "Subject", 3, DefaultMaxLength),
			Body:             p.required(p.messageKey(), "Message", 10, LongTextMax),
			PreferredContact: p.optional("preferredContact", "Preferred contact", DefaultMaxLength),
			Language:         p.language(),
		}
	case FormRecruiterQuery:
		sub = RecruiterQuery{
			RecruiterName:  p.required("recruiterName", "Recruiter name", 2, DefaultMaxLength),
			RecruiterEmail: p.email("recruiterEmail", "Recruiter email"),
			RoleTitle:      p.required("roleTitle", "Role title", 3, DefaultMaxLength),
			CompanyName:    p.required("companyName", "Company name", 2, DefaultMaxLength),
			CompanyWebsite: p.optional("companyWebsite", "Company website", DefaultMaxLength),
			EmploymentType: p.optional("employmentType", "Employment type", DefaultMaxLength),
			Location:       p.optional("location", "Location", DefaultMaxLength),
			SalaryRange:    p.optional("salaryRange", "Salary range", DefaultMaxLength),
			JobDescription: p.optional("jobDescription", "Job description", LongTextMax),
			Language:       p.language(),
		}
	case FormInterviewProposal:
		ip := InterviewProposal{
			RecruiterName:      p.required("recruiterName", "Recruiter name", 2, DefaultMaxLength),
			RecruiterEmail:     p.email("recruiterEmail", "Recruiter email"),
			RoleTitleInterview: p.required("roleTitleInterview", "Role title", 3, DefaultMaxLength),
			CompanyName:        p.required("companyName", "Company name", 2, DefaultMaxLength),
			ProposedDate1:      p.optional("proposedDate1", "Proposed date 1", DefaultMaxLength),
			ProposedDate2:      p.optional("proposedDate2", "Proposed date 2", DefaultMaxLength),
			InterviewFormat:    p.optional("interviewFormat", "Interview format", DefaultMaxLength),
			MeetingLink:        p.optional("meetingLink", "Meeting link", DefaultMaxLength),
			Notes:              p.optional("notes", "Notes", LongTextMax),
			Language:           p.language(),
		}
		if ip.ProposedDate1 == "" && ip.ProposedDate2 == "" {
			p.fail("proposedDate1", "At least one proposed date is required")
		}
		sub = ip
	default:
		return nil, Errors{{Field: "formType", Message: fmt.Sprintf("Invalid form type %q", string(formType))}}
	}

	if p.str("website") != "" {
		p.fail("website", "Submission rejected")
	}

	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return sub, nil
}

type parser struct {
	raw  map[string]any
	errs Errors
}

func (p *parser) fail(field, msg string) {
	p.errs = append(p.errs, FieldError{Field: field, Message: msg})
}

// str reads a field as a string. Numbers and booleans are accepted in their
// canonical text form; anything else counts as missing.
func (p *parser) str(field string) string {
	switch v := p.raw[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Lengths are measured on the text the client typed: Clean escapes
// characters such as & into entities, which must not count as extra runes.
func (p *parser) required(field, label string, minLen, maxLen int) string {
	v := Clean(p.str(field))
	if msg := ValidateLength(label, html.UnescapeString(v), minLen, maxLen); msg != "" {
		p.fail(field, msg)
	}
	return v
}

func (p *parser) optional(field, label string, maxLen int) string {
	v := Clean(p.str(field))
	if v == "" {
		return ""
	}
	if msg := ValidateLength(label, html.UnescapeString(v), 0, maxLen); msg != "" {
		p.fail(field, msg)
	}
	return v
}

func (p *parser) email(field, label string) string {
	v := strings.TrimSpace(p.str(field))
	switch {
	case v == "":
		p.fail(field, fmt.Sprintf("%s is required", label))
	case !ValidEmail(v):
		p.fail(field, fmt.Sprintf("%s must be a valid email address", label))
	}
	return v
}

func (p *parser) phone(field string) string {
	v := strings.TrimSpace(p.str(field))
	if !ValidPhone(v) {
		p.fail(field, "Phone number format is invalid")
		return ""
	}
	return v
}

// messageKey accepts the body under "message" or "messageBody".
func (p *parser) messageKey() string {
	if strings.TrimSpace(p.str("message")) == "" && p.str("messageBody") != "" {
		return "messageBody"
	}
	return "message"
}

func (p *parser) language() string {
	return p.optional("language", "Language", 35)
}
