// Package submission turns raw contact-form payloads into validated,
// sanitized records, one record type per form.
package submission

import (
	"html"
	"strings"
)

type FormType string

const (
	FormUnknown           FormType = ""
	FormQuote             FormType = "quote"
	FormMessage           FormType = "message"
	FormRecruiterQuery    FormType = "recruiter_query"
	FormInterviewProposal FormType = "interview_proposal"
)

// FormTypes lists every accepted form type, in the order reported to clients.
var FormTypes = []FormType{FormQuote, FormMessage, FormRecruiterQuery, FormInterviewProposal}

// ParseFormType maps the wire value to a FormType; anything unrecognized
// yields FormUnknown.
func ParseFormType(s string) FormType {
	ft := FormType(strings.TrimSpace(s))
	for _, known := range FormTypes {
		if ft == known {
			return ft
		}
	}
	return FormUnknown
}

func (f FormType) String() string { return string(f) }

// Contact is who submitted the form. Email is the raw validated address.
type Contact struct {
	Name  string
	Email string
}

// Field is one labelled, HTML-safe value for display.
type Field struct {
	Label string
	Value string
}

// Submission is implemented only by the record types in this package.
type Submission interface {
	FormType() FormType
	Submitter() Contact
	// Lang is the language code the client asked for, unvalidated.
	Lang() string
	// Fields lists every non-empty value, HTML-safe, for the operator.
	Fields() []Field
	isSubmission()
}

type Quote struct {
	Name             string
	Email            string
	Phone            string
	Company          string
	Project          string
	Budget           string
	Timeline         string
	PreferredContact string
	Language         string
}

type Message struct {
	Name             string
	Email            string
	Phone            string
	Subject          string
	Body             string
	PreferredContact string
	Language         string
}

type RecruiterQuery struct {
	RecruiterName  string
	RecruiterEmail string
	RoleTitle      string
	CompanyName    string
	CompanyWebsite string
	EmploymentType string
	Location       string
	SalaryRange    string
	JobDescription string
	Language       string
}

type InterviewProposal struct {
	RecruiterName      string
	RecruiterEmail     string
	RoleTitleInterview string
	CompanyName        string
	ProposedDate1      string
	ProposedDate2      string
	InterviewFormat    string
	MeetingLink        string
	Notes              string
	Language           string
}

func (Quote) FormType() FormType { return FormQuote }
func (Message) FormType() FormType { return FormMessage }
func (RecruiterQuery) FormType() FormType { return FormRecruiterQuery }
func (InterviewProposal) FormType() FormType { return FormInterviewProposal }

func (q Quote) Submitter() Contact { return Contact{Name: q.Name, Email: q.Email} }
func (m Message) Submitter() Contact { return Contact{Name: m.Name, Email: m.Email} }
func (r RecruiterQuery) Submitter() Contact { return Contact{Name: r.RecruiterName, Email: r.RecruiterEmail} }
func (i InterviewProposal) Submitter() Contact { return Contact{Name: i.RecruiterName, Email: i.RecruiterEmail} }

func (q Quote) Lang() string { return q.Language }
func (m Message) Lang() string { return m.Language }
func (r RecruiterQuery) Lang() string { return r.Language }
func (i InterviewProposal) Lang() string { return i.Language }

func (Quote) isSubmission() {}
func (Message) isSubmission() {}
func (RecruiterQuery) isSubmission() {}
func (InterviewProposal) isSubmission() {}

func (q Quote) Fields() []Field {
	return fields(
		"Name", q.Name,
		"Email", html.EscapeString(q.Email),
		"Phone", q.Phone,
		"Company", q.Company,
		"Project", q.Project,
		"Budget", q.Budget,
		"Timeline", q.Timeline,
		"Preferred contact", q.PreferredContact,
		"Language", q.Language,
	)
}

func (m Message) Fields() []Field {
	return fields(
		"Name", m.Name,
		"Email", html.EscapeString(m.Email),
		"Phone", m.Phone,
		"Subject", m.Subject,
		"Message", m.Body,
		"Preferred contact", m.PreferredContact,
		"Language", m.Language,
	)
}

func (r RecruiterQuery) Fields() []Field {
	return fields(
		"Recruiter", r.RecruiterName,
		"Email", html.EscapeString(r.RecruiterEmail),
		"Role", r.RoleTitle,
		"Company", r.CompanyName,
		"Website", r.CompanyWebsite,
		"Employment type", r.EmploymentType,
		"Location", r.Location,
		"Salary range", r.SalaryRange,
		"Job description", r.JobDescription,
		"Language", r.Language,
	)
}

func (i InterviewProposal) Fields() []Field {
	return fields(
		"Recruiter", i.RecruiterName,
		"Email", html.EscapeString(i.RecruiterEmail),
		"Role", i.RoleTitleInterview,
		"Company", i.CompanyName,
		"Proposed date 1", i.ProposedDate1,
		"Proposed date 2", i.ProposedDate2,
		"Format", i.InterviewFormat,
		"Meeting link", i.MeetingLink,
		"Notes", i.Notes,
		"Language", i.Language,
	)
}

// fields pairs up label/value arguments, skipping empty values.
func fields(kv ...string) []Field {
	out := make([]Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		out = append(out, Field{Label: kv[i], Value: kv[i+1]})
	}
	return out
}
