// Package render builds the HTML bodies of the two e-mails sent for every
// accepted submission. Values are interpolated as-is: callers must pass
// strings already stripped of markup (see submission.Clean).
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/nazarhussain/contact-courier/internal/submission"
	"golang.org/x/text/language"
)

var (
	supported = []language.Tag{
		language.English,
		language.Swahili,
		language.French,
		language.Spanish,
		language.German,
	}
	matcher = language.NewMatcher(supported)
)

// Fields are the submission values the auto-reply shows.
type Fields struct {
	Name             string
	Budget           string
	Timeline         string
	PreferredContact string
	// Signer closes the letter.
	Signer string
}

// Language resolves a client language code to one of en, sw, fr, es, de.
// Regional variants map to their base language; anything else is en.
func Language(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return fallbackLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return fallbackLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return fallbackLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// ReplySubject is the localized subject of the auto-reply.
func ReplySubject(lang string) string {
	return locales[Language(lang)].subject
}

// Reply renders the client auto-reply for formType in lang. An unknown form
// type gets the language's generic intro.
func Reply(formType submission.FormType, lang string, f Fields) string {
	code := Language(lang)
	loc := locales[code]

	var b strings.Builder
	writeHead(&b, code, loc.subject)

	if f.Name != "" {
		fmt.Fprintf(&b, "<p>%s %s,</p>\n", loc.greeting, f.Name)
	} else {
		fmt.Fprintf(&b, "<p>%s,</p>\n", loc.greeting)
	}
	fmt.Fprintf(&b, "<p>%s</p>\n", loc.intro(formType))

	if f.Budget != "" || f.Timeline != "" {
		b.WriteString(`<div style="background:#f4f6f8;border-radius:6px;padding:12px 16px;margin:16px 0;">` + "\n")
		fmt.Fprintf(&b, "<p style=\"margin:4px 0;\"><strong>%s:</strong> %s</p>\n", loc.budget, orDefault(f.Budget, loc.toBeDiscussed))
		fmt.Fprintf(&b, "<p style=\"margin:4px 0;\"><strong>%s:</strong> %s</p>\n", loc.timeline, orDefault(f.Timeline, loc.toBeDiscussed))
		b.WriteString("</div>\n")
	}
	if f.PreferredContact != "" {
		fmt.Fprintf(&b, "<p><strong>%s:</strong> %s</p>\n", loc.preferredContact, f.PreferredContact)
	}

	if f.Signer != "" {
		fmt.Fprintf(&b, "<p>%s,<br>%s</p>\n", loc.closing, f.Signer)
	} else {
		fmt.Fprintf(&b, "<p>%s</p>\n", loc.closing)
	}

	writeFoot(&b)
	return b.String()
}

// Notification renders the operator e-mail listing every submitted field.
func Notification(title, reference string, rows []submission.Field) string {
	var b strings.Builder
	writeHead(&b, fallbackLanguage, title)

	fmt.Fprintf(&b, "<h2 style=\"margin:0 0 16px;\">%s</h2>\n", title)
	b.WriteString(`<table style="border-collapse:collapse;width:100%;">` + "\n")
	for _, row := range rows {
		fmt.Fprintf(&b,
			"<tr><th style=\"text-align:left;vertical-align:top;padding:6px 12px 6px 0;white-space:nowrap;\">%s</th><td style=\"padding:6px 0;white-space:pre-wrap;\">%s</td></tr>\n",
			row.Label, row.Value,
		)
	}
	b.WriteString("</table>\n")
	if reference != "" {
		fmt.Fprintf(&b, "<p style=\"color:#888;font-size:12px;margin-top:24px;\">Ref: %s</p>\n", html.EscapeString(reference))
	}

	writeFoot(&b)
	return b.String()
}

func writeHead(b *strings.Builder, lang, title string) {
	fmt.Fprintf(b, `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;line-height:1.6;margin:0;padding:0;">
<div style="max-width:600px;margin:0 auto;padding:24px;">
`, lang, html.EscapeString(html.UnescapeString(title)))
}

func writeFoot(b *strings.Builder) {
	b.WriteString("</div>\n</body>\n</html>\n")
}

func orDefault(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
