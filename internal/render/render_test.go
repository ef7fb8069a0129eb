package render

import (
	"strings"
	"testing"

	"github.com/nazarhussain/contact-courier/internal/submission"
	"github.com/stretchr/testify/assert"
)

func TestLanguage(t *testing.T) {
	cases := map[string]string{
		"":      "en",
		"en":    "en",
		"fr":    "fr",
		"fr-CA": "fr",
		"sw-KE": "sw",
		"DE":    "de",
		"es":    "es",
		"pt":    "en",
		"ja":    "en",
		"!!":    "en",
	}
	for in, want := range cases {
		assert.Equal(t, want, Language(in), "Language(%q)", in)
	}
}

func TestReplyFrenchQuote(t *testing.T) {
	out := Reply(submission.FormQuote, "fr", Fields{Name: "Jane Doe", Budget: "5000 €", Timeline: "3 mois", Signer: "Philip"})

	assert.Contains(t, out, `<html lang="fr">`)
	assert.Contains(t, out, locales["fr"].intros[submission.FormQuote])
	assert.Contains(t, out, "<strong>Budget:</strong> 5000 €")
	assert.Contains(t, out, "<strong>Délais:</strong> 3 mois")
	assert.Contains(t, out, "Bonjour Jane Doe,")
	assert.Contains(t, out, "Cordialement,<br>Philip")
}

func TestReplyUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	out := Reply(submission.FormQuote, "pt-BR", Fields{Name: "Ana", Budget: "1000"})

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, locales["en"].intros[submission.FormQuote])
	assert.Contains(t, out, "<strong>Timeline:</strong> To be discussed")
}

func TestReplyBudgetBlockOnlyWhenSet(t *testing.T) {
	out := Reply(submission.FormMessage, "de", Fields{Name: "Max"})
	assert.NotContains(t, out, "Budget")
	assert.NotContains(t, out, "Zeitrahmen")

	out = Reply(submission.FormQuote, "de", Fields{Timeline: "Q3"})
	assert.Contains(t, out, "<strong>Budget:</strong> Zu besprechen")
	assert.Contains(t, out, "<strong>Zeitrahmen:</strong> Q3")
}

func TestReplyUnknownFormTypeUsesLanguageDefault(t *testing.T) {
	out := Reply(submission.FormUnknown, "sw", Fields{Name: "Amani"})
	assert.Contains(t, out, locales["sw"].fallbackIntro)
	assert.Contains(t, out, "Habari Amani,")
}

func TestReplyPreferredContact(t *testing.T) {
	out := Reply(submission.FormMessage, "es", Fields{Name: "Lucía", PreferredContact: "WhatsApp"})
	assert.Contains(t, out, "<strong>Contacto preferido:</strong> WhatsApp")
}

func TestEveryLocaleIsComplete(t *testing.T) {
	for code, loc := range locales {
		for _, ft := range submission.FormTypes {
			assert.NotEmpty(t, loc.intros[ft], "%s intro for %s", code, ft)
		}
		for _, s := range []string{loc.subject, loc.greeting, loc.fallbackIntro, loc.budget, loc.timeline, loc.preferredContact, loc.toBeDiscussed, loc.closing} {
			assert.NotEmpty(t, s, code)
		}
		assert.Equal(t, code, Language(code))
	}
}

func TestReplySubject(t *testing.T) {
	assert.Equal(t, "Merci de m'avoir contacté", ReplySubject("fr"))
	assert.Equal(t, "Thank you for contacting me", ReplySubject("xx"))
}

func TestNotification(t *testing.T) {
	out := Notification("New quote request from Jane", "abc-123", []submission.Field{
		{Label: "Name", Value: "Jane"},
		{Label: "Project", Value: "Site &amp; shop"},
	})

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>New quote request from Jane</title>")
	assert.Contains(t, out, ">Name</th><td")
	assert.Contains(t, out, "Site &amp; shop")
	assert.Contains(t, out, "Ref: abc-123")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}
