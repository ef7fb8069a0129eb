package render

import "github.com/nazarhussain/contact-courier/internal/submission"

type locale struct {
	subject          string
	greeting         string
	intros           map[submission.FormType]string
	fallbackIntro    string
	budget           string
	timeline         string
	preferredContact string
	toBeDiscussed    string
	closing          string
}

const fallbackLanguage = "en"

var locales = map[string]locale{
	"en": {
		subject:  "Thank you for contacting me",
		greeting: "Hello",
		intros: map[submission.FormType]string{
			submission.FormQuote:             "Thank you for your quote request. I have received your project details and will review them carefully before getting back to you within 24 to 48 hours.",
			submission.FormMessage:           "Thank you for reaching out. I have received your message and will get back to you as soon as possible.",
			submission.FormRecruiterQuery:    "Thank you for getting in touch about this opportunity. I have received the role details and will review them shortly.",
			submission.FormInterviewProposal: "Thank you for the interview invitation. I have received your proposed dates and will confirm my availability shortly.",
		},
		fallbackIntro:    "Thank you for contacting me. I have received your submission and will respond soon.",
		budget:           "Budget",
		timeline:         "Timeline",
		preferredContact: "Preferred Contact",
		toBeDiscussed:    "To be discussed",
		closing:          "Best regards",
	},
	"sw": {
		subject:  "Asante kwa kuwasiliana nami",
		greeting: "Habari",
		intros: map[submission.FormType]string{
			submission.FormQuote:             "Asante kwa ombi lako la makadirio ya bei. Nimepokea maelezo ya mradi wako na nitayapitia kwa makini kabla ya kukujibu ndani ya saa 24 hadi 48.",
			submission.FormMessage:           "Asante kwa kuwasiliana nami. Nimepokea ujumbe wako na nitakujibu haraka iwezekanavyo.",
			submission.FormRecruiterQuery:    "Asante kwa kuwasiliana nami kuhusu nafasi hii. Nimepokea maelezo ya kazi na nitayapitia hivi karibuni.",
			submission.FormInterviewProposal: "Asante kwa mwaliko wa mahojiano. Nimepokea tarehe ulizopendekeza na nitathibitisha upatikanaji wangu hivi karibuni.",
		},
		fallbackIntro:    "Asante kwa kuwasiliana nami. Nimepokea ombi lako na nitajibu hivi karibuni.",
		budget:           "Bajeti",
		timeline:         "Muda wa Mradi",
		preferredContact: "Njia ya Mawasiliano Unayopendelea",
		toBeDiscussed:    "Itajadiliwa",
		closing:          "Wako katika huduma",
	},
	"fr": {
		subject:  "Merci de m'avoir contacté",
		greeting: "Bonjour",
		intros: map[submission.FormType]string{
			submission.FormQuote:             "Merci pour votre demande de devis. J'ai bien reçu les détails de votre projet et je les examinerai attentivement avant de vous répondre sous 24 à 48 heures.",
			submission.FormMessage:           "Merci de m'avoir écrit. J'ai bien reçu votre message et je vous répondrai dans les plus brefs délais.",
			submission.FormRecruiterQuery:    "Merci de m'avoir contacté au sujet de cette opportunité. J'ai bien reçu les détails du poste et je les examinerai rapidement.",
			submission.FormInterviewProposal: "Merci pour cette invitation à un entretien. J'ai bien reçu vos propositions de dates et je confirmerai ma disponibilité rapidement.",
		},
		fallbackIntro:    "Merci de m'avoir contacté. J'ai bien reçu votre demande et je vous répondrai bientôt.",
		budget:           "Budget",
		timeline:         "Délais",
		preferredContact: "Contact préféré",
		toBeDiscussed:    "À discuter",
		closing:          "Cordialement",
	},
	"es": {
		subject:  "Gracias por contactarme",
		greeting: "Hola",
		intros: map[submission.FormType]string{
			submission.FormQuote:             "Gracias por su solicitud de presupuesto. He recibido los detalles de su proyecto y los revisaré detenidamente antes de responderle en un plazo de 24 a 48 horas.",
			submission.FormMessage:           "Gracias por ponerse en contacto. He recibido su mensaje y le responderé lo antes posible.",
			submission.FormRecruiterQuery:    "Gracias por contactarme sobre esta oportunidad. He recibido los detalles del puesto y los revisaré en breve.",
			submission.FormInterviewProposal: "Gracias por la invitación a la entrevista. He recibido las fechas propuestas y confirmaré mi disponibilidad en breve.",
		},
		fallbackIntro:    "Gracias por contactarme. He recibido su solicitud y responderé pronto.",
		budget:           "Presupuesto",
		timeline:         "Plazo",
		preferredContact: "Contacto preferido",
		toBeDiscussed:    "A convenir",
		closing:          "Saludos cordiales",
	},
	"de": {
		subject:  "Vielen Dank für Ihre Nachricht",
		greeting: "Hallo",
		intros: map[submission.FormType]string{
			submission.FormQuote:             "Vielen Dank für Ihre Angebotsanfrage. Ich habe Ihre Projektdetails erhalten und werde sie sorgfältig prüfen, bevor ich mich innerhalb von 24 bis 48 Stunden bei Ihnen melde.",
			submission.FormMessage:           "Vielen Dank für Ihre Nachricht. Ich habe sie erhalten und melde mich so schnell wie möglich bei Ihnen.",
			submission.FormRecruiterQuery:    "Vielen Dank für Ihre Kontaktaufnahme bezüglich dieser Position. Ich habe die Details erhalten und werde sie in Kürze prüfen.",
			submission.FormInterviewProposal: "Vielen Dank für die Einladung zum Vorstellungsgespräch. Ich habe Ihre Terminvorschläge erhalten und bestätige meine Verfügbarkeit in Kürze.",
		},
		fallbackIntro:    "Vielen Dank für Ihre Kontaktaufnahme. Ich habe Ihre Anfrage erhalten und melde mich bald.",
		budget:           "Budget",
		timeline:         "Zeitrahmen",
		preferredContact: "Bevorzugter Kontakt",
		toBeDiscussed:    "Zu besprechen",
		closing:          "Mit freundlichen Grüßen",
	},
}

func (l locale) intro(ft submission.FormType) string {
	if s, ok := l.intros[ft]; ok {
		return s
	}
	return l.fallbackIntro
}
