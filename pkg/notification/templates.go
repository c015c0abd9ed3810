package notification

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"text/template"
	"time"

	"truerelief/pkg/config"
	"truerelief/pkg/model"
)

const (
	AudienceSubmitter = "submitter"
	AudienceOwner     = "owner"
)

// Email is one rendered message.
type Email struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	Audience string `json:"audience"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// Record text is stored HTML-escaped; plain-text bodies show it as typed.
var funcs = template.FuncMap{
	"text":         html.UnescapeString,
	"serviceLabel": model.ServiceLabel,
	"concernLabel": model.ConcernLabel,
	"orNone": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "None provided"
		}
		return s
	},
}

var (
	appointmentPatientTmpl = template.Must(template.New("appointment_patient").Funcs(funcs).Parse(`Dear {{text .Record.Name}},

Thank you for booking an appointment with {{.Clinic.Name}}!

Appointment Details:
- Service: {{serviceLabel .Record.Service}}
- Date: {{.Record.Date}}
- Time: {{.Record.Time}}
- Location: {{text .Record.Location}}

{{.Clinic.DoctorName}} will contact you soon to confirm the appointment and provide further details.

If you have any questions, please don't hesitate to contact us.

Best regards,
{{.Clinic.Name}} Team
{{.Clinic.DoctorSignature}}
{{.Clinic.DoctorCredentials}}
`))

	appointmentOwnerTmpl = template.Must(template.New("appointment_owner").Funcs(funcs).Parse(`New appointment booking received:

Patient Details:
- Name: {{text .Record.Name}}
- Email: {{.Record.Email}}
- Phone: {{.Record.Phone}}
- Age: {{.Record.Age}}
- Location: {{text .Record.Location}}

Appointment Details:
- Service: {{serviceLabel .Record.Service}}
- Preferred Date: {{.Record.Date}}
- Preferred Time: {{.Record.Time}}

Additional Information:
{{orNone (text .Record.Message)}}

Please contact the patient to confirm the appointment.
`))

	contactSubmitterTmpl = template.Must(template.New("contact_submitter").Funcs(funcs).Parse(`Dear {{text .Record.Name}},

Thank you for reaching out to {{.Clinic.Name}}!

We have received your message regarding: {{concernLabel .Record.ConcernType}}
Subject: {{text .Record.Subject}}

{{.Clinic.DoctorName}} or our team will review your concern and get back to you within 24 hours.

If this is an emergency or you need immediate assistance, please call us directly at:
{{- range .Clinic.Phones}}
- {{.}}
{{- end}}

Best regards,
{{.Clinic.Name}} Team
{{.Clinic.DoctorSignature}}
{{.Clinic.DoctorCredentials}}
`))

	contactOwnerTmpl = template.Must(template.New("contact_owner").Funcs(funcs).Parse(`New contact form submission received:

Contact Details:
- Name: {{text .Record.Name}}
- Email: {{.Record.Email}}
- Phone: {{.Record.Phone}}
- Concern Type: {{concernLabel .Record.ConcernType}}

Subject: {{text .Record.Subject}}

Message:
{{text .Record.Message}}

Submitted on: {{.Submitted}}

Please respond to this inquiry promptly.
`))
)

type templateData struct {
	Record    any
	Clinic    config.ClinicProfile
	Submitted string
}

// Renderer turns a record into the submitter and owner emails.
type Renderer struct {
	clinic config.ClinicProfile
	from   string
	loc    *time.Location
}

func NewRenderer(clinic config.ClinicProfile, from string, loc *time.Location) *Renderer {
	if from == "" {
		from = clinic.FromEmail
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{clinic: clinic, from: from, loc: loc}
}

func (r *Renderer) Render(record model.Record) ([]Email, error) {
	switch rec := record.(type) {
	case *model.Appointment:
		return r.renderAll(rec, []part{
			{AudienceSubmitter, rec.Email, "Appointment Confirmation - " + r.clinic.Name, appointmentPatientTmpl},
			{AudienceOwner, r.clinic.OwnerEmail, "New Appointment Booking - " + html.UnescapeString(rec.Name), appointmentOwnerTmpl},
		}, rec.CreatedAt)
	case *model.Contact:
		return r.renderAll(rec, []part{
			{AudienceSubmitter, rec.Email, "Thank you for contacting " + r.clinic.Name, contactSubmitterTmpl},
			{AudienceOwner, r.clinic.OwnerEmail, "New Contact Form Submission - " + model.ConcernLabel(rec.ConcernType), contactOwnerTmpl},
		}, rec.CreatedAt)
	default:
		return nil, fmt.Errorf("no templates for record type %T", record)
	}
}

type part struct {
	audience string
	to       string
	subject  string
	tmpl     *template.Template
}

func (r *Renderer) renderAll(record model.Record, parts []part, created time.Time) ([]Email, error) {
	data := templateData{
		Record:    record,
		Clinic:    r.clinic,
		Submitted: created.In(r.loc).Format("2006-01-02 15:04:05 MST"),
	}

	emails := make([]Email, 0, len(parts))
	for _, p := range parts {
		var buf bytes.Buffer
		if err := p.tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", p.tmpl.Name(), err)
		}
		emails = append(emails, Email{
			Kind:     record.RecordKind(),
			RecordID: record.RecordID(),
			Audience: p.audience,
			From:     r.from,
			To:       p.to,
			Subject:  p.subject,
			Body:     buf.String(),
		})
	}
	return emails, nil
}
