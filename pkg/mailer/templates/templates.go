package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names understood by the email worker.
const (
	Welcome           = "welcome"
	VerifyEmail       = "verify_email"
	ResetPassword     = "reset_password"
	LoginNotification = "login_notification"
)

type emailTemplate struct {
	subject string
	text    string
	html    string
}

var registry = map[string]emailTemplate{
	Welcome: {
		subject: "Welcome to {{.AppName}}",
		text:    "Hi {{.Name}}, your account {{.Email}} is ready.",
		html: `<h2>Welcome, {{.Name}}!</h2>
<p>Your account <b>{{.Email}}</b> has been created.</p>
{{if .VerifyLink}}<p><a href="{{.VerifyLink}}">Verify your email address</a></p>{{end}}`,
	},
	VerifyEmail: {
		subject: "Verify your email address",
		text:    "Open this link to verify your email: {{.VerifyLink}}",
		html: `<p>Hi {{.Name}},</p>
<p>Please confirm your email address:</p>
<p><a href="{{.VerifyLink}}">Verify email</a></p>
<p>The link expires in 24 hours.</p>`,
	},
	ResetPassword: {
		subject: "Reset your password",
		text:    "Open this link to reset your password: {{.ResetLink}}",
		html: `<p>Hi,</p>
<p>A password reset was requested for your account.</p>
<p><a href="{{.ResetLink}}">Choose a new password</a></p>
<p>If this wasn't you, ignore this message.</p>`,
	},
	LoginNotification: {
		subject: "New login to your account",
		text:    "New login from {{.IP}}{{if .Location}} ({{.Location}}){{end}} at {{.Time}}.",
		html: `<p>Hi {{.Name}},</p>
<p>We noticed a new login to your account.</p>
<ul>
<li>IP: {{.IP}}</li>
{{if .Location}}<li>Location: {{.Location}}</li>{{end}}
{{if .Time}}<li>Time: {{.Time}}</li>{{end}}
</ul>`,
	},
}

// Render produces subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	tpl, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	subject, err = render(name+":subject", tpl.subject, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = render(name+":text", tpl.text, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = render(name+":html", tpl.html, data)
	if err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}

func render(name, body string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
