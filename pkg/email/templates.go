package email

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

// WelcomeData fills the account provisioning e-mail.
type WelcomeData struct {
	AppName     string
	DisplayName string
	Email       string
	RoleName    string
	UnitName    string
	LoginURL    string
}

// EvolutionData fills the supervision workflow e-mails.
type EvolutionData struct {
	AppName     string
	AuthorName  string
	PatientName string
	Feedback    string
	Link        string
}

const welcomeText = `Olá, {{.DisplayName}}!

Sua conta no {{.AppName}} foi criada com o perfil {{.RoleName}}{{if .UnitName}} na unidade {{.UnitName}}{{end}}.

Acesse com o e-mail {{.Email}}: {{.LoginURL}}

Equipe {{.AppName}}`

const welcomeHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #0f766e;">Olá, {{.DisplayName}}!</h2>
  <p>Sua conta no {{.AppName}} foi criada com o perfil <strong>{{.RoleName}}</strong>{{if .UnitName}} na unidade <strong>{{.UnitName}}</strong>{{end}}.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="{{.LoginURL}}" style="background-color: #0f766e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Acessar</a>
  </p>
  <p style="color: #6b7280; font-size: 14px;">Equipe {{.AppName}}</p>
</body>
</html>`

const revisionText = `Olá, {{.AuthorName}}.

A evolução do paciente {{.PatientName}} voltou para rascunho com a seguinte orientação do supervisor:

{{.Feedback}}

{{.Link}}`

const revisionHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <p>Olá, {{.AuthorName}}.</p>
  <p>A evolução do paciente <strong>{{.PatientName}}</strong> voltou para rascunho com a seguinte orientação do supervisor:</p>
  <blockquote style="border-left: 4px solid #f59e0b; margin: 0; padding: 8px 16px; background: #fffbeb;">{{.Feedback}}</blockquote>
  <p><a href="{{.Link}}">Abrir evolução</a></p>
</body>
</html>`

var (
	welcomeTextTmpl  = textTmpl("welcome.txt", welcomeText)
	welcomeHTMLTmpl  = htmlTmpl("welcome.html", welcomeHTML)
	revisionTextTmpl = textTmpl("revision.txt", revisionText)
	revisionHTMLTmpl = htmlTmpl("revision.html", revisionHTML)
)

func textTmpl(name, body string) *texttemplate.Template {
	return texttemplate.Must(texttemplate.New(name).Parse(body))
}

func htmlTmpl(name, body string) *template.Template {
	return template.Must(template.New(name).Parse(body))
}


func render(text *texttemplate.Template, html *template.Template, data any) (string, string, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render text body: %w", err)
	}
	if err := html.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}
	return tb.String(), hb.String(), nil
}

// BuildWelcomeEmail is sent when an administrator provisions an account.
func BuildWelcomeEmail(data WelcomeData) (Message, error) {
	if data.AppName == "" {
		data.AppName = DefaultConfig().AppName
	}
	text, html, err := render(welcomeTextTmpl, welcomeHTMLTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{data.Email},
		Subject:  fmt.Sprintf("Bem-vindo(a) ao %s", data.AppName),
		TextBody: text,
		HTMLBody: html,
	}, nil
}

// BuildRevisionRequestedEmail tells an author their evolution needs changes.
func BuildRevisionRequestedEmail(to string, data EvolutionData) (Message, error) {
	if data.AppName == "" {
		data.AppName = DefaultConfig().AppName
	}
	text, html, err := render(revisionTextTmpl, revisionHTMLTmpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{to},
		Subject:  "Evolução devolvida para revisão",
		TextBody: text,
		HTMLBody: html,
	}, nil
}
