// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<html lang="en">
  <head><meta charset="UTF-8"><title>OTP | {{.AppName}}</title></head>
  <body>
    <h1>{{.AppName}}</h1>
    <h4>Hi{{if .FirstName}} {{.FirstName}}{{end}},</h4>
    <h4>Your OTP is {{.Code}}</h4>
    <p>Enter it on the <a href="{{.URL}}">verification page</a> within {{.Minutes}} minutes.</p>
  </body>
</html>`))

var resetTemplate = template.Must(template.New("reset").Parse(`<html lang="en">
  <head><meta charset="UTF-8"><title>Reset Password | {{.AppName}}</title></head>
  <body>
    <h1>{{.AppName}}</h1>
    <h4>Hi{{if .FirstName}} {{.FirstName}}{{end}},</h4>
    <p>Use the link below to choose a new password. It expires in {{.Minutes}} minutes.</p>
    <p><a href="{{.URL}}">Reset password</a></p>
  </body>
</html>`))

type templateData struct {
	AppName   string
	FirstName string
	Code      string
	URL       string
	Minutes   int
}

// RenderOTP returns the subject and HTML body of the verification-code email.
func RenderOTP(appName, firstName, code, url string, minutes int) (string, string, error) {
	body, err := render(otpTemplate, templateData{
		AppName:   appName,
		FirstName: greetingName(firstName),
		Code:      code,
		URL:       url,
		Minutes:   minutes,
	})
	if err != nil {
		return "", "", err
	}
	return "OTP | " + appName, body, nil
}

// RenderReset returns the subject and HTML body of the password-reset email.
func RenderReset(appName, firstName, url string, minutes int) (string, string, error) {
	body, err := render(resetTemplate, templateData{
		AppName:   appName,
		FirstName: greetingName(firstName),
		URL:       url,
		Minutes:   minutes,
	})
	if err != nil {
		return "", "", err
	}
	return "Reset Password | " + appName, body, nil
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, data); err != nil {
		return "", fmt.Errorf("mailer_template_%s_failed: %w", tmpl.Name(), err)
	}
	return buffer.String(), nil
}

// greetingName title-cases a first name the way users expect to be addressed.
func greetingName(name string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}
