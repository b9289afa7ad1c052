package emails

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"

	"github.com/resend/resend-go/v2"

	"mruput.io/infrastructure/logger"
)

//go:embed templates/*.html
var templates embed.FS

type ResendService struct {
}

func (rs *ResendService) SendEmail(toEmail string, subject string, templateName string, opts interface{}) bool {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		logger.Warning("resend api key missing, email not sent", logger.LoggerOptions{
			Key:  "templateName",
			Data: templateName,
		})
		return false
	}

	client := resend.NewClient(apiKey)

	html := rs.loadTemplates(templateName, opts)
	if html == nil {
		logger.Error("failed to load email template", logger.LoggerOptions{
			Key:  "templateName",
			Data: templateName,
		}, logger.LoggerOptions{
			Key:  "toEmail",
			Data: toEmail,
		})
		return false
	}

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_DEFAULT_EMAIL"),
		To:      []string{toEmail},
		Subject: subject,
		Html:    *html,
	}

	_, err := client.Emails.Send(params)
	if err != nil {
		logger.Error("an error occured while trying to send email using resend service", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "toEmail",
			Data: toEmail,
		}, logger.LoggerOptions{
			Key:  "templateName",
			Data: templateName,
		})
		return false
	}
	logger.Info(fmt.Sprintf("successfully sent email to %s", toEmail), logger.LoggerOptions{
		Key:  "templateName",
		Data: templateName,
	}, logger.LoggerOptions{
		Key:  "service",
		Data: "resend",
	})
	return true
}

func (rs *ResendService) loadTemplates(templateName string, opts interface{}) *string {
	return renderTemplate(templateName, opts)
}

func renderTemplate(templateName string, opts interface{}) *string {
	var buffer bytes.Buffer
	tmpl, err := template.ParseFS(templates, "templates/"+templateName+".html")
	if err != nil {
		logger.Error("failed to parse email template", logger.LoggerOptions{
			Key:  "templateName",
			Data: templateName,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil
	}
	if err := tmpl.Execute(&buffer, opts); err != nil {
		logger.Error("failed to execute email template", logger.LoggerOptions{
			Key:  "templateName",
			Data: templateName,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil
	}
	html := buffer.String()
	return &html
}
