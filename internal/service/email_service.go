package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. If fromEmail is empty
// the service is disabled and all sends become no-ops.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendInviteCode mails a family invite code to the given address
func (s *EmailService) SendInviteCode(ctx context.Context, toEmail, fromUserName, familyName, inviteCode string, expiresAt time.Time) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invite code to %s", toEmail)
		return nil
	}

	joinLink := fmt.Sprintf("%s/familie/beitreten?code=%s", s.appBaseURL, inviteCode)
	validMinutes := int(time.Until(expiresAt).Minutes())

	subject := fmt.Sprintf("Einladung zur Familie %s", familyName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e7d32; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.code { font-size: 24px; font-weight: bold; letter-spacing: 1px; text-align: center; padding: 15px; background-color: #e8f5e9; border-radius: 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2e7d32; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Familieneinladung</h1>
		</div>
		<div class="content">
			<p>Hallo,</p>
			<p>%s hat dich zur Familie <strong>%s</strong> im Essensplaner eingeladen.</p>
			<p>Dein Einladungscode:</p>
			<p class="code">%s</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Familie beitreten</a>
			</p>
			<p><strong>Der Code ist noch etwa %d Minuten g&uuml;ltig.</strong></p>
		</div>
		<div class="footer">
			<p>Dies ist eine automatische E-Mail vom Essensplaner. Bitte nicht antworten.</p>
		</div>
	</div>
</body>
</html>
`, fromUserName, familyName, inviteCode, joinLink, validMinutes)

	textBody := fmt.Sprintf(`Hallo,

%s hat dich zur Familie "%s" im Essensplaner eingeladen.

Dein Einladungscode: %s

Zum Beitreten: %s

Der Code ist noch etwa %d Minuten gültig.

---
Dies ist eine automatische E-Mail vom Essensplaner. Bitte nicht antworten.
`, fromUserName, familyName, inviteCode, joinLink, validMinutes)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
