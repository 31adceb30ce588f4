// Package notify delivers reservation confirmations over SES email and
// SNS SMS. Delivery is best-effort: failures are logged and never fail
// the booking.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	commonaws "lumiere-concierge/internal/common/aws"
	"lumiere-concierge/internal/common/config"
	"lumiere-concierge/internal/common/logger"
	"lumiere-concierge/internal/reservation"
)

// Interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Notifier struct {
	config    *config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func New(ctx context.Context, cfg *config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	n := &Notifier{
		config: cfg,
		logger: log.With(map[string]interface{}{"component": "notify"}),
	}

	if !cfg.Email.Enabled && !cfg.SMS.Enabled {
		return n, nil
	}

	clients, err := commonaws.NewClients(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("init AWS clients: %w", err)
	}
	n.sesClient = clients.SES
	n.snsClient = clients.SNS
	return n, nil
}

// ReservationCreated sends a confirmation to whichever contact details
// the guest left. A reservation without an email gets no email.
func (n *Notifier) ReservationCreated(ctx context.Context, res *reservation.Reservation) {
	if n.config.Email.Enabled && res.Email != "" {
		if err := n.sendEmail(ctx, res); err != nil {
			n.logger.Error("confirmation email failed", map[string]interface{}{
				"error":         err.Error(),
				"reservationId": res.ID.String(),
			})
		}
	}

	if n.config.SMS.Enabled && res.Phone != "" {
		if err := n.sendSMS(ctx, res); err != nil {
			n.logger.Error("confirmation SMS failed", map[string]interface{}{
				"error":         err.Error(),
				"reservationId": res.ID.String(),
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, res *reservation.Reservation) error {
	subject := "Your reservation at Lumière"
	body := confirmationText(res)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{res.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, res *reservation.Reservation) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(res.Phone),
		Message:     aws.String(confirmationText(res)),
	})
	return err
}

func confirmationText(res *reservation.Reservation) string {
	return fmt.Sprintf(
		"Hello %s, your reservation at Lumière is received: %s at %s for %d guests (status: %s). We will confirm shortly. À bientôt!",
		res.Name, res.Date, res.Time, res.PartySize, res.Status,
	)
}
