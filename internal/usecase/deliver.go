package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"newsbrief/internal/domain"
)

// deliver renders the digest and either prints a preview (dry run) or
// sends one email covering the whole recipient list.
func (p *Pipeline) deliver(ctx context.Context, log *slog.Logger, digest domain.NewsletterDigest, dryRun bool) (domain.DeliveryResult, error) {
	subject := fmt.Sprintf("%s - %s", digest.Name, digest.Date.Format("January 2, 2006"))

	html, err := renderHTML(digest)
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("render html: %w", err)
	}
	text := renderText(digest)

	if dryRun {
		p.writePreview(subject, text, html)
		log.Info("dry run: preview written, no email sent")
		return domain.DeliveryResult{DryRun: true}, nil
	}

	email := domain.Email{
		From:           p.cfg.Email.From,
		To:             p.cfg.Email.Recipients,
		Subject:        subject,
		HTML:           html,
		Text:           text,
		IdempotencyKey: uuid.NewString(),
	}

	var messageID string
	err = p.sendRetry.Do(ctx, func(ctx context.Context) error {
		var sendErr error
		messageID, sendErr = p.mailer.Send(ctx, email)
		return sendErr
	})
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("send email: %w", err)
	}

	log.Info("newsletter sent", "message_id", messageID, "recipients", len(email.To))
	return domain.DeliveryResult{
		MessageID:  messageID,
		Recipients: len(email.To),
	}, nil
}

func (p *Pipeline) writePreview(subject, text, html string) {
	fmt.Fprintf(p.preview, "SUBJECT: %s\n\n%s\n", subject, text)
	fmt.Fprintf(p.preview, "%s\nHTML PREVIEW\n%s\n%s\n", previewRule, previewRule, html)
}

const previewRule = "=================================================="
