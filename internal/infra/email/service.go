package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Service renders the transactional templates and hands them to Resend.
// Without an API key it only logs what it would have sent.
type Service struct {
	from   string
	client *resend.Client
	logger zerolog.Logger
}

func NewService(apiKey, from string, logger zerolog.Logger) *Service {
	s := &Service{
		from:   from,
		logger: logger.With().Str("component", "email").Logger(),
	}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey)
	}
	return s
}

func (s *Service) Enabled() bool {
	return s.client != nil
}

func (s *Service) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	if err := validateAddress(to); err != nil {
		return err
	}
	if err := validateLink(resetLink); err != nil {
		return err
	}

	body, err := RenderPasswordReset(resetLink)
	if err != nil {
		return err
	}
	return s.Send(ctx, to, "Reset your password", body)
}

func (s *Service) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !s.Enabled() {
		s.logger.Info().Str("to", to).Str("subject", subject).Msg("email disabled, not sending")
		return nil
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	s.logger.Info().Str("email_id", sent.Id).Str("to", to).Msg("email sent")
	return nil
}

func validateAddress(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	if strings.ContainsAny(parsed.Address, "\r\n") {
		return errors.New("invalid recipient: contains newline")
	}
	return nil
}

func validateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("invalid link scheme %q", u.Scheme)
	}
	return nil
}
