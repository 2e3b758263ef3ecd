// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package newsletter sends issues to verified subscribers in batches.
// Each recipient is independent: a failed send is logged and counted but
// never aborts the run. A sent issue cannot be sent again.
package newsletter

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/mailer"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

const (
	// BatchSize is how many recipients are mailed concurrently per batch.
	BatchSize = 50

	// batchPause is the delay between batches to respect provider limits.
	batchPause = 1 * time.Second
)

// ErrAlreadySent is returned when a send is attempted on an issue that
// already has a sent timestamp.
var ErrAlreadySent = errors.New("newsletter already sent")

// ErrNotFound is returned when the newsletter does not exist.
var ErrNotFound = errors.New("newsletter not found")

// ErrNoMailer is returned when no mail provider is configured.
var ErrNoMailer = errors.New("no mailer configured")

// Result summarizes a completed send run.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Sender delivers newsletter issues through a Mailer.
type Sender struct {
	newsletters *store.NewsletterStore
	subscribers *store.SubscriberStore
	mailer      mailer.Mailer
	baseURL     string
	pause       time.Duration
}

// NewSender creates a newsletter sender. baseURL is the public origin
// used to build unsubscribe links.
func NewSender(newsletters *store.NewsletterStore, subscribers *store.SubscriberStore, m mailer.Mailer, baseURL string) *Sender {
	return &Sender{
		newsletters: newsletters,
		subscribers: subscribers,
		mailer:      m,
		baseURL:     baseURL,
		pause:       batchPause,
	}
}

// Send mails the newsletter to every verified subscriber and marks it
// sent. Returns ErrAlreadySent without contacting any recipient if the
// issue already went out.
func (s *Sender) Send(id uuid.UUID) (*Result, error) {
	if s.mailer == nil {
		return nil, ErrNoMailer
	}

	nl, err := s.newsletters.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("newsletter send: %w", err)
	}
	if nl == nil {
		return nil, ErrNotFound
	}
	if nl.IsSent() {
		return nil, ErrAlreadySent
	}

	subs, err := s.subscribers.ListVerified()
	if err != nil {
		return nil, fmt.Errorf("newsletter send: %w", err)
	}

	result := s.deliver(nl, subs)

	sentAt := time.Now()
	if err := s.newsletters.MarkSent(id, sentAt, result.Sent); err != nil {
		return nil, fmt.Errorf("newsletter send: %w", err)
	}

	slog.Info("newsletter sent",
		"id", id,
		"subject", nl.Subject,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result, nil
}

// SendTest mails a single copy to the given address without touching the
// issue's sent state. Works on drafts and already-sent issues alike.
func (s *Sender) SendTest(id uuid.UUID, recipient string) error {
	if s.mailer == nil {
		return ErrNoMailer
	}

	nl, err := s.newsletters.FindByID(id)
	if err != nil {
		return fmt.Errorf("newsletter test send: %w", err)
	}
	if nl == nil {
		return ErrNotFound
	}

	body := s.renderBody(nl, "")
	if err := s.mailer.Send(recipient, "[test] "+nl.Subject, body); err != nil {
		return fmt.Errorf("newsletter test send: %w", err)
	}
	return nil
}

// deliver fans the issue out in batches. Failures are counted, never
// propagated.
func (s *Sender) deliver(nl *models.Newsletter, subs []models.NewsletterSubscriber) *Result {
	var (
		mu     sync.Mutex
		result Result
	)

	for start := 0; start < len(subs); start += BatchSize {
		end := start + BatchSize
		if end > len(subs) {
			end = len(subs)
		}
		batch := subs[start:end]

		var wg sync.WaitGroup
		for _, sub := range batch {
			wg.Add(1)
			go func(sub models.NewsletterSubscriber) {
				defer wg.Done()

				body := s.renderBody(nl, sub.UnsubscribeToken)
				if err := s.mailer.Send(sub.Email, nl.Subject, body); err != nil {
					slog.Warn("newsletter recipient failed",
						"newsletter", nl.ID,
						"email", sub.Email,
						"error", err,
					)
					mu.Lock()
					result.Failed++
					mu.Unlock()
					return
				}
				mu.Lock()
				result.Sent++
				mu.Unlock()
			}(sub)
		}
		wg.Wait()

		if end < len(subs) {
			time.Sleep(s.pause)
		}
	}

	return &result
}

// renderBody appends the per-recipient unsubscribe footer to the issue
// body. Test sends pass an empty token and get no footer.
func (s *Sender) renderBody(nl *models.Newsletter, unsubscribeToken string) string {
	if unsubscribeToken == "" {
		return nl.BodyHTML
	}
	return fmt.Sprintf(
		"%s<hr><p><a href=\"%s/api/newsletter/unsubscribe?token=%s\">Unsubscribe</a></p>",
		nl.BodyHTML, s.baseURL, unsubscribeToken,
	)
}
