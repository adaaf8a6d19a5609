// Package scheduler runs the periodic email digest.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/repository"
	"github.com/Dan9191/finance-insights/internal/utils/email"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const runTimeout = 30 * time.Minute

// Recipients lists who receives the digest
type Recipients interface {
	ListDigestRecipients(ctx context.Context) ([]repository.DigestRecipient, error)
}

// Reporter computes the content of a digest for one user
type Reporter interface {
	Metrics(ctx context.Context, userID string) (models.FinancialMetrics, error)
	GenerateInsights(ctx context.Context, userID string) []string
}

// Mailer delivers a digest
type Mailer interface {
	SendDigest(to string, d email.Digest) error
}

// Digest emails every subscriber a summary of their finances on a cron schedule
type Digest struct {
	recipients Recipients
	reporter   Reporter
	mailer     Mailer
	currency   string
	log        *logrus.Logger
	cron       *cron.Cron
	now        func() time.Time
}

// NewDigest creates a digest job
func NewDigest(recipients Recipients, reporter Reporter, mailer Mailer, currency string, log *logrus.Logger) *Digest {
	return &Digest{
		recipients: recipients,
		reporter:   reporter,
		mailer:     mailer,
		currency:   currency,
		log:        log,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start schedules the job; an empty schedule disables it
func (d *Digest) Start(schedule string) error {
	if schedule == "" {
		d.log.Info("Digest schedule not set, email digest disabled")
		return nil
	}
	_, err := d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := d.RunOnce(ctx); err != nil {
			d.log.WithError(err).Error("Digest run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}
	d.cron.Start()
	d.log.Infof("Email digest scheduled: %s", schedule)
	return nil
}

// Stop waits for a running job to finish
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
}

// RunOnce sends the digest to every subscriber with data and returns how many
// emails went out. A failure for one user does not stop the others.
func (d *Digest) RunOnce(ctx context.Context) (int, error) {
	recipients, err := d.recipients.ListDigestRecipients(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range recipients {
		m, err := d.reporter.Metrics(ctx, r.UserID)
		if err != nil {
			d.log.WithError(err).WithField("user", r.UserID).Warn("Skipping digest, metrics unavailable")
			continue
		}
		if !m.HasData() {
			continue
		}

		digest := email.Digest{
			Metrics:  m,
			Insights: d.reporter.GenerateInsights(ctx, r.UserID),
			Currency: d.currency,
			Date:     d.now(),
		}
		if err := d.mailer.SendDigest(r.Email, digest); err != nil {
			continue
		}
		sent++
	}

	d.log.Infof("Digest run complete: %d of %d sent", sent, len(recipients))
	return sent, nil
}
