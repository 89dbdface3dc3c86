// Package dispatch fans a push match out to its recipients: one bulk insert of in-app
// notifications, then one email per newly notified recipient with a deliverable address.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rawanfarouq/EduRA-sub001/internal/mail"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

var (
	// ErrPersist means the notification batch could not be stored. No email is sent.
	ErrPersist = errors.New("persist notifications")
	// ErrDelivery marks a failed email. It is recorded per recipient and never returned.
	ErrDelivery = errors.New("deliver email")
)

// Match is one qualified recipient of a push run.
type Match struct {
	Candidate models.CandidateProfile
	Score     models.MatchScore
}

// Report summarises one dispatch.
type Report struct {
	Created       int                      `json:"created"`
	Duplicates    int                      `json:"duplicates"`
	EmailsSent    int                      `json:"emails_sent"`
	EmailFailures int                      `json:"email_failures"`
	Attempts      []models.DispatchAttempt `json:"attempts"`
}

// Dispatcher persists notifications and sends emails. It owns the mail Gate, so every
// dispatch running on the same Dispatcher shares one send rate.
type Dispatcher struct {
	sink        Sink
	mailer      mail.Mailer
	gate        *mail.Gate
	logger      *zap.Logger
	linkBase    string
	sendTimeout time.Duration
	workers     int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithGate replaces the default gate, which only serialises sends.
func WithGate(g *mail.Gate) Option {
	return func(d *Dispatcher) { d.gate = g }
}

// WithLinkBase sets the public base URL used for course links in emails.
func WithLinkBase(base string) Option {
	return func(d *Dispatcher) { d.linkBase = strings.TrimRight(base, "/") }
}

// WithSendTimeout bounds each email send.
func WithSendTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.sendTimeout = t }
}

// WithWorkers sets how many recipients are prepared concurrently. Sends are still serialised
// by the gate.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// New returns a Dispatcher writing to sink and sending through mailer. A nil mailer
// disables email.
func New(sink Sink, mailer mail.Mailer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:        sink,
		mailer:      mailer,
		sendTimeout: 30 * time.Second,
		workers:     4,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.gate == nil {
		d.gate = mail.NewGate(0)
	}
	d.logger = utils.OrNop(d.logger)
	return d
}

// Dispatch notifies every match about target. A storage failure is returned wrapped in
// ErrPersist and stops the dispatch before any email. Email failures are logged and
// reported in the Report only.
func (d *Dispatcher) Dispatch(ctx context.Context, target models.TargetItem, matches []Match) (*Report, error) {
	report := &Report{Attempts: make([]models.DispatchAttempt, len(matches))}
	if len(matches) == 0 {
		return report, nil
	}

	records := make([]*models.NotificationRecord, len(matches))
	for i, m := range matches {
		records[i] = newRecord(target, m)
	}
	created, err := d.sink.InsertNotifications(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("%w for course %s: %v", ErrPersist, target.ID, err)
	}

	fresh := make(map[string]*models.NotificationRecord, len(created))
	for _, r := range created {
		fresh[r.CandidateID] = r
	}
	report.Created = len(created)

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, m := range matches {
		i, m := i, m
		attempt := &report.Attempts[i]
		attempt.RecipientID = m.Candidate.RecipientID
		attempt.CandidateID = m.Candidate.ID

		rec, ok := fresh[m.Candidate.ID]
		if !ok {
			attempt.Duplicate = true
			continue
		}
		attempt.Persisted = true
		attempt.NotificationID = rec.ID
		if d.mailer == nil || !m.Candidate.Deliverable() {
			continue
		}

		attempt.EmailAttempted = true
		g.Go(func() error {
			if err := d.sendEmail(ctx, target, m); err != nil {
				attempt.EmailError = err.Error()
				d.logger.Warn("notification email failed",
					zap.String("candidate_id", m.Candidate.ID),
					zap.String("target_id", target.ID),
					zap.String("recipient_id", m.Candidate.RecipientID),
					zap.Error(err))
				return nil
			}
			attempt.EmailSent = true
			return nil
		})
	}
	_ = g.Wait()

	for _, a := range report.Attempts {
		switch {
		case a.Duplicate:
			report.Duplicates++
		case a.EmailSent:
			report.EmailsSent++
		case a.EmailAttempted:
			report.EmailFailures++
		}
	}
	d.logger.Info("dispatch finished",
		zap.String("target_id", target.ID),
		zap.Int("matches", len(matches)),
		zap.Int("created", report.Created),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("emails_sent", report.EmailsSent),
		zap.Int("email_failures", report.EmailFailures))
	return report, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, target models.TargetItem, m Match) error {
	link := ""
	if d.linkBase != "" {
		link = d.linkBase + "/courses/" + target.ID
	}
	msg, err := mail.NewCourseMatchMessage(strings.TrimSpace(m.Candidate.Email), mail.CourseMatch{
		RecipientName: m.Candidate.Name,
		CourseTitle:   target.Title,
		CategoryName:  target.CategoryName,
		Score:         m.Score.FinalScore,
		Link:          link,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	err = d.gate.Do(ctx, func(ctx context.Context) error {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
		return d.mailer.Send(sendCtx, msg)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

func newRecord(target models.TargetItem, m Match) *models.NotificationRecord {
	return &models.NotificationRecord{
		RecipientID:  m.Candidate.RecipientID,
		CandidateID:  m.Candidate.ID,
		TargetID:     target.ID,
		Kind:         models.KindCourseMatch,
		ActionStatus: models.ActionNone,
		Payload: map[string]interface{}{
			"course_title":  target.Title,
			"category_name": target.CategoryName,
			"similarity":    m.Score.Similarity,
			"boost":         m.Score.Boost,
			"final_score":   m.Score.FinalScore,
		},
	}
}
