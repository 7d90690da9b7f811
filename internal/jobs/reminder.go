package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"mandirdaan/internal/models"
	"mandirdaan/internal/services"
	"mandirdaan/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultReminderAfterDays = 15

var ErrReminderRunInProgress = errors.New("reminder run already in progress")

// ReminderStore is the slice of the donation repository the scan needs.
type ReminderStore interface {
	ListOverduePledges(ctx context.Context, cutoff time.Time) ([]*models.Donation, error)
	MarkReminderSent(ctx context.Context, tenantID, id uuid.UUID, at time.Time) error
}

type ReminderRunResult struct {
	Scanned    int       `json:"scanned"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ReminderJob texts donors whose pledges have stayed open too long.
type ReminderJob struct {
	store     ReminderStore
	channel   services.NotificationChannel
	afterDays int
	logger    *logger.Logger
	running   atomic.Bool
	lastRun   atomic.Pointer[ReminderRunResult]
}

func NewReminderJob(store ReminderStore, channel services.NotificationChannel, afterDays int, log *logger.Logger) *ReminderJob {
	if afterDays <= 0 {
		afterDays = DefaultReminderAfterDays
	}
	return &ReminderJob{
		store:     store,
		channel:   channel,
		afterDays: afterDays,
		logger:    log,
	}
}

// OverdueCutoff is the latest donation date that is due a reminder at now.
func (j *ReminderJob) OverdueCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -j.afterDays)
}

// ComposeReminder renders the SMS body for a pledged donation.
func ComposeReminder(d *models.Donation, now time.Time) string {
	daysPending := int(now.Sub(d.DonationDate) / (24 * time.Hour))

	var b strings.Builder
	fmt.Fprintf(&b, "Namaste %s,\n\n", d.DonorName)
	fmt.Fprintf(&b, "This is a gentle reminder about your pledged donation of ₹%s for %s.\n\n", models.FormatAmount(d.Amount), d.DonationType)
	fmt.Fprintf(&b, "It has been %d days since your pledge. We kindly request you to complete the donation.\n\n", daysPending)
	fmt.Fprintf(&b, "Receipt No: %s\n\n", d.ReceiptNumber)
	b.WriteString("Thank you for your support!\n\nMandir Administration")
	return b.String()
}

// RunOnce performs a single scan. Donations whose message fails to send are
// left untouched so the next firing picks them up again.
func (j *ReminderJob) RunOnce(ctx context.Context, now time.Time) (ReminderRunResult, error) {
	if !j.running.CompareAndSwap(false, true) {
		return ReminderRunResult{}, ErrReminderRunInProgress
	}
	defer j.running.Store(false)

	result := ReminderRunResult{StartedAt: now}
	pledges, err := j.store.ListOverduePledges(ctx, j.OverdueCutoff(now))
	if err != nil {
		return result, fmt.Errorf("list overdue pledges: %w", err)
	}
	result.Scanned = len(pledges)

	for _, d := range pledges {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		fields := []zap.Field{
			zap.String("tenant_id", d.TenantID.String()),
			zap.String("donation_id", d.ID.String()),
			zap.String("receipt_number", d.ReceiptNumber),
		}

		if !j.channel.Send(ctx, d.PhoneNumber, ComposeReminder(d, now)) {
			result.Failed++
			j.logger.Warn("reminder not delivered", fields...)
			continue
		}
		if err := j.store.MarkReminderSent(ctx, d.TenantID, d.ID, now); err != nil {
			result.Failed++
			j.logger.Error("failed to record reminder", err, fields...)
			continue
		}
		result.Sent++
	}

	result.FinishedAt = time.Now()
	j.lastRun.Store(&result)
	j.logger.Info("reminder scan finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// LastRun returns the result of the most recent completed scan, if any.
func (j *ReminderJob) LastRun() *ReminderRunResult {
	return j.lastRun.Load()
}

func (j *ReminderJob) Running() bool {
	return j.running.Load()
}
