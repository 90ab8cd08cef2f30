// Package scheduler runs the periodic billing jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"schoolfee_backend/internals/reporting"
)

type OverdueReminder interface {
	RemindOverdue(ctx context.Context, asOf time.Time, interval time.Duration, batch int) (int, error)
}

// reminderJob sends one round of overdue reminders, batch by batch until a short batch.
type reminderJob struct {
	svc      OverdueReminder
	interval time.Duration
	batch    int
	timeout  time.Duration
	now      func() time.Time
}

func (j reminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			reporting.Recovered(ctx, "scheduler.overdue_reminders", r)
		}
	}()

	log.Println("[REMINDER] scanning overdue invoices...")
	asOf := j.now()
	total := 0
	for {
		n, err := j.svc.RemindOverdue(ctx, asOf, j.interval, j.batch)
		total += n
		if err != nil {
			reporting.Error(ctx, fmt.Errorf("overdue reminders: %w", err), map[string]interface{}{"sent": total})
			return
		}
		if j.batch <= 0 || n < j.batch {
			break
		}
	}
	if total == 0 {
		log.Println("[REMINDER] nothing overdue")
		return
	}
	log.Printf("[REMINDER] %d overdue reminders queued", total)
}

// StartOverdueReminderScheduler registers the reminder job on spec (standard 5-field cron or
// a descriptor like @daily) and starts the cron. Stop the returned cron on shutdown.
func StartOverdueReminderScheduler(spec string, svc OverdueReminder, interval time.Duration, batch int) (*cron.Cron, error) {
	logger := cron.VerbosePrintfLogger(log.New(os.Stdout, "[CRON] ", log.LstdFlags))
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	job := reminderJob{svc: svc, interval: interval, batch: batch, timeout: 10 * time.Minute, now: time.Now}
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("reminder schedule %q: %w", spec, err)
	}
	c.Start()
	log.Printf("[INFO] overdue reminders scheduled (%s)", spec)
	return c, nil
}
