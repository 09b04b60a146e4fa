package localnotify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sink presents a fired notification to the user
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// LogSink writes fired notifications to the process log
type LogSink struct{}

func (LogSink) Deliver(_ context.Context, n Notification) error {
	log.Printf("[LocalNotify] 🔔 %s: %s", n.Title, n.Body)
	return nil
}

// DueSource hands out notifications whose trigger time has passed
type DueSource interface {
	TakeDue(now time.Time) ([]Notification, error)
}

// Dispatcher fires due notifications on a cron schedule. A fired notification
// leaves the pending set even if the sink fails; it is never fired twice.
type Dispatcher struct {
	source DueSource
	sink   Sink
	spec   string
	now    func() time.Time
	cron   *cron.Cron
}

// NewDispatcher creates a dispatcher; spec is a six-field cron expression
// with seconds, e.g. "0 * * * * *" for every minute.
func NewDispatcher(source DueSource, sink Sink, spec string) *Dispatcher {
	return &Dispatcher{
		source: source,
		sink:   sink,
		spec:   spec,
		now:    time.Now,
		cron:   cron.New(cron.WithSeconds()),
	}
}

func (d *Dispatcher) Start(ctx context.Context) error {
	if _, err := d.cron.AddFunc(d.spec, func() { d.Fire(ctx) }); err != nil {
		return fmt.Errorf("invalid dispatch schedule %q: %w", d.spec, err)
	}
	d.cron.Start()
	log.Printf("[LocalNotify] Dispatcher started (schedule: %s)", d.spec)
	return nil
}

// Stop waits for a running dispatch to finish.
func (d *Dispatcher) Stop() {
	<-d.cron.Stop().Done()
	log.Println("[LocalNotify] Dispatcher stopped")
}

// Fire delivers every due notification and returns how many were taken.
func (d *Dispatcher) Fire(ctx context.Context) int {
	due, err := d.source.TakeDue(d.now())
	if err != nil {
		log.Printf("[LocalNotify] Error taking due notifications: %v", err)
		return 0
	}
	for _, n := range due {
		if err := d.sink.Deliver(ctx, n); err != nil {
			log.Printf("[LocalNotify] Error delivering %s: %v", n.ID, err)
		}
	}
	return len(due)
}
