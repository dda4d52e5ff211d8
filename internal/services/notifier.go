package services

import "context"

// Notifier forwards task lifecycle events to an external channel. No real
// transport is wired yet; every notification lands in the event log under a
// notification_ prefix so a mail or webhook sender can be swapped in behind
// this single choke point.
type Notifier struct {
	events *EventLogService
}

func NewNotifier(events *EventLogService) *Notifier {
	return &Notifier{events: events}
}

func (n *Notifier) Notify(ctx context.Context, eventType string, data map[string]any) error {
	return n.events.Append(ctx, "notification_"+eventType, data)
}
