package natsclient

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
)

// CommandEvents matches every command event subject.
const CommandEvents = "razor.commands.>"

// Tail subscribes to subject and calls fn for each message until ctx ends.
func Tail(ctx context.Context, url, subject string, fn func(subject string, data []byte)) error {
	nc, err := nats.Connect(url,
		nats.Name("razorctl"),
		nats.Timeout(2*time.Second),
	)
	if err != nil {
		return err
	}
	defer nc.Close()

	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		fn(m.Subject, m.Data)
	})
	if err != nil {
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	<-ctx.Done()
	return nil
}
