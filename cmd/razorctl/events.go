package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	natsclient "github.com/devghori1264/aerophoenix/razord/internal/nats"
)

func eventsCmd() *cobra.Command {
	var natsURL string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail command events published by razord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return natsclient.Tail(cmd.Context(), natsURL, natsclient.CommandEvents, func(subject string, data []byte) {
				printEvent(out, subject, data)
			})
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", envOr("RAZORCTL_NATS", "nats://localhost:4222"), "NATS server URL")
	return cmd
}

type commandEvent struct {
	Event   string `json:"event"`
	Command string `json:"command"`
	ID      string `json:"id"`
	Node    string `json:"node"`
	Outcome string `json:"outcome"`
	Time    int64  `json:"time"`
}

// printEvent writes one line per event; undecodable payloads are shown raw.
func printEvent(w io.Writer, subject string, data []byte) {
	var ev commandEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		fmt.Fprintf(w, "%s %s\n", subject, data)
		return
	}
	fmt.Fprintf(w, "%s %s node=%s outcome=%s command=%s\n",
		time.Unix(ev.Time, 0).UTC().Format(time.RFC3339), ev.Event, ev.Node, ev.Outcome, ev.ID)
}

