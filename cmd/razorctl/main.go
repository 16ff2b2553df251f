package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}
	root := &cobra.Command{
		Use:           "razorctl",
		Short:         "Operator client for razord",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.base, "url", envOr("RAZORCTL_URL", "http://localhost:8080"), "razord base URL")
	pf.StringVar(&c.user, "user", os.Getenv("RAZORCTL_USER"), "basic auth user")
	pf.StringVar(&c.password, "password", os.Getenv("RAZORCTL_PASSWORD"), "basic auth password")

	root.AddCommand(
		&cobra.Command{
			Use:   "ping",
			Short: "Check that razord answers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.print(cmd, "GET", "/ping", nil)
			},
		},
		reinstallCmd(c),
		eventsCmd(),
		&cobra.Command{
			Use:   "nodes [NAME]",
			Short: "List nodes or show one",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := "/api/collections/nodes"
				if len(args) == 1 {
					path += "/" + args[0]
				}
				return c.print(cmd, "GET", path, nil)
			},
		},
		&cobra.Command{
			Use:   "commands",
			Short: "Show the command history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.print(cmd, "GET", "/api/collections/commands", nil)
			},
		},
	)
	return root
}

func reinstallCmd(c *client) *cobra.Command {
	var samePolicy bool
	cmd := &cobra.Command{
		Use:   "reinstall NAME",
		Short: "Reinstall a node, optionally keeping its policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"name": args[0]}
			if cmd.Flags().Changed("same-policy") {
				body["same_policy"] = samePolicy
			}
			return c.print(cmd, "POST", "/api/commands/reinstall-node", body)
		},
	}
	cmd.Flags().BoolVar(&samePolicy, "same-policy", false, "keep the current policy binding")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
