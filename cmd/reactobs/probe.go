package main

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/georgyangelov/react-obs/internal/config"
	"github.com/georgyangelov/react-obs/internal/errors"
	"github.com/georgyangelov/react-obs/pkg/client"
)

func probeCmd() *cobra.Command {
	var (
		address string
		find    []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that a scene server answers",
		Long: `Connect to a running scene server, open a session and optionally
look up compositor sources by name.

Each --find registers the source on the server under a fresh
"probe:<name>:<id>" uid, which stays registered.

Examples:
  reactobs probe
  reactobs probe --address=obs.local:6666 --find=Main --find=Camera`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runProbe(ctx, address, find)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "localhost"+config.DefaultAddress, "Server address")
	cmd.Flags().StringSliceVarP(&find, "find", "f", nil, "Source name to look up (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Overall timeout")

	return cmd
}

func runProbe(ctx context.Context, address string, names []string) error {
	c, err := client.Dial(ctx, address)
	if err != nil {
		return errors.New(errors.CodeProbeFailed).WithSubject(address).Wrap(err)
	}
	defer c.Close()

	if err := c.Init(ctx, "reactobs-probe"); err != nil {
		return errors.New(errors.CodeProbeFailed).WithSubject(address).Wrap(err)
	}
	success("Connected to %s", address)

	missing := 0
	for _, name := range names {
		found, err := c.FindSource(ctx, "probe:"+name+":"+ulid.Make().String(), name)
		if err != nil {
			return errors.New(errors.CodeProbeFailed).WithSubject(name).Wrap(err)
		}
		if found {
			info("found %s", name)
		} else {
			warn("source %s not found", name)
			missing++
		}
	}

	if missing > 0 {
		return errors.New(errors.CodeProbeFailed).
			WithSubject(address).
			WithDetail("Some sources were not found")
	}
	return nil
}
