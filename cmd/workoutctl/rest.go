package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"alcyxob/workout-tracker/internal/restinterval"
	"alcyxob/workout-tracker/internal/timer"
)

func newRestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rest <text>",
		Short: "Parse a rest interval such as \"90s\" or \"1m 30s\"",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			text := strings.Join(args, " ")
			secs := restinterval.ParseSeconds(text)
			fmt.Fprintf(cmd.OutOrStdout(), "%q = %d seconds (%s)\n", text, secs, restinterval.Format(secs))
		},
	}
}

func newTimerCmd() *cobra.Command {
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "timer <rest>",
		Short: "Count down a rest interval in the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimer(cmd, strings.Join(args, " "), tick)
		},
	}
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "wall-clock length of one timer second")
	return cmd
}

// lockedWriter serializes writes from the caller and the countdown loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, a...)
}

func runTimer(cmd *cobra.Command, rest string, tick time.Duration) error {
	if restinterval.ParseSeconds(rest) == 0 {
		return fmt.Errorf("rest %q has no duration", rest)
	}
	out := &lockedWriter{w: cmd.OutOrStdout()}
	done := make(chan struct{})
	var once sync.Once

	t := timer.New(timer.WithTick(tick))
	defer t.Close()
	t.OnChange(func(s timer.Snapshot) {
		switch s.State {
		case timer.Running:
			out.printf("%s\n", restinterval.Format(s.Remaining))
		case timer.Expired:
			out.printf("Rest over.\n")
			once.Do(func() { close(done) })
		}
	})
	t.Toggle(rest)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	select {
	case <-done:
	case <-ctx.Done():
		out.printf("Stopped with %s left.\n", restinterval.Format(t.Snapshot().Remaining))
	}
	return nil
}
