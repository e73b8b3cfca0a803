package client

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/GooseXRL8/flowerlove/internal/clock"
	"github.com/GooseXRL8/flowerlove/internal/elapsed"
)

// engineClock drives the local counter; tests swap in a fake.
var engineClock clock.Clock = clock.Real{}

// NewCounterCommand constructs the `counter` command, which runs the
// elapsed-duration engine locally without a server.
func NewCounterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Show time elapsed since a start date, its stage and milestone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startStr, _ := cmd.Flags().GetString("start")
			schemeName, _ := cmd.Flags().GetString("scheme")
			watch, _ := cmd.Flags().GetBool("watch")
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			start, err := parseStart(startStr)
			if err != nil {
				return err
			}
			scheme, err := elapsed.SchemeByName(schemeName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			emit := func(s elapsed.Snapshot) error {
				if asJSON {
					return printJSON(out, s)
				}
				return printSnapshot(out, s)
			}
			if !watch {
				return emit(elapsed.Compute(start, engineClock.Now(), scheme))
			}

			ctx := cmd.Context()
			stop := make(chan struct{})
			var once sync.Once
			halt := func() { once.Do(func() { close(stop) }) }
			var count int
			var emitErr error
			sub := elapsed.Watch(ctx, engineClock, start, elapsed.DefaultPeriod, func(s elapsed.Snapshot) {
				if err := emit(s); err != nil {
					emitErr = err
					halt()
					return
				}
				if count++; limit > 0 && count >= limit {
					halt()
				}
			}, elapsed.WithScheme(scheme))
			select {
			case <-stop:
			case <-sub.Done():
			}
			sub.Cancel()
			<-sub.Done()
			return emitErr
		},
	}
	cmd.Flags().String("start", "", "Start instant: RFC3339, YYYY-MM-DD or ms")
	cmd.Flags().String("scheme", "flower", "Stage scheme: flower|rose")
	cmd.Flags().Bool("watch", false, "Refresh every second until interrupted")
	cmd.Flags().Int("limit", 0, "With --watch, stop after N updates (0 = infinite)")
	cmd.Flags().Bool("json", false, "Print snapshots as JSON")
	return cmd
}

// NewMilestonesCommand prints the anniversary tables.
func NewMilestonesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "milestones",
		Short: "List monthly and yearly anniversary names",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Primeiro ano (meses):")
			for _, m := range elapsed.MonthlyMilestones() {
				fmt.Fprintf(out, "  %3d  %s\n", m.Key, m.Name)
			}
			fmt.Fprintln(out, "Anos:")
			for _, m := range elapsed.YearlyMilestones() {
				fmt.Fprintf(out, "  %3d  %s\n", m.Key, m.Name)
			}
			return nil
		},
	}
}

func printSnapshot(w io.Writer, s elapsed.Snapshot) error {
	b := s.Breakdown
	_, err := fmt.Fprintf(w, "%s · %02d:%02d:%02d · %s · estágio %d (%s)\n",
		s.Text, b.Hours, b.Minutes, b.Seconds, s.Milestone, s.Stage, s.Stage.Description())
	return err
}
