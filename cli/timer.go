package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"clementus360/focusflow/services"
	"clementus360/focusflow/timer"

	"github.com/spf13/cobra"
)

const timerHelp = `Commands:
  s          start
  p          pause
  r          resume
  x          reset (cancels the session)
  t <type> [seconds]  change session type
  q          quit`

func timerCmd(load settingsLoader) *cobra.Command {
	var (
		userID      string
		sessionType string
		duration    int
		taskID      string
	)

	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Run the focus timer in the terminal",
		Long: `Run a Pomodoro-style focus timer that records sessions for a user.

` + timerHelp + `

Examples:
  focusflow timer --user u1
  focusflow timer --user u1 --type short-break
  focusflow timer --user u1 --type reading --duration 1200 --task 6f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			db, err := openStore(settings)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			m, err := timer.New(sessionType, duration)
			if err != nil {
				return err
			}
			var task *string
			if taskID != "" {
				task = &taskID
			}

			actions := timer.UserSessions{Sessions: services.NewSessionService(db, db), UserID: userID}
			return runTimer(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), m, actions, task, timer.BellNotifier{W: cmd.OutOrStdout()}, nil)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the sessions belong to")
	cmd.Flags().StringVar(&sessionType, "type", "pomodoro", "session type: pomodoro, short-break, long-break or a custom label")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in seconds (required for custom types)")
	cmd.Flags().StringVar(&taskID, "task", "", "task id to attach sessions to")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// runTimer reads single-letter commands from in until q or EOF. ticker may be
// nil to use a real one-second ticker.
func runTimer(ctx context.Context, in io.Reader, out io.Writer, m timer.Machine, actions timer.SessionActions,
	taskID *string, notifier timer.Notifier, ticker timer.TickerFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reader := bufio.NewReader(in)

	var outMu sync.Mutex
	printf := func(format string, a ...any) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, format, a...)
	}

	driver := timer.NewDriver(m, timer.DriverConfig{
		Actions:  actions,
		Notifier: notifier,
		Ticker:   ticker,
		Confirm: func(prompt string) bool {
			printf("\n%s [y/N] ", prompt)
			answer, _ := reader.ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			return answer == "y" || answer == "yes"
		},
		OnChange: func(m timer.Machine) {
			printf("\r%s", render(m))
		},
	})
	defer driver.Close()

	printf("%s\n%s", timerHelp, render(driver.Snapshot()))

	for {
		line, err := reader.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) > 0 {
			if quit := timerCommand(ctx, driver, fields, taskID, printf); quit {
				break
			}
		}
		if err != nil {
			break
		}
	}

	// Leaving with a live countdown abandons it like a reset.
	if driver.Snapshot().Active() {
		_ = driver.Reset(ctx)
	}
	printf("\n")
	return nil
}

func timerCommand(ctx context.Context, d *timer.Driver, fields []string, taskID *string, printf func(string, ...any)) (quit bool) {
	var err error
	switch fields[0] {
	case "s":
		err = d.Start(ctx, taskID, "", 0)
	case "p":
		err = d.Pause(ctx)
	case "r":
		err = d.Resume(ctx)
	case "x":
		err = d.Reset(ctx)
	case "t":
		if len(fields) < 2 {
			printf("\nusage: t <type> [seconds]\n")
			return false
		}
		seconds := 0
		if len(fields) > 2 {
			if seconds, err = strconv.Atoi(fields[2]); err != nil {
				printf("\ninvalid duration %q\n", fields[2])
				return false
			}
		}
		var changed bool
		changed, err = d.ChangeType(ctx, fields[1], seconds)
		if err == nil && !changed {
			printf("\nkept %s\n", d.Snapshot().Type)
		}
	case "q":
		return true
	default:
		printf("\n%s\n", timerHelp)
		return false
	}
	if err != nil {
		printf("\nerror: %v\n", err)
	}
	return false
}

func render(m timer.Machine) string {
	const width = 20
	filled := int(m.Progress() * width)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
	return fmt.Sprintf("%-12s %-8s %02d:%02d [%s] %3.0f%%  ", m.Type, m.State, m.Remaining/60, m.Remaining%60, bar, m.Progress()*100)
}
