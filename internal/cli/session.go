package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentbridge/agentbridge/internal/agentforce/auth"
	"github.com/agentbridge/agentbridge/internal/agentforce/session"
)

// parseModeFlag maps the --mode flag onto an auth mode, falling back to the
// configuration default when the flag is empty.
func parseModeFlag(flag string) (auth.Mode, error) {
	if flag == "" {
		return auth.DefaultMode(), nil
	}
	mode := auth.Mode(flag)
	if !mode.IsValid() {
		return "", fmt.Errorf("unknown auth mode %q (use direct or applink)", flag)
	}
	return mode, nil
}

// newSessionCmd creates the session command group for explicit session
// lifecycle control.
func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage agent sessions",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionEndCmd())
	return cmd
}

func newSessionStartCmd() *cobra.Command {
	var agentID string
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Open a session with an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseModeFlag(modeFlag)
			if err != nil {
				return err
			}

			sess, apperr := session.GetSession(cmd.Context(), agentID, mode)
			if apperr != nil {
				return apperr
			}

			if jsonOutput {
				printJSON(sess)
			} else {
				okLabel.Printf("Session %s open against agent %s (%s)\n", sess.ID, sess.AgentID, sess.Mode)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "Agent ID (defaults to the configured agent)")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Auth mode: direct or applink (defaults by configuration)")
	return cmd
}

func newSessionEndCmd() *cobra.Command {
	var agentID string
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "end",
		Short: "Close the active session with an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseModeFlag(modeFlag)
			if err != nil {
				return err
			}

			session.EndSession(cmd.Context(), agentID, mode)

			if jsonOutput {
				printJSON(map[string]string{"status": "ended"})
			} else {
				okLabel.Println("Session ended")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "Agent ID (defaults to the configured agent)")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Auth mode: direct or applink (defaults by configuration)")
	return cmd
}
