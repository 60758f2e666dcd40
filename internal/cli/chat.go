package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/agentbridge/agentbridge/internal/agentforce/session"
)

var agentLabel = color.New(color.FgCyan)

// newChatCmd creates the chat command: an interactive terminal conversation
// with an agent. Each line typed is dispatched as one message; agent replies
// are printed chunk by chunk as they stream in.
func newChatCmd() *cobra.Command {
	var agentID string
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with an agent from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseModeFlag(modeFlag)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			sess, apperr := session.GetSession(ctx, agentID, mode)
			if apperr != nil {
				return apperr
			}
			okLabel.Printf("Connected to agent %s (session %s). Type a message, or /quit to leave.\n", sess.AgentID, sess.ID)

			defer session.EndSession(ctx, agentID, mode)

			scanner := bufio.NewScanner(os.Stdin)
			sequenceID := 1
			for {
				fmt.Print("you> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "/quit" || text == "/exit" {
					return nil
				}

				stream, apperr := session.SendStreamingMessage(ctx, text, sequenceID, agentID, mode)
				if apperr != nil {
					errorLabel.Fprintf(os.Stderr, "Error: %v\n", apperr)
					continue
				}
				sequenceID++

				agentLabel.Print("agent> ")
				printEventStream(stream)
			}
		},
	}

	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "Agent ID (defaults to the configured agent)")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Auth mode: direct or applink (defaults by configuration)")
	return cmd
}

// printEventStream consumes an SSE stream and prints the text carried by each
// event. Events whose payload has no recognizable text field are skipped.
func printEventStream(stream io.ReadCloser) {
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if text := eventText(data); text != "" {
			fmt.Print(text)
		}
	}
	fmt.Println()
}

// eventText extracts the displayable text of a streamed event payload.
func eventText(data string) string {
	for _, path := range []string{"message.message", "message.text", "text"} {
		if v := gjson.Get(data, path); v.Exists() {
			return v.String()
		}
	}
	return ""
}
