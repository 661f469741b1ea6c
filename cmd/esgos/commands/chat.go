// ABOUTME: CLI command to talk to the ESG assistant
// ABOUTME: One-shot with arguments, or an interactive session reading stdin
package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/models"
	"github.com/harper/esgos/internal/storage"
)

var (
	chatSession string
	chatClear   bool
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the ESG assistant",
		Long: `Ask the ESG assistant about reporting frameworks, carbon
accounting, and supplier risk. History is kept per session and
replayed on the next question.

With no message, starts an interactive session (type 'exit' to quit).

Examples:
  esgos chat "What changed in ESRS E1?"
  esgos chat --session audit "Summarise our scope 3 gaps"
  esgos chat --clear`,
		RunE: runChat,
	}

	cmd.Flags().StringVarP(&chatSession, "session", "s", storage.DefaultSession, "Conversation session name")
	cmd.Flags().BoolVar(&chatClear, "clear", false, "Clear the session history and exit")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if chatClear {
		if err := store.ClearChat(chatSession); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		info(cmd, "Cleared session %q", chatSession)
		return nil
	}

	assistant, err := newAssistant(cmd, store, isTerminal())
	if err != nil {
		return err
	}

	ask := func(message string) error {
		history, err := store.ChatHistory(chatSession)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		reply, err := assistant.Chat(cmd.Context(), history, message)
		if err != nil {
			return fmt.Errorf("assistant: %w", err)
		}

		userTurn, err := models.NewChatTurn(models.RoleUser, message)
		if err != nil {
			return err
		}
		turns := []models.ChatTurn{*userTurn}
		if replyTurn, err := models.NewChatTurn(models.RoleAssistant, reply); err == nil {
			turns = append(turns, *replyTurn)
		}
		if err := store.AppendChat(chatSession, turns...); err != nil {
			logger.Warn("failed to save chat history", "err", err)
		}

		return render(cmd, map[string]string{"session": chatSession, "reply": reply}, func(w io.Writer) {
			fmt.Fprintf(w, "%s\n", reply)
		})
	}

	if len(args) > 0 {
		return ask(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if !quiet {
			fmt.Fprint(cmd.ErrOrStderr(), "you> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := ask(line); err != nil {
			logger.Error(err.Error())
		}
	}
}
