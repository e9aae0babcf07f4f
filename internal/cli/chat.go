package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"ministagram/internal/controller"
)

func (a *App) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [username]",
		Short: "Show your conversations, or the thread with username",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			chat := controller.NewChat(a.deps)
			if len(args) == 0 {
				if err := chat.Load(cmd.Context()); err != nil {
					return failure(chat.Err(), err)
				}
				renderChats(a.out, chat.Chats())
				return nil
			}
			if err := chat.Select(cmd.Context(), args[0]); err != nil {
				return failure(chat.Err(), err)
			}
			renderThread(a.out, chat)
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "send <username> <message>...",
		Short: "Send a direct message",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			chat := controller.NewChat(a.deps)
			if err := chat.StartNew(cmd.Context(), args[0]); err != nil {
				return failure(chat.Err(), err)
			}
			if err := chat.Send(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
				return failure(chat.Err(), err)
			}
			renderThread(a.out, chat)
			return nil
		}),
	})
	return cmd
}
