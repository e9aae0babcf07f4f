package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ministagram/internal/controller"
)

func (a *App) usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List every account",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			users, err := a.deps.API.Users.List(cmd.Context())
			if err != nil {
				a.log.Warn("list users failed", zap.Error(err))
				return failure(controller.MsgUserLoadFailed, err)
			}
			renderUsers(a.out, users, "No users yet.")
			return nil
		}),
	}
}

func (a *App) userCmd() *cobra.Command {
	var toggleFollow, followers, following bool
	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Show another account's profile",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page := controller.NewUserDetail(a.deps, args[0])
			if err := page.Load(ctx); err != nil && page.Target() == nil {
				return failure(page.Err(), err)
			}

			if toggleFollow {
				if err := page.ToggleFollow(ctx); err != nil {
					return err
				}
			}
			if followers {
				page.ShowTab(controller.TabFollowers)
			}
			if following {
				page.ShowTab(controller.TabFollowing)
			}
			a.renderUserDetail(page)
			return nil
		}),
	}
	f := cmd.Flags()
	f.BoolVar(&toggleFollow, "toggle-follow", false, "follow, or unfollow when already following")
	f.BoolVar(&followers, "followers", false, "list the account's followers")
	f.BoolVar(&following, "following", false, "list the accounts it follows")
	cmd.MarkFlagsMutuallyExclusive("followers", "following")
	return cmd
}

func (a *App) renderUserDetail(page *controller.UserDetail) {
	renderUser(a.out, *page.Target())
	rel := page.Relationship()
	renderRelationship(a.out, rel)
	fmt.Fprintf(a.out, "%d followers, %d following\n\n", len(page.Followers()), len(page.Following()))

	switch page.ActiveTab() {
	case controller.TabFollowers:
		renderUsers(a.out, page.Followers(), "No followers to show.")
		fmt.Fprintln(a.out)
	case controller.TabFollowing:
		renderUsers(a.out, page.Following(), "Not following anyone visible.")
		fmt.Fprintln(a.out)
	}

	switch {
	case rel.PostsHidden:
		fmt.Fprintln(a.out, "This account is private. Follow it to see its posts.")
	case page.Err() != "":
		fmt.Fprintln(a.out, page.Err())
	default:
		renderPosts(a.out, page.Posts(), a.me())
	}
}

// =============================================================================
// connections
// =============================================================================

func (a *App) connectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Show followers, following and pending requests",
		Args:    cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			page := controller.NewConnections(a.deps)
			if err := page.Load(cmd.Context()); err != nil {
				return failure(page.Err(), err)
			}
			a.renderConnections(page)
			return nil
		}),
	}
	cmd.AddCommand(
		a.connectionActionCmd("follow", "Follow an account, or request to", (*controller.Connections).Follow),
		a.connectionActionCmd("unfollow", "Stop following an account", (*controller.Connections).Unfollow),
		a.connectionActionCmd("accept", "Accept a follow request", (*controller.Connections).Accept),
		a.connectionActionCmd("reject", "Reject a follow request", (*controller.Connections).Reject),
	)
	return cmd
}

func (a *App) connectionActionCmd(name, short string, action func(*controller.Connections, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			page := controller.NewConnections(a.deps)
			if err := action(page, cmd.Context(), args[0]); err != nil {
				return failure(page.Err(), err)
			}
			a.renderConnections(page)
			return nil
		}),
	}
}

func (a *App) renderConnections(page *controller.Connections) {
	fmt.Fprintln(a.out, "Followers")
	renderUsers(a.out, page.Followers(), "No followers yet.")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Following")
	renderUsers(a.out, page.Following(), "Not following anyone yet.")
	if me := a.deps.Session.CurrentUser(); me != nil && me.PrivateAccount {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Requests")
		renderRequests(a.out, page.Requests())
	}
}
