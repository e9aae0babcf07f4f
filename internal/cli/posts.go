package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ministagram/internal/controller"
	"ministagram/internal/model"
)

func parsePostID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}

func (a *App) me() string {
	if me := a.deps.Session.CurrentUser(); me != nil {
		return me.Username
	}
	return ""
}

// =============================================================================
// feed
// =============================================================================

func (a *App) feedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show posts from the accounts you follow",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			feed := controller.NewFeed(a.deps)
			if err := feed.Load(cmd.Context()); err != nil {
				return failure(feed.Err(), err)
			}
			renderFeed(a.out, feed.Cards())
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "like <post-id>",
		Short: "Like or unlike a post in your feed",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			feed := controller.NewFeed(a.deps)
			if err := feed.Load(cmd.Context()); err != nil {
				return failure(feed.Err(), err)
			}
			for _, card := range feed.Cards() {
				if card.Item().PostID != id {
					continue
				}
				if err := card.ToggleLike(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s post %d (%d likes).\n", likedWord(card.Liked()), id, card.LikeCount())
				return nil
			}
			return fmt.Errorf("post %d is not in your feed", id)
		}),
	})
	return cmd
}

func likedWord(liked bool) string {
	if liked {
		return "Liked"
	}
	return "Unliked"
}

// =============================================================================
// posts
// =============================================================================

func (a *App) postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage your own posts",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			db := controller.NewDashboard(a.deps)
			if err := db.Load(cmd.Context()); err != nil {
				return failure(db.Err(), err)
			}
			renderPosts(a.out, db.Posts(), a.me())
			return nil
		}),
	}
	cmd.AddCommand(a.postsCreateCmd(), a.postsDeleteCmd(), a.postsDeleteAllCmd(), a.postsLikeCmd())
	return cmd
}

func (a *App) postsCreateCmd() *cobra.Command {
	var caption, imageURL, file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Share a new post",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			composer := controller.NewPostComposer(a.deps, nil)
			composer.Caption, composer.ImageURL = caption, imageURL

			var post *model.Post
			var err error
			if file != "" {
				post, err = composer.SubmitFile(cmd.Context(), file)
			} else {
				post, err = composer.Submit(cmd.Context())
			}
			if err != nil {
				if len(composer.FieldErrors) > 0 {
					return err
				}
				return failure(composer.GeneralError, err)
			}
			fmt.Fprintf(a.out, "Shared post %d.\n", post.ID)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVarP(&caption, "caption", "c", "", "post caption")
	f.StringVar(&imageURL, "image-url", "", "http(s) URL of the image")
	f.StringVar(&file, "file", "", "local image to upload instead of --image-url")
	cmd.MarkFlagsMutuallyExclusive("image-url", "file")
	return cmd
}

// loadOwnCard finds one of the signed-in user's posts on the dashboard.
func (a *App) loadOwnCard(ctx context.Context, db *controller.Dashboard, id int64) (*controller.PostCard, error) {
	if err := db.Load(ctx); err != nil {
		return nil, failure(db.Err(), err)
	}
	for _, card := range db.Cards() {
		if card.Post().ID == id {
			return card, nil
		}
	}
	return nil, fmt.Errorf("post %d is not one of your posts", id)
}

func (a *App) postsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			card, err := a.loadOwnCard(cmd.Context(), controller.NewDashboard(a.deps), id)
			if err != nil {
				return err
			}
			if err := card.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted post %d.\n", id)
			return nil
		}),
	}
}

func (a *App) postsDeleteAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every one of your posts",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			db := controller.NewDashboard(a.deps)
			if err := db.Load(cmd.Context()); err != nil {
				return failure(db.Err(), err)
			}
			n := len(db.Posts())
			if err := db.DeleteAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %d posts.\n", n)
			return nil
		}),
	}
}

func (a *App) postsLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like or unlike one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			card, err := a.loadOwnCard(cmd.Context(), controller.NewDashboard(a.deps), id)
			if err != nil {
				return err
			}
			if err := card.ToggleLike(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s post %d (%d likes).\n", likedWord(card.Liked()), id, card.LikeCount())
			return nil
		}),
	}
}

// =============================================================================
// comments
// =============================================================================

func (a *App) commentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments <post-id>",
		Short: "Show the comments on a post",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			panel := controller.NewPostCard(a.deps, model.Post{ID: id}, nil).Comments()
			if err := panel.Toggle(cmd.Context()); err != nil {
				return failure(panel.Err(), err)
			}
			renderComments(a.out, panel.Comments())
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <post-id> <comment>...",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			panel := controller.NewPostCard(a.deps, model.Post{ID: id}, nil).Comments()
			if err := panel.Submit(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
				return failure(panel.Err(), err)
			}
			renderComments(a.out, panel.Comments())
			return nil
		}),
	})
	return cmd
}

// =============================================================================
// profile
// =============================================================================

func (a *App) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile and posts",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			p := controller.NewProfile(a.deps)
			renderUser(a.out, *p.User())
			fmt.Fprintln(a.out)
			if err := p.Load(cmd.Context()); err != nil {
				return failure(p.Err(), err)
			}
			renderPosts(a.out, p.Posts(), a.me())
			return nil
		}),
	}
	cmd.AddCommand(a.profileUpdateCmd())
	return cmd
}

func (a *App) profileUpdateCmd() *cobra.Command {
	var fullName, username, password, picture string
	var private bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your profile",
		Args:  cobra.NoArgs,
		RunE: a.authed(func(cmd *cobra.Command, _ []string) error {
			var payload model.UpdateUserPayload
			f := cmd.Flags()
			if f.Changed("name") {
				payload.FullName = &fullName
			}
			if f.Changed("username") {
				payload.Username = &username
			}
			if f.Changed("password") {
				payload.Password = &password
			}
			if f.Changed("picture") {
				payload.ProfilePicURL = &picture
			}
			if f.Changed("private") {
				payload.PrivateAccount = &private
			}

			user, err := controller.NewProfile(a.deps).Update(cmd.Context(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Profile updated.")
			renderUser(a.out, *user)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&fullName, "name", "", "full name")
	f.StringVar(&username, "username", "", "username")
	f.StringVarP(&password, "password", "p", "", "new password")
	f.StringVar(&picture, "picture", "", "profile picture URL")
	f.BoolVar(&private, "private", false, "private account (use --private=false to go public)")
	return cmd
}
