package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"ministagram/internal/controller"
	"ministagram/internal/model"
	"ministagram/internal/visibility"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cols ...interface{}) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func handle(username string) string { return "@" + username }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func renderUser(w io.Writer, u model.User) {
	fmt.Fprintf(w, "%s (%s)\n", u.FullName, handle(u.Username))
	fmt.Fprintln(w, u.Visibility())
	if u.ProfilePicURL != "" {
		fmt.Fprintln(w, u.ProfilePicURL)
	}
}

func renderUsers(w io.Writer, users []model.User, empty string) {
	if len(users) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	tw := table(w)
	row(tw, "USERNAME", "NAME", "ACCOUNT")
	for _, u := range users {
		row(tw, handle(u.Username), u.FullName, u.Visibility())
	}
	tw.Flush()
}

func renderPosts(w io.Writer, posts []model.Post, me string) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	tw := table(w)
	row(tw, "ID", "AUTHOR", "LIKES", "LIKED", "POSTED", "CAPTION", "IMAGE")
	for _, p := range posts {
		row(tw, p.ID, handle(p.User.Username), p.LikeCount(), yesNo(p.LikedBy(me)), p.UploadedAt.Display(), p.Caption, p.ImageURL)
	}
	tw.Flush()
}

func renderFeed(w io.Writer, cards []*controller.FeedCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "Your feed is empty. Follow someone to see their posts.")
		return
	}
	tw := table(w)
	row(tw, "ID", "AUTHOR", "LIKES", "COMMENTS", "LIKED", "POSTED", "CAPTION")
	for _, c := range cards {
		item := c.Item()
		row(tw, item.PostID, handle(item.Username), c.LikeCount(), item.NoOfComments, yesNo(c.Liked()), item.UploadedAt.Display(), item.Caption)
	}
	tw.Flush()
}

func renderComments(w io.Writer, comments []model.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}
	tw := table(w)
	for _, c := range comments {
		row(tw, handle(c.Username), c.UploadedAt.Display(), c.Comment)
	}
	tw.Flush()
}

func renderRelationship(w io.Writer, rel visibility.Relationship) {
	switch {
	case rel.IsSelf:
		fmt.Fprintln(w, "This is you.")
		return
	case rel.Following():
		fmt.Fprintln(w, "You follow this account.")
	case rel.IFollow == visibility.Unknown:
		fmt.Fprintln(w, "Follow status unavailable.")
	default:
		fmt.Fprintln(w, "You do not follow this account.")
	}
	if rel.FollowedBy() {
		fmt.Fprintln(w, "Follows you.")
	}
}

func renderRequests(w io.Writer, reqs []model.FollowRequest) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "No pending requests.")
		return
	}
	tw := table(w)
	row(tw, "USERNAME", "REQUESTED")
	for _, r := range reqs {
		row(tw, handle(r.Username), r.RequestedAt.Display())
	}
	tw.Flush()
}

func renderChats(w io.Writer, chats []model.ChatSummary) {
	if len(chats) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	tw := table(w)
	row(tw, "WITH", "LAST MESSAGE")
	for _, c := range chats {
		row(tw, handle(c.Username), c.LastMessage)
	}
	tw.Flush()
}

func renderThread(w io.Writer, chat *controller.Chat) {
	msgs := chat.Messages()
	if len(msgs) == 0 {
		fmt.Fprintf(w, "No messages with %s yet. Say hi!\n", handle(chat.Username()))
		return
	}
	tw := table(w)
	for _, m := range msgs {
		who := handle(m.Sender)
		if chat.IsOwn(m) {
			who = "you"
		}
		row(tw, m.SentAt.Clock(), who, m.Content)
	}
	tw.Flush()
}
