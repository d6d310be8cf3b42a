package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lienzo/lienzo-go/internal/api"
	"github.com/lienzo/lienzo-go/internal/feed"
	"github.com/lienzo/lienzo-go/internal/models"
)

func (s *Shell) readPassword(prompt string) (string, error) {
	secret, err := s.rl.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func (s *Shell) handleLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: login <username>")
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		return err
	}

	if err := s.svc.Session.Login(ctx, args[0], password); err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return errors.New("invalid username or password")
		}
		return err
	}

	if s.svc.Poller != nil {
		s.svc.Poller.Refresh(ctx)
	}
	fmt.Fprintf(s.out, "Logged in as %s.\n", args[0])
	return nil
}

func (s *Shell) handleLoginToken(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: login-token <token>")
	}
	if err := s.svc.Session.LoginWithToken(ctx, args[0]); err != nil {
		return err
	}

	identity := s.svc.Session.Identity(ctx)
	fmt.Fprintf(s.out, "Logged in as %s.\n", identity.Username)
	return nil
}

func (s *Shell) handleRegister(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: register <username> <email>")
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		return err
	}

	if err := s.svc.Session.Register(ctx, args[0], args[1], password); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Welcome, %s.\n", args[0])
	return nil
}

func (s *Shell) handleLogout(ctx context.Context) error {
	if err := s.svc.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Logged out.")
	return nil
}

func (s *Shell) handleWhoami(ctx context.Context) error {
	identity := s.svc.Session.Identity(ctx)
	if !identity.LoggedIn() {
		fmt.Fprintln(s.out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(s.out, "%s <%s> (id %d, role %s)\n", identity.Username, identity.Email, identity.UserID, identity.Role)
	if !identity.ExpiresOn.IsZero() {
		fmt.Fprintf(s.out, "Token expires %s.\n", identity.ExpiresOn.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (s *Shell) handleForgotPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: forgot-password <email>")
	}
	if err := s.svc.Auth.ForgotPassword(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "If the address exists, a reset email is on its way.")
	return nil
}

func (s *Shell) handleResetPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: reset-password <reset-token>")
	}
	password, err := s.readPassword("New password: ")
	if err != nil {
		return err
	}
	if err := s.svc.Auth.ResetPassword(ctx, args[0], password); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Password updated, log in with the new one.")
	return nil
}

// parseFeedFilter turns command flags into a filter descriptor.
func parseFeedFilter(args []string) (feed.Filter, error) {
	var filter feed.Filter

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--following":
			filter.OnlyFollowing = true
		case "--saved":
			filter.OnlySaved = true
		case "--type", "--user", "--tag", "--sort":
			if i+1 >= len(args) {
				return feed.Filter{}, fmt.Errorf("%s needs a value", args[i])
			}
			value := args[i+1]
			i++
			switch args[i-1] {
			case "--type":
				filter.Type = models.PublicationType(strings.ToUpper(value))
			case "--user":
				id, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return feed.Filter{}, fmt.Errorf("bad user id %q", value)
				}
				filter.UserID = id
			case "--tag":
				filter.Tag = value
			case "--sort":
				filter.Sort = append(filter.Sort, value)
			}
		default:
			return feed.Filter{}, fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	return filter, nil
}

func (s *Shell) handleFeed(ctx context.Context, args []string) error {
	filter, err := parseFeedFilter(args)
	if err != nil {
		return err
	}

	if err := s.svc.Loader.SetFilter(ctx, filter); err != nil {
		return err
	}
	if len(args) == 0 {
		// "feed" with no flags re-shows the current window even when the
		// filter did not change.
		if len(s.svc.Loader.Items()) == 0 {
			if err := s.svc.Loader.Refresh(ctx); err != nil {
				return err
			}
		}
	}
	s.printFeed()
	return nil
}

func (s *Shell) handleMore(ctx context.Context) error {
	if !s.svc.Loader.HasMore() {
		fmt.Fprintln(s.out, "No more posts.")
		return nil
	}
	before := len(s.svc.Loader.Items())
	if err := s.svc.Loader.LoadMore(ctx); err != nil {
		return err
	}
	s.printPosts(s.svc.Loader.Items()[before:])
	if !s.svc.Loader.HasMore() {
		fmt.Fprintln(s.out, "End of feed.")
	}
	return nil
}

func (s *Shell) handleRefresh(ctx context.Context) error {
	if err := s.svc.Loader.Refresh(ctx); err != nil {
		return err
	}
	s.printFeed()
	return nil
}

func (s *Shell) printFeed() {
	items := s.svc.Loader.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "Nothing here yet.")
		return
	}
	s.printPosts(items)
	if s.svc.Loader.HasMore() {
		fmt.Fprintln(s.out, `Type "more" for the next page.`)
	}
}

func (s *Shell) printPosts(posts []models.Publication) {
	for _, post := range posts {
		line := fmt.Sprintf("#%d @%s [%s] %s", post.ID, post.Author.Username, post.Type, oneLine(post.Description))
		if post.HeartsCount > 0 || post.CommentsCount > 0 {
			line += fmt.Sprintf("  (%d hearts, %d comments)", post.HeartsCount, post.CommentsCount)
		}
		fmt.Fprintln(s.out, line)
	}
}

func oneLine(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > 80 {
		return text[:77] + "..."
	}
	return text
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", args[0])
	}
	return id, nil
}

func (s *Shell) handlePost(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: post <id>")
	if err != nil {
		return err
	}

	post, err := s.svc.Publications.Get(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("no post with id %d", id)
		}
		return err
	}

	fmt.Fprintf(s.out, "#%d by @%s (%s)\n", post.ID, post.Author.Username, post.Type)
	if post.Description != "" {
		fmt.Fprintln(s.out, post.Description)
	}
	for _, tag := range post.Tags {
		fmt.Fprintf(s.out, "  #%s", tag.Name)
	}
	if len(post.Tags) > 0 {
		fmt.Fprintln(s.out)
	}
	fmt.Fprintf(s.out, "%d hearts, %d comments\n", post.HeartsCount, post.CommentsCount)

	comments, err := s.svc.Comments.List(ctx, id)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		fmt.Fprintf(s.out, "  @%s: %s\n", comment.Author.Username, comment.Text)
		for _, reply := range comment.Replies {
			fmt.Fprintf(s.out, "    @%s: %s\n", reply.Author.Username, reply.Text)
		}
	}
	return nil
}

func (s *Shell) handleHeart(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: heart <id>")
	if err != nil {
		return err
	}
	return s.svc.Publications.ToggleHeart(ctx, id)
}

func (s *Shell) handleSave(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: save <id>")
	if err != nil {
		return err
	}
	return s.svc.Users.ToggleSave(ctx, id)
}

func (s *Shell) handleDelete(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: delete <id>")
	if err != nil {
		return err
	}
	if err := s.svc.Publications.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Deleted.")
	return nil
}

func (s *Shell) handleComment(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New(`usage: comment <post-id> "<text>"`)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad id %q", args[0])
	}

	if _, err := s.svc.Comments.Create(ctx, id, models.CreateComment{Text: args[1]}); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Comment posted.")
	return nil
}

func (s *Shell) handleProfile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: profile <username>")
	}
	user, err := s.svc.Directory.ByUsername(ctx, args[0])
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("no user named %q", args[0])
		}
		return err
	}

	fmt.Fprintf(s.out, "@%s (id %d, role %s)\n", user.Username, user.UserID, user.Role)
	if user.DisplayName != "" {
		fmt.Fprintln(s.out, user.DisplayName)
	}
	return nil
}

func (s *Shell) handleFollow(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: follow <user-id>")
	if err != nil {
		return err
	}
	return s.svc.Users.ToggleFollow(ctx, id)
}

func (s *Shell) handleNotifications(ctx context.Context, args []string) error {
	pageIndex := 0
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 0 {
			return fmt.Errorf("bad page %q", args[0])
		}
		pageIndex = parsed
	} else if len(args) > 1 {
		return errors.New("usage: notifications [page]")
	}

	page, err := s.svc.Notifications.List(ctx, api.Pageable{Page: pageIndex, Size: 20})
	if err != nil {
		return err
	}
	if len(page.Content) == 0 {
		fmt.Fprintln(s.out, "No notifications.")
		return nil
	}

	for _, n := range page.Content {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s #%d @%s %s: %s\n", marker, n.ID, n.Actor.Username, n.Type, n.Message)
	}
	return nil
}

func (s *Shell) handleRead(ctx context.Context, args []string) error {
	id, err := parseID(args, "usage: read <notification-id>")
	if err != nil {
		return err
	}
	if err := s.svc.Notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	if s.svc.Poller != nil {
		s.svc.Poller.MarkRead()
	}
	return nil
}
