package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lienzo/lienzo-go/internal/api"
	"github.com/lienzo/lienzo-go/internal/feed"
	"github.com/lienzo/lienzo-go/internal/notify"
	"github.com/lienzo/lienzo-go/internal/session"
)

// errExit signals a clean shutdown requested from inside the shell.
var errExit = errors.New("exit requested")

// Services bundles everything the shell talks to. Directory is the cached
// profile lookup used for rendering; Users is the full service.
type Services struct {
	Session       *session.Manager
	Auth          *api.AuthService
	Publications  *api.PublicationService
	Users         *api.UserService
	Directory     api.UserDirectory
	Comments      *api.CommentService
	Notifications *api.NotificationService
	Reports       *api.ReportService
	Maps          *api.MapService
	Admin         *api.AdminService
	Loader        *feed.Loader
	Poller        *notify.Poller
}

// Shell is the interactive line-oriented client.
type Shell struct {
	rl  *readline.Instance
	out io.Writer
	svc Services
}

// NewShell wires a shell over an initialized readline instance.
func NewShell(rl *readline.Instance, svc Services) *Shell {
	if rl == nil {
		panic("cli: NewShell requires a readline instance")
	}
	return &Shell{rl: rl, out: rl.Stdout(), svc: svc}
}

// Run reads and executes commands until exit, EOF, or context cancellation.
func (s *Shell) Run(ctx context.Context) error {
	s.updatePrompt(ctx)
	fmt.Fprintln(s.out, `Welcome to Lienzo. Type "help" for the list of commands.`)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(s.out, `Use "exit" to leave.`)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := s.execute(ctx, parseArgs(line)); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			fmt.Fprintln(s.out, "Error:", err)
		}
		s.updatePrompt(ctx)
	}
}

// parseArgs splits a command line on spaces, honoring double quotes so tag
// names and post descriptions can contain spaces.
func parseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if inQuotes {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

func (s *Shell) execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("no command provided")
	}

	switch args[0] {
	case "login":
		return s.handleLogin(ctx, args[1:])
	case "login-token":
		return s.handleLoginToken(ctx, args[1:])
	case "register":
		return s.handleRegister(ctx, args[1:])
	case "logout":
		return s.handleLogout(ctx)
	case "whoami":
		return s.handleWhoami(ctx)
	case "forgot-password":
		return s.handleForgotPassword(ctx, args[1:])
	case "reset-password":
		return s.handleResetPassword(ctx, args[1:])
	case "feed":
		return s.handleFeed(ctx, args[1:])
	case "more":
		return s.handleMore(ctx)
	case "refresh":
		return s.handleRefresh(ctx)
	case "post":
		return s.handlePost(ctx, args[1:])
	case "new":
		return s.handleNew(ctx, args[1:])
	case "avatar":
		return s.handleAvatar(ctx, args[1:])
	case "heart":
		return s.handleHeart(ctx, args[1:])
	case "save":
		return s.handleSave(ctx, args[1:])
	case "delete":
		return s.handleDelete(ctx, args[1:])
	case "comment":
		return s.handleComment(ctx, args[1:])
	case "profile":
		return s.handleProfile(ctx, args[1:])
	case "follow":
		return s.handleFollow(ctx, args[1:])
	case "notifications":
		return s.handleNotifications(ctx, args[1:])
	case "read":
		return s.handleRead(ctx, args[1:])
	case "report":
		return s.handleReport(ctx, args[1:])
	case "places":
		return s.handlePlaces(ctx, args[1:])
	case "admin":
		return s.handleAdmin(ctx, args[1:])
	case "help":
		s.printHelp(args[1:])
		return nil
	case "exit", "quit":
		fmt.Fprintln(s.out, "Goodbye!")
		return errExit
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// updatePrompt reflects the logged-in user and unread badge in the prompt.
func (s *Shell) updatePrompt(ctx context.Context) {
	prompt := "lienzo> "
	if s.svc.Session != nil {
		if identity := s.svc.Session.Identity(ctx); identity.LoggedIn() {
			prompt = identity.Username
			if s.svc.Poller != nil {
				if unread := s.svc.Poller.Count(); unread > 0 {
					prompt = fmt.Sprintf("%s (%d)", prompt, unread)
				}
			}
			prompt += "> "
		}
	}
	s.rl.SetPrompt(prompt)
}

func (s *Shell) printHelp(args []string) {
	if len(args) > 0 {
		if help, ok := commandHelp[args[0]]; ok {
			fmt.Fprintln(s.out, help)
		} else {
			fmt.Fprintf(s.out, "Unknown command: %s\n", args[0])
		}
		return
	}

	fmt.Fprintln(s.out, "Available commands:")
	for _, cmd := range commandOrder {
		fmt.Fprintf(s.out, "  %s\n", cmd)
	}
	fmt.Fprintln(s.out, `
Use "help <command>" for details.`)
}

var commandOrder = []string{
	"login", "login-token", "register", "logout", "whoami",
	"forgot-password", "reset-password",
	"feed", "more", "refresh",
	"post", "new", "heart", "save", "delete", "comment",
	"profile", "follow", "avatar",
	"notifications", "read",
	"report", "places", "admin",
	"help", "exit",
}

var commandHelp = map[string]string{
	"login": `Syntax: login <username>
Description: Logs in with the given username; the password is read without echo.`,

	"login-token": `Syntax: login-token <token>
Description: Adopts a bearer token obtained out of band, such as an OAuth redirect.`,

	"register": `Syntax: register <username> <email>
Description: Creates an account and logs in; the password is read without echo.`,

	"logout": `Syntax: logout
Description: Clears the stored session.`,

	"whoami": `Syntax: whoami
Description: Shows the logged-in identity and token expiry.`,

	"forgot-password": `Syntax: forgot-password <email>
Description: Requests a password reset email.`,

	"reset-password": `Syntax: reset-password <reset-token>
Description: Sets a new password using an emailed reset token; the password is read without echo.`,

	"feed": `Syntax: feed [--type PHOTOGRAPHY|ILLUSTRATION|TEXT] [--user <id>] [--following] [--saved] [--tag <name>] [--sort <field,dir>]
Description: Switches the feed to the given filter and shows page 0.
Scope precedence when several are given: tag, saved, following, user, global.
Example: feed --tag "street photography" --sort createdAt,desc`,

	"more": `Syntax: more
Description: Loads the next page of the current feed.`,

	"refresh": `Syntax: refresh
Description: Refetches the current feed from page 0.`,

	"post": `Syntax: post <id>
Description: Shows one publication with its comments.`,

	"heart": `Syntax: heart <id>
Description: Likes or unlikes a publication.`,

	"save": `Syntax: save <id>
Description: Saves or unsaves a publication to your collection.`,

	"delete": `Syntax: delete <id>
Description: Deletes one of your publications.`,

	"comment": `Syntax: comment <post-id> <text>
Description: Comments on a publication. Quote the text if it contains spaces.
Example: comment 42 "lovely light"`,

	"profile": `Syntax: profile <username>
Description: Shows a user's public profile.`,

	"follow": `Syntax: follow <user-id>
Description: Follows or unfollows a user.`,

	"notifications": `Syntax: notifications [page]
Description: Lists your notifications, newest first.`,

	"read": `Syntax: read <notification-id>
Description: Marks a notification as read.`,

	"new": `Syntax: new <type> <description> [--image <file>]... [--tag <name>]... [--warning] [--ai]
Description: Publishes a new post with up to four images.
Example: new photography "golden hour at the pier" --image pier.jpg --tag sunset`,

	"avatar": `Syntax: avatar <file>
Description: Uploads a new profile picture.`,

	"report": `Syntax: report <post-id> <reason> [details]
Description: Flags a publication to the moderators.
Reasons: spam, inappropriate_content, harassment, copyright, unmarked_ai, other.`,

	"places": `Syntax: places <query>
Description: Searches geotag places by name.`,

	"admin": `Syntax: admin reports|appeals|tasks [args]
Description: Moderation queues, admin role required.
  admin reports [status]            list reports
  admin resolve <id> <status>       resolve a report
  admin appeals                     list appeals
  admin appeal <id> <status>        resolve an appeal
  admin tasks place|ai              list failed background tasks
  admin retry place|ai <id>         retry a failed task
  admin dismiss place|ai <id>       dismiss a failed task`,

	"exit": `Syntax: exit
Description: Leaves the shell.`,
}
