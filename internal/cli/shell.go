// Package cli is the interactive terminal front end: a line-oriented shell
// over the feed, bookmark and account use cases.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"

	"newsclient/internal/domain/entity"
	"newsclient/internal/infra/reader"
	"newsclient/internal/usecase/account"
	"newsclient/internal/usecase/bookmark"
	"newsclient/internal/usecase/feed"
	"newsclient/internal/usecase/session"
)

// Messages shown for the feed's terminal states.
const (
	MsgNoArticles   = "No news articles found."
	MsgEndOfFeed    = "You've reached the end"
	MsgNoBookmarks  = "No bookmarks yet"
	MsgLoginToSave  = "Please login: You need to be logged in to bookmark articles"
	defaultWidth    = 80
	defaultPrompt   = "news"
	readerFallback  = "Article reader is disabled"
	promptSeparator = "> "
)

// ArticleReader extracts the readable text of an article page.
type ArticleReader interface {
	Read(ctx context.Context, url string) (*reader.Article, error)
}

// Deps are the use cases the shell drives.
type Deps struct {
	Feed      *feed.Controller
	Bookmarks *bookmark.Sync
	Accounts  *account.Service
	Session   *session.Session
	// Reader may be nil when full-article reading is disabled.
	Reader   ArticleReader
	Language entity.Language
	Width    int
}

// Shell reads commands from in and writes rendered output to out.
type Shell struct {
	deps Deps
	lang entity.Language
	in   *bufio.Scanner
	out  io.Writer
	st   styles

	// shown holds the render keys of feed cards already printed.
	shown map[string]bool
	// saved is the list printed by the last 'bookmarks' command.
	saved []entity.Article

	mu     sync.Mutex
	header session.Snapshot
}

// New creates a shell.
func New(deps Deps, in io.Reader, out io.Writer) *Shell {
	if deps.Width <= 0 {
		deps.Width = defaultWidth
	}
	if !deps.Language.Valid() {
		deps.Language = entity.LanguageEnglish
	}
	s := &Shell{
		deps:  deps,
		lang:  deps.Language,
		in:    bufio.NewScanner(in),
		out:   out,
		st:    newStyles(out, deps.Width),
		shown: make(map[string]bool),
	}
	deps.Session.Subscribe(func(snap session.Snapshot) {
		s.mu.Lock()
		s.header = snap
		s.mu.Unlock()
	})
	return s
}

// Run bootstraps the session, shows the first feed page and then executes
// commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	s.bootstrap(ctx)
	s.println(s.st.heading.Render("newsclient") + s.st.hint.Render("  type 'help' for commands"))
	s.Execute(ctx, "feed")

	for {
		fmt.Fprint(s.out, s.prompt())
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if quit := s.Execute(ctx, s.in.Text()); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// RunOnce bootstraps the session and executes a single command line.
func (s *Shell) RunOnce(ctx context.Context, line string) {
	s.bootstrap(ctx)
	s.Execute(ctx, line)
}

// Execute runs one command line and reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		s.help()
	case "feed":
		s.cmdFeed(ctx, args)
	case "lang":
		if len(args) != 1 {
			s.fail("usage: lang en|np")
			return false
		}
		s.cmdFeed(ctx, args)
	case "more":
		s.cmdMore(ctx)
	case "retry":
		s.cmdRetry(ctx)
	case "bookmark":
		s.cmdToggle(ctx, args, false)
	case "unbookmark":
		s.cmdToggle(ctx, args, true)
	case "bookmarks":
		s.cmdBookmarks(ctx)
	case "count":
		s.cmdCount(ctx)
	case "read":
		s.cmdRead(ctx, args)
	case "login":
		s.cmdLogin(ctx, args)
	case "signup":
		s.cmdSignup(ctx, args)
	case "logout":
		s.cmdLogout(ctx)
	case "status":
		s.cmdStatus(ctx)
	case "forgot":
		s.cmdForgot(ctx, args)
	case "reset":
		s.cmdReset(ctx, args)
	case "passwd":
		s.cmdPasswd(ctx)
	case "delete-account":
		s.cmdDeleteAccount(ctx)
	default:
		s.fail(fmt.Sprintf("Unknown command %q. Type 'help' for the list of commands.", name))
	}
	return false
}

// Language is the language the feed is currently shown in.
func (s *Shell) Language() entity.Language {
	return s.lang
}

func (s *Shell) bootstrap(ctx context.Context) {
	if err := s.deps.Session.Bootstrap(ctx); err != nil {
		slog.Warn("session bootstrap failed", slog.Any("error", err))
		return
	}
	s.syncBookmarks(ctx)
}

// syncBookmarks refreshes the local bookmark set so cards show their marks.
func (s *Shell) syncBookmarks(ctx context.Context) {
	s.deps.Bookmarks.Clear()
	s.saved = nil
	if !s.deps.Session.IsAuthenticated() {
		return
	}
	if _, err := s.deps.Bookmarks.ListAll(ctx); err != nil {
		slog.Warn("failed to load bookmarks", slog.Any("error", err))
	}
}

func (s *Shell) prompt() string {
	s.mu.Lock()
	snap := s.header
	s.mu.Unlock()

	p := defaultPrompt + " [" + string(s.lang) + "]"
	if snap.Authenticated && snap.User != nil {
		who, _ := lo.Coalesce(snap.User.Name, snap.User.Username)
		p += fmt.Sprintf(" %s ★%d", who, snap.BookmarkCount)
	}
	return p + promptSeparator
}

// ask reads one line of input for a missing argument.
func (s *Shell) ask(label string) (string, bool) {
	fmt.Fprint(s.out, label+": ")
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// argOrAsk returns args[i] when present, otherwise prompts for it.
func (s *Shell) argOrAsk(args []string, i int, label string) (string, bool) {
	if i < len(args) {
		return args[i], true
	}
	return s.ask(label)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) ok(msg string) {
	s.println(s.st.success.Render(msg))
}

func (s *Shell) fail(msg string) {
	s.println(s.st.failure.Render(msg))
}

func (s *Shell) hint(msg string) {
	s.println(s.st.hint.Render(msg))
}

// describe turns an error into the text shown to the user.
func describe(err error) string {
	var (
		bErr    *bookmark.BookmarkError
		aErr    *account.AccountError
		httpErr *entity.HTTPError
		netErr  *entity.NetworkError
		decErr  *entity.DecodeError
	)
	switch {
	case errors.As(err, &bErr):
		return bErr.Message
	case errors.As(err, &aErr):
		return aErr.Message
	case errors.As(err, &httpErr) && httpErr.Message != "":
		return httpErr.Message
	case errors.As(err, &httpErr):
		return fmt.Sprintf("the server answered %d", httpErr.StatusCode)
	case errors.As(err, &netErr):
		return "unable to reach the news server"
	case errors.As(err, &decErr):
		return "the server sent an unexpected response"
	default:
		return err.Error()
	}
}

func (s *Shell) help() {
	s.println(s.st.heading.Render("Commands"))
	for _, line := range []string{
		"feed [en|np]             load the first page of news",
		"more                     load the next page",
		"lang en|np               switch the feed language",
		"retry                    repeat the last failed load",
		"bookmark N / unbookmark N  add or remove article N",
		"unbookmark bN            remove bookmark N of the 'bookmarks' list",
		"bookmarks                list your bookmarks",
		"count                    show your bookmark count",
		"read N                   show the full text of article N",
		"login / signup / logout  manage your session",
		"status                   show who is logged in",
		"forgot / reset           password reset by email",
		"passwd                   change your password",
		"delete-account           delete your account",
		"quit                     leave",
	} {
		s.println("  " + line)
	}
}
