package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"newsclient/internal/domain/entity"
	"newsclient/internal/usecase/bookmark"
)

func (s *Shell) cmdFeed(ctx context.Context, args []string) {
	lang := s.lang
	if len(args) > 0 {
		parsed, err := entity.ParseLanguage(args[0])
		if err != nil {
			s.fail(fmt.Sprintf("Unknown language %q, use en or np", args[0]))
			return
		}
		lang = parsed
	}
	s.lang = lang
	s.hint("Loading news...")
	if err := s.deps.Feed.Load(ctx, lang); err != nil {
		s.loadFailed(err)
		return
	}
	s.renderFeed(true)
}

func (s *Shell) cmdMore(ctx context.Context) {
	st := s.deps.Feed.State()
	switch {
	case !st.Loaded:
		s.hint("Nothing loaded yet, try 'feed'")
		return
	case !st.HasMore:
		s.hint(MsgEndOfFeed)
		return
	}
	if err := s.deps.Feed.LoadMore(ctx); err != nil {
		s.loadFailed(err)
		return
	}
	s.renderFeed(false)
}

func (s *Shell) cmdRetry(ctx context.Context) {
	st := s.deps.Feed.State()
	if st.Err == nil {
		s.hint("Nothing to retry")
		return
	}
	if err := s.deps.Feed.Retry(ctx); err != nil {
		s.loadFailed(err)
		return
	}
	// a retried LoadMore appends; anything else replaced the list
	appended := st.Loaded && s.deps.Feed.State().CurrentPage > st.CurrentPage
	s.renderFeed(!appended)
}

func (s *Shell) loadFailed(err error) {
	s.fail("Error loading news: " + describe(err))
	s.hint("Type 'retry' to try again")
}

// renderFeed prints the cards not printed yet and the footer. fresh forgets
// what was printed before, for a list that was replaced.
func (s *Shell) renderFeed(fresh bool) {
	if fresh {
		clear(s.shown)
	}
	st := s.deps.Feed.State()
	if st.Empty() {
		s.hint(MsgNoArticles)
		return
	}
	for i, it := range st.Items() {
		if s.shown[it.Key] {
			continue
		}
		s.shown[it.Key] = true
		s.println(s.st.card(strconv.Itoa(i+1), it.Article, s.deps.Bookmarks.IsBookmarked(it.Article.URL)))
	}
	if st.HasMore {
		s.hint(fmt.Sprintf("Page %d of %d. Type 'more' for the next page", st.CurrentPage, st.TotalPages))
		return
	}
	s.hint(MsgEndOfFeed)
}

// article resolves the first argument: N is a 1-based feed position and bN
// a position in the list printed by the last 'bookmarks' command.
func (s *Shell) article(args []string) (a entity.Article, fromList, ok bool) {
	raw, ok := s.argOrAsk(args, 0, "Article number")
	if !ok {
		return entity.Article{}, false, false
	}
	if rest, found := strings.CutPrefix(strings.ToLower(raw), "b"); found {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 || n > len(s.saved) {
			s.fail(fmt.Sprintf("No bookmark %q in the list. Type 'bookmarks' to list them", raw))
			return entity.Article{}, true, false
		}
		return s.saved[n-1], true, true
	}

	n, err := strconv.Atoi(raw)
	articles := s.deps.Feed.State().Articles
	if err != nil || n < 1 || n > len(articles) {
		s.fail(fmt.Sprintf("No article %q in the feed", raw))
		return entity.Article{}, false, false
	}
	return articles[n-1], false, true
}

func (s *Shell) cmdToggle(ctx context.Context, args []string, remove bool) {
	a, saved, ok := s.article(args)
	if !ok {
		return
	}
	if remove != s.deps.Bookmarks.IsBookmarked(a.URL) {
		if remove {
			s.hint("Not bookmarked")
		} else {
			s.hint("Already bookmarked")
		}
		return
	}

	err := s.deps.Bookmarks.Toggle(ctx, a, remove)
	switch {
	case errors.Is(err, entity.ErrAuthRequired):
		s.fail(MsgLoginToSave)
	case err != nil:
		prefix := "Error bookmarking article"
		if remove {
			prefix = "Error removing bookmark"
		}
		s.fail(prefix + ": " + describe(err))
	case remove && saved:
		s.ok("Bookmark removed")
		s.cmdBookmarks(ctx)
	case remove:
		s.ok("Bookmark removed")
	default:
		s.ok("Article bookmarked")
	}
}

func (s *Shell) cmdBookmarks(ctx context.Context) {
	ov, err := s.deps.Bookmarks.Overview(ctx)
	switch {
	case bookmark.IsAuthRequired(err):
		s.fail("Please login to see your bookmarks")
		return
	case err != nil:
		s.fail(describe(err))
		return
	}
	s.saved = ov.Articles
	s.println(s.st.heading.Render(fmt.Sprintf("Bookmarks (%d)", ov.Count)))
	if len(ov.Articles) == 0 {
		s.hint(MsgNoBookmarks)
		return
	}
	for i, a := range ov.Articles {
		s.println(s.st.card("b"+strconv.Itoa(i+1), a, true))
	}
	s.hint("Type 'unbookmark bN' to remove one")
}

func (s *Shell) cmdCount(ctx context.Context) {
	if !s.deps.Session.IsAuthenticated() {
		s.fail("Please login to see your bookmarks")
		return
	}
	s.deps.Session.Refresh(ctx)
	s.println(fmt.Sprintf("You have %d bookmarks", s.deps.Session.BookmarkCount()))
}

func (s *Shell) cmdRead(ctx context.Context, args []string) {
	if s.deps.Reader == nil {
		s.fail(readerFallback)
		return
	}
	a, _, ok := s.article(args)
	if !ok {
		return
	}
	s.hint("Fetching " + a.URL)
	full, err := s.deps.Reader.Read(ctx, a.URL)
	if err != nil {
		s.fail("Unable to read the article: " + err.Error())
		return
	}
	title := full.Title
	if title == "" {
		title = a.Title
	}
	s.println(s.st.heading.Render(title))
	if full.Byline != "" {
		s.println(s.st.meta.Render(full.Byline))
	}
	s.println(s.st.summary.Render(full.Text))
}

func (s *Shell) cmdLogin(ctx context.Context, args []string) {
	email, ok := s.argOrAsk(args, 0, "Email")
	if !ok {
		return
	}
	password, ok := s.argOrAsk(args, 1, "Password")
	if !ok {
		return
	}
	if _, err := s.deps.Accounts.Login(ctx, email, password); err != nil {
		s.fail(describe(err))
		return
	}
	s.syncBookmarks(ctx)
	s.ok("Login successful!")
}

func (s *Shell) cmdSignup(ctx context.Context, args []string) {
	name, ok := s.argOrAsk(args, 0, "Name")
	if !ok {
		return
	}
	email, ok := s.argOrAsk(args, 1, "Email")
	if !ok {
		return
	}
	password, ok := s.argOrAsk(args, 2, "Password")
	if !ok {
		return
	}
	if _, err := s.deps.Accounts.Signup(ctx, name, email, password); err != nil {
		s.fail(describe(err))
		return
	}
	s.syncBookmarks(ctx)
	s.ok("Sign up successful!")
}

func (s *Shell) cmdLogout(ctx context.Context) {
	if err := s.deps.Accounts.Logout(ctx); err != nil {
		s.fail(describe(err))
		return
	}
	s.syncBookmarks(ctx)
	s.ok("Logged out")
}

func (s *Shell) cmdStatus(ctx context.Context) {
	status, err := s.deps.Accounts.Status(ctx)
	if err != nil {
		s.fail(describe(err))
		return
	}
	if !status.Authenticated || status.User == nil {
		s.println("Not logged in")
		return
	}
	u := status.User
	who, _ := lo.Coalesce(u.Name, u.Username)
	s.println(fmt.Sprintf("Logged in as %s <%s>", who, u.Email))
}

func (s *Shell) cmdForgot(ctx context.Context, args []string) {
	email, ok := s.argOrAsk(args, 0, "Email")
	if !ok {
		return
	}
	if err := s.deps.Accounts.ForgotPassword(ctx, email); err != nil {
		s.fail(describe(err))
		return
	}
	s.ok("Password reset email sent")
	s.hint("Please check your email for instructions")
}

func (s *Shell) cmdReset(ctx context.Context, args []string) {
	token, ok := s.argOrAsk(args, 0, "Reset token")
	if !ok {
		return
	}
	password, ok := s.argOrAsk(args, 1, "New password")
	if !ok {
		return
	}
	if err := s.deps.Accounts.ResetPassword(ctx, token, password); err != nil {
		s.fail(describe(err))
		return
	}
	s.ok("Password reset successfully")
}

func (s *Shell) cmdPasswd(ctx context.Context) {
	current, ok := s.ask("Current password")
	if !ok {
		return
	}
	next, ok := s.ask("New password")
	if !ok {
		return
	}
	confirm, ok := s.ask("Confirm new password")
	if !ok {
		return
	}
	if err := s.deps.Accounts.ChangePassword(ctx, current, next, confirm); err != nil {
		s.fail(describe(err))
		return
	}
	s.ok("Password changed successfully")
}

func (s *Shell) cmdDeleteAccount(ctx context.Context) {
	answer, ok := s.ask("This permanently deletes your account. Type 'yes' to confirm")
	if !ok || !strings.EqualFold(answer, "yes") {
		s.hint("Cancelled")
		return
	}
	if err := s.deps.Accounts.DeleteAccount(ctx); err != nil {
		s.fail(describe(err))
		return
	}
	s.syncBookmarks(ctx)
	s.ok("Account deleted successfully")
}
