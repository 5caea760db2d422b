package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsclient/internal/cli"
	"newsclient/internal/domain/entity"
	"newsclient/internal/infra/api"
	"newsclient/internal/infra/cache"
	"newsclient/internal/infra/reader"
	"newsclient/internal/resilience/retry"
	"newsclient/internal/testserver"
	"newsclient/internal/usecase/account"
	"newsclient/internal/usecase/bookmark"
	"newsclient/internal/usecase/feed"
	"newsclient/internal/usecase/session"
	"newsclient/tests/fixtures"
)

const (
	testEmail    = "reader@example.com"
	testPassword = "secret"
	newsPath     = testserver.APIPrefix + "/news/"
)

/* ───────── stubs ───────── */

type stubReader struct {
	article *reader.Article
	err     error
	urls    []string
}

func (s *stubReader) Read(_ context.Context, url string) (*reader.Article, error) {
	s.urls = append(s.urls, url)
	return s.article, s.err
}

/* ───────── harness ───────── */

type harness struct {
	shell *cli.Shell
	srv   *testserver.Server
	sess  *session.Session
	out   *bytes.Buffer
}

func newHarness(t *testing.T, input string, articleReader cli.ArticleReader) *harness {
	t.Helper()
	srv := testserver.New()
	ts := testserver.Start(srv)
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Config{BaseURL: ts.URL + testserver.APIPrefix, Timeout: 5 * time.Second})
	require.NoError(t, err)

	loader := feed.NewPageLoader(client, cache.NewMemoryPageCache(), feed.LoaderConfig{
		Retry: retry.WithRetries(1, time.Millisecond),
	})
	sess := session.New(client)
	out := &bytes.Buffer{}

	deps := cli.Deps{
		Feed:      feed.NewController(loader, 0),
		Bookmarks: bookmark.NewSync(client, sess),
		Accounts:  account.NewService(client, sess),
		Session:   sess,
		Language:  entity.LanguageEnglish,
	}
	if articleReader != nil {
		deps.Reader = articleReader
	}
	return &harness{
		shell: cli.New(deps, strings.NewReader(input), out),
		srv:   srv,
		sess:  sess,
		out:   out,
	}
}

// run executes lines in order and returns everything printed.
func (h *harness) run(t *testing.T, lines ...string) string {
	t.Helper()
	for _, line := range lines {
		h.shell.Execute(context.Background(), line)
	}
	return h.out.String()
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.srv.AddUser(testEmail, testPassword, "Reader")
	out := h.run(t, "login "+testEmail+" "+testPassword)
	require.Contains(t, out, "Login successful!")
	h.out.Reset()
}

/* ───────── feed ───────── */

func TestShell_Run_PagesThroughFeed(t *testing.T) {
	h := newHarness(t, "more\nmore\nquit\n", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 45)...)

	require.NoError(t, h.shell.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Loading news...")
	assert.Contains(t, out, "[1] EN headline 1")
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "[45] EN headline 45")
	assert.Contains(t, out, "Summary of article 45.")
	assert.Equal(t, 2, strings.Count(out, cli.MsgEndOfFeed))
	assert.Contains(t, out, "news [en]> ")
}

func TestShell_Run_EndOfInput(t *testing.T) {
	h := newHarness(t, "", nil)

	require.NoError(t, h.shell.Run(context.Background()))
	assert.Contains(t, h.out.String(), cli.MsgNoArticles)
}

func TestShell_Feed_SwitchLanguage(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 2)...)
	h.srv.SeedArticles(entity.LanguageNepali, fixtures.Articles(entity.LanguageNepali, 3)...)

	out := h.run(t, "feed", "lang np")

	assert.Contains(t, out, "[2] EN headline 2")
	assert.Contains(t, out, "[3] NP headline 3")
	assert.Equal(t, entity.LanguageNepali, h.shell.Language())
}

func TestShell_Feed_UnknownLanguage(t *testing.T) {
	h := newHarness(t, "", nil)

	out := h.run(t, "feed fr")

	assert.Contains(t, out, `Unknown language "fr"`)
	assert.Zero(t, h.srv.Hits(newsPath))
}

func TestShell_Feed_FailureThenRetry(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 3)...)
	// one attempt plus one automatic retry
	h.srv.FailNext(newsPath, http.StatusInternalServerError, "Service down")
	h.srv.FailNext(newsPath, http.StatusInternalServerError, "Service down")

	out := h.run(t, "feed")
	assert.Contains(t, out, "Error loading news: Service down")
	assert.NotContains(t, out, "EN headline 1")
	assert.Equal(t, 2, h.srv.Hits(newsPath))

	out = h.run(t, "retry")
	assert.Contains(t, out, "[3] EN headline 3")
	assert.Contains(t, out, cli.MsgEndOfFeed)
}

func TestShell_More_FailureThenRetry(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 31)...)

	h.run(t, "feed")
	h.srv.FailNext(newsPath, http.StatusBadGateway, "")
	h.srv.FailNext(newsPath, http.StatusBadGateway, "")
	out := h.run(t, "more")
	assert.Contains(t, out, "Error loading news: the server answered 502")

	h.out.Reset()
	out = h.run(t, "retry")
	assert.Contains(t, out, "[31] EN headline 31")
	assert.NotContains(t, out, "[30] EN headline 30")
}

func TestShell_More_RepeatedURLStillShown(t *testing.T) {
	h := newHarness(t, "", nil)
	articles := fixtures.Articles(entity.LanguageEnglish, 30)
	repeat := articles[0]
	repeat.Title = "EN headline 1 again"
	h.srv.SeedArticles(entity.LanguageEnglish, append(articles, repeat)...)

	h.run(t, "feed")
	h.out.Reset()
	out := h.run(t, "more")

	assert.Contains(t, out, "[31] EN headline 1 again")
	assert.NotContains(t, out, "[1] ")
	assert.NotContains(t, out, "[30] EN headline 30")
	assert.Contains(t, out, cli.MsgEndOfFeed)
}

func TestShell_Retry_NothingFailed(t *testing.T) {
	h := newHarness(t, "", nil)

	out := h.run(t, "retry")

	assert.Contains(t, out, "Nothing to retry")
	assert.Zero(t, h.srv.Hits(newsPath))
}

/* ───────── bookmarks ───────── */

func TestShell_Bookmark_RequiresLogin(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 2)...)

	out := h.run(t, "feed", "bookmark 1", "bookmarks")

	assert.Contains(t, out, cli.MsgLoginToSave)
	assert.Contains(t, out, "Please login to see your bookmarks")
	assert.Zero(t, h.srv.Hits(testserver.APIPrefix+"/bookmarks/add/"))
}

func TestShell_Bookmark_AddListRemove(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 3)...)
	h.login(t)

	out := h.run(t, "feed", "bookmark 2")
	assert.Contains(t, out, "Article bookmarked")
	require.Len(t, h.srv.Bookmarks(testEmail), 1)
	assert.Equal(t, fixtures.ArticleURL(entity.LanguageEnglish, 2), h.srv.Bookmarks(testEmail)[0].ArticleURL)
	assert.Equal(t, 1, h.sess.BookmarkCount())

	h.out.Reset()
	out = h.run(t, "bookmarks")
	assert.Contains(t, out, "Bookmarks (1)")
	assert.Contains(t, out, "EN headline 2 ★")

	out = h.run(t, "bookmark 2")
	assert.Contains(t, out, "Already bookmarked")

	out = h.run(t, "unbookmark 2", "count")
	assert.Contains(t, out, "Bookmark removed")
	assert.Contains(t, out, "You have 0 bookmarks")
	assert.Empty(t, h.srv.Bookmarks(testEmail))
}

func TestShell_Bookmark_ServerFailure(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 1)...)
	h.login(t)
	h.srv.FailNext(testserver.APIPrefix+"/bookmarks/add/", http.StatusInternalServerError, "Database unavailable")

	out := h.run(t, "feed", "bookmark 1")

	assert.Contains(t, out, "Error bookmarking article: Database unavailable")
	assert.Empty(t, h.srv.Bookmarks(testEmail))
}

func TestShell_Bookmark_BadIndex(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 1)...)

	out := h.run(t, "feed", "bookmark 7", "bookmark x")

	assert.Contains(t, out, `No article "7" in the feed`)
	assert.Contains(t, out, `No article "x" in the feed`)
}

func TestShell_Unbookmark_FromBookmarksList(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.SeedArticles(entity.LanguageNepali, fixtures.Articles(entity.LanguageNepali, 2)...)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 2)...)
	h.login(t)

	out := h.run(t, "feed np", "bookmark 2", "feed en")
	require.Contains(t, out, "Article bookmarked")
	require.Len(t, h.srv.Bookmarks(testEmail), 1)

	h.out.Reset()
	out = h.run(t, "bookmarks")
	assert.Contains(t, out, "[b1] NP headline 2 ★")

	h.out.Reset()
	out = h.run(t, "unbookmark b1")
	assert.Contains(t, out, "Bookmark removed")
	assert.Contains(t, out, "Bookmarks (0)")
	assert.Contains(t, out, cli.MsgNoBookmarks)
	assert.Empty(t, h.srv.Bookmarks(testEmail))
	assert.Zero(t, h.sess.BookmarkCount())
}

func TestShell_Unbookmark_UnknownListEntry(t *testing.T) {
	h := newHarness(t, "", nil)
	h.login(t)

	out := h.run(t, "unbookmark b1")

	assert.Contains(t, out, `No bookmark "b1" in the list`)
	assert.Empty(t, h.srv.Bookmarks(testEmail))
}

func TestShell_Bookmarks_Empty(t *testing.T) {
	h := newHarness(t, "", nil)
	h.login(t)

	out := h.run(t, "bookmarks")

	assert.Contains(t, out, "Bookmarks (0)")
	assert.Contains(t, out, cli.MsgNoBookmarks)
}

/* ───────── reading ───────── */

func TestShell_Read(t *testing.T) {
	stub := &stubReader{article: &reader.Article{Title: "Full story", Byline: "A. Writer", Text: "Body text."}}
	h := newHarness(t, "", stub)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 2)...)

	out := h.run(t, "feed", "read 2")

	assert.Equal(t, []string{fixtures.ArticleURL(entity.LanguageEnglish, 2)}, stub.urls)
	assert.Contains(t, out, "Full story")
	assert.Contains(t, out, "A. Writer")
	assert.Contains(t, out, "Body text.")
}

func TestShell_Read_Failure(t *testing.T) {
	stub := &stubReader{err: errors.New("boom")}
	h := newHarness(t, "", stub)
	h.srv.SeedArticles(entity.LanguageEnglish, fixtures.Articles(entity.LanguageEnglish, 1)...)

	out := h.run(t, "feed", "read 1")

	assert.Contains(t, out, "Unable to read the article: boom")
}

func TestShell_Read_Disabled(t *testing.T) {
	h := newHarness(t, "", nil)

	out := h.run(t, "read 1")

	assert.Contains(t, out, "Article reader is disabled")
}

/* ───────── accounts ───────── */

func TestShell_Login_PromptsForMissingArgs(t *testing.T) {
	h := newHarness(t, "login\n"+testEmail+"\n"+testPassword+"\nquit\n", nil)
	h.srv.AddUser(testEmail, testPassword, "Reader")

	require.NoError(t, h.shell.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Login successful!")
	assert.True(t, h.sess.IsAuthenticated())
}

func TestShell_Login_ShowsUserInPrompt(t *testing.T) {
	h := newHarness(t, "login "+testEmail+" "+testPassword+"\nquit\n", nil)
	h.srv.AddUser(testEmail, testPassword, "Reader")

	require.NoError(t, h.shell.Run(context.Background()))

	assert.Contains(t, h.out.String(), "news [en] Reader ★0> ")
}

func TestShell_Login_InvalidCredentials(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.AddUser(testEmail, testPassword, "Reader")

	out := h.run(t, "login "+testEmail+" wrong")

	assert.Contains(t, out, "Invalid credentials")
	assert.False(t, h.sess.IsAuthenticated())
}

func TestShell_SignupStatusLogout(t *testing.T) {
	h := newHarness(t, "", nil)

	out := h.run(t, "signup Newcomer new@example.com pw", "status")
	assert.Contains(t, out, "Sign up successful!")
	assert.Contains(t, out, "Logged in as Newcomer <new@example.com>")

	h.out.Reset()
	out = h.run(t, "logout", "status")
	assert.Contains(t, out, "Logged out")
	assert.Contains(t, out, "Not logged in")
	assert.False(t, h.sess.IsAuthenticated())
}

func TestShell_ForgotAndReset(t *testing.T) {
	h := newHarness(t, "", nil)
	h.srv.AddUser(testEmail, testPassword, "Reader")

	out := h.run(t, "forgot "+testEmail)
	assert.Contains(t, out, "Password reset email sent")
	assert.Contains(t, out, "Please check your email for instructions")

	token := h.srv.ResetToken(testEmail)
	require.NotEmpty(t, token)

	out = h.run(t, "reset "+token+" fresh", "login "+testEmail+" fresh")
	assert.Contains(t, out, "Password reset successfully")
	assert.Contains(t, out, "Login successful!")
}

func TestShell_Reset_InvalidToken(t *testing.T) {
	h := newHarness(t, "", nil)

	out := h.run(t, "reset nope fresh")

	assert.Contains(t, out, "Invalid or expired token")
}

func TestShell_Passwd_Mismatch(t *testing.T) {
	h := newHarness(t, testPassword+"\nnext\nother\n", nil)
	h.login(t)

	out := h.run(t, "passwd")

	assert.Contains(t, out, account.MsgPasswordMismatch)
	assert.Zero(t, h.srv.Hits(testserver.APIPrefix+"/accounts/change-password/"))
}

func TestShell_Passwd(t *testing.T) {
	h := newHarness(t, testPassword+"\nnext\nnext\n", nil)
	h.login(t)

	out := h.run(t, "passwd", "logout", "login "+testEmail+" next")

	assert.Contains(t, out, "Password changed successfully")
	assert.Contains(t, out, "Login successful!")
}

func TestShell_DeleteAccount(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    string
		deleted bool
	}{
		{name: "confirmed", answer: "yes", want: "Account deleted successfully", deleted: true},
		{name: "cancelled", answer: "no", want: "Cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.answer+"\n", nil)
			h.login(t)

			out := h.run(t, "delete-account")

			assert.Contains(t, out, tt.want)
			assert.Equal(t, !tt.deleted, h.sess.IsAuthenticated())
		})
	}
}

/* ───────── dispatch ───────── */

func TestShell_Execute(t *testing.T) {
	tests := []struct {
		line     string
		wantQuit bool
		want     string
	}{
		{line: "quit", wantQuit: true},
		{line: "EXIT", wantQuit: true},
		{line: "   "},
		{line: "help", want: "delete-account"},
		{line: "frobnicate", want: `Unknown command "frobnicate"`},
		{line: "lang", want: "usage: lang en|np"},
		{line: "more", want: "Nothing loaded yet"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h := newHarness(t, "", nil)

			quit := h.shell.Execute(context.Background(), tt.line)

			assert.Equal(t, tt.wantQuit, quit)
			if tt.want != "" {
				assert.Contains(t, h.out.String(), tt.want)
			}
		})
	}
}
