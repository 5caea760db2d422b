// Package testserver provides an in-process fake of the news API for tests
// and local demos. It implements the news, bookmark and account endpoints
// with in-memory sessions, Django-style CSRF cookies and failure injection.
package testserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/tracing"
)

const (
	// SessionCookieName holds the session ID.
	SessionCookieName = "sessionid"
	// CSRFCookieName holds the CSRF token.
	CSRFCookieName = "csrftoken"
	// CSRFHeader must echo the CSRF cookie on unsafe requests of signed-in users.
	CSRFHeader = "X-CSRFToken"
	// APIPrefix is where the endpoints are mounted.
	APIPrefix = "/api"
)

type account struct {
	user     entity.User
	password string
}

type injected struct {
	status int
	body   string
}

// Server is the fake news API. It is safe for concurrent use.
type Server struct {
	mu          sync.Mutex
	articles    map[entity.Language][]entity.Article
	accounts    map[string]*account // by username
	sessions    map[string]string   // session ID -> username
	bookmarks   map[string][]entity.BookmarkRecord
	resetTokens map[string]string // token -> username
	injections  map[string][]injected
	hits        map[string]int
	nextUserID  int64

	router chi.Router
}

// New creates an empty server.
func New() *Server {
	s := &Server{
		articles:    make(map[entity.Language][]entity.Article),
		accounts:    make(map[string]*account),
		sessions:    make(map[string]string),
		bookmarks:   make(map[string][]entity.BookmarkRecord),
		resetTokens: make(map[string]string),
		injections:  make(map[string][]injected),
		hits:        make(map[string]int),
	}
	s.setupRoutes()
	return s
}

// Start runs the server on a random local port. The caller must Close it.
// The API root is the returned server's URL + APIPrefix.
func Start(s *Server) *httptest.Server {
	return httptest.NewServer(s.Handler())
}

// Handler returns the HTTP handler serving the API under APIPrefix.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(tracing.Middleware)
	r.Use(s.countHits)
	r.Use(s.injectFailures)
	r.Use(s.csrf)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/news/", s.handleNews)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/bookmarks/", s.handleListBookmarks)
			r.Get("/bookmarks/count/", s.handleBookmarkCount)
			r.Post("/bookmarks/add/", s.handleAddBookmark)
			r.Post("/bookmarks/remove/", s.handleRemoveBookmark)
			r.Post("/accounts/change-password/", s.handleChangePassword)
			r.Post("/accounts/delete/", s.handleDeleteAccount)
		})

		r.Post("/accounts/login/", s.handleLogin)
		r.Post("/accounts/signup/", s.handleSignup)
		r.Post("/accounts/logout/", s.handleLogout)
		r.Get("/accounts/status/", s.handleStatus)
		r.Post("/accounts/forgot-password/", s.handleForgotPassword)
		r.Post("/accounts/reset-password/", s.handleResetPassword)
	})

	s.router = r
}

// SeedArticles appends articles to the news list for lang, in order.
func (s *Server) SeedArticles(lang entity.Language, articles ...entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[lang] = append(s.articles[lang], articles...)
}

// AddUser registers an account directly and returns its profile.
func (s *Server) AddUser(username, password, name string) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password, name)
}

func (s *Server) addUserLocked(username, password, name string) entity.User {
	s.nextUserID++
	u := entity.User{ID: s.nextUserID, Username: username, Email: username, Name: name}
	s.accounts[username] = &account{user: u, password: password}
	return u
}

// Bookmarks returns a copy of the records stored for username.
func (s *Server) Bookmarks(username string) []entity.BookmarkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.BookmarkRecord(nil), s.bookmarks[username]...)
}

// ResetToken returns the pending password reset token for username, as if read from the email.
func (s *Server) ResetToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, u := range s.resetTokens {
		if u == username {
			return token
		}
	}
	return ""
}

// FailNext makes the next request to path (e.g. "/api/news/") answer with
// status and a {"message": ...} body. An empty message produces an empty JSON object.
func (s *Server) FailNext(path string, status int, message string) {
	body := "{}"
	if message != "" {
		data, _ := json.Marshal(map[string]string{"message": message})
		body = string(data)
	}
	s.RespondNext(path, status, body)
}

// RespondNext makes the next request to path answer with the raw body.
// Injections queue up and are consumed in order.
func (s *Server) RespondNext(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injections[path] = append(s.injections[path], injected{status: status, body: body})
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		queue := s.injections[r.URL.Path]
		var inj *injected
		if len(queue) > 0 {
			inj = &queue[0]
			s.injections[r.URL.Path] = queue[1:]
		}
		s.mu.Unlock()

		if inj == nil {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(inj.status)
		_, _ = w.Write([]byte(inj.body))
	})
}

// csrf issues a csrftoken cookie to clients that lack one and, for unsafe
// methods on an authenticated session, requires X-CSRFToken to match it.
func (s *Server) csrf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			setCookie(w, CSRFCookieName, newToken())
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if _, ok := s.sessionUser(r); ok {
				if cookie == nil || r.Header.Get(CSRFHeader) != cookie.Value {
					writeJSON(w, http.StatusForbidden, map[string]string{
						"detail": "CSRF Failed: CSRF token missing or incorrect.",
					})
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession rejects requests without a valid session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.sessionUser(r); !ok {
			writeMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionUser resolves the session cookie to a username.
func (s *Server) sessionUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.sessions[cookie.Value]
	if !ok {
		return "", false
	}
	if _, exists := s.accounts[username]; !exists {
		return "", false
	}
	return username, true
}

// startSession opens a session and rotates the CSRF token, as Django does on login.
func (s *Server) startSession(w http.ResponseWriter, username string) {
	id := newToken()
	s.mu.Lock()
	s.sessions[id] = username
	s.mu.Unlock()
	setCookie(w, SessionCookieName, id)
	setCookie(w, CSRFCookieName, newToken())
}

func newToken() string {
	return uuid.New().String()
}

func setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: value, Path: "/", HttpOnly: name == SessionCookieName})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
