package testserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"newsclient/internal/domain/entity"
)

type newsPayload struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Articles   []articleJSON `json:"articles"`
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	params, err := parsePageParams(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	lang := entity.Language(r.URL.Query().Get("language"))
	if lang == "" {
		lang = entity.LanguageEnglish
	}
	if !lang.Valid() {
		writeMessage(w, http.StatusBadRequest, "Unsupported language")
		return
	}

	s.mu.Lock()
	all := s.articles[lang]
	start, end := params.window(len(all))
	page := lo.Map(all[start:end], func(a entity.Article, _ int) articleJSON { return newsItem(a) })
	total := totalPages(len(all), params.PerPage)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, newsPayload{Page: params.Page, TotalPages: total, Articles: page})
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	username, _ := s.sessionUser(r)

	s.mu.Lock()
	items := lo.Map(s.bookmarks[username], func(rec entity.BookmarkRecord, _ int) articleJSON { return bookmarkItem(rec) })
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string][]articleJSON{"bookmarks": items})
}

func (s *Server) handleBookmarkCount(w http.ResponseWriter, r *http.Request) {
	username, _ := s.sessionUser(r)

	s.mu.Lock()
	count := len(s.bookmarks[username])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	username, _ := s.sessionUser(r)

	var rec entity.BookmarkRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.ArticleURL == "" {
		writeMessage(w, http.StatusBadRequest, "article_url is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if lo.ContainsBy(s.bookmarks[username], func(b entity.BookmarkRecord) bool { return b.ArticleURL == rec.ArticleURL }) {
		writeMessage(w, http.StatusBadRequest, "Article already bookmarked")
		return
	}
	s.bookmarks[username] = append(s.bookmarks[username], rec)
	writeMessage(w, http.StatusCreated, "Bookmark added")
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	username, _ := s.sessionUser(r)

	var req struct {
		ArticleURL string `json:"article_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ArticleURL == "" {
		writeMessage(w, http.StatusBadRequest, "article_url is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.bookmarks[username])
	s.bookmarks[username] = lo.Reject(s.bookmarks[username], func(b entity.BookmarkRecord, _ int) bool {
		return b.ArticleURL == req.ArticleURL
	})
	if len(s.bookmarks[username]) == before {
		writeMessage(w, http.StatusNotFound, "Bookmark not found")
		return
	}
	writeMessage(w, http.StatusOK, "Bookmark removed")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds entity.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[creds.Username]
	s.mu.Unlock()
	if !ok || acct.password != creds.Password {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	s.startSession(w, creds.Username)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": acct.user})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var reg entity.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(reg.Username) == "" || reg.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[reg.Username]; exists {
		s.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	user := s.addUserLocked(reg.Username, reg.Password, reg.Name)
	s.mu.Unlock()

	s.startSession(w, reg.Username)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Signup successful", "user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	clearCookie(w, SessionCookieName)
	writeMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	username, ok := s.sessionUser(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"isAuthenticated": false, "user": nil})
		return
	}

	s.mu.Lock()
	user := s.accounts[username].user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"isAuthenticated": true, "user": user})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	s.mu.Lock()
	if _, ok := s.accounts[req.Email]; ok {
		s.resetTokens[newToken()] = req.Email
	}
	s.mu.Unlock()

	// the response does not reveal whether the account exists
	writeMessage(w, http.StatusOK, "Password reset email sent")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Token and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.resetTokens[req.Token]
	acct, exists := s.accounts[username]
	if !ok || !exists {
		writeMessage(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}
	delete(s.resetTokens, req.Token)
	acct.password = req.Password
	writeMessage(w, http.StatusOK, "Password has been reset")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	username, _ := s.sessionUser(r)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "New password is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[username]
	if acct.password != req.CurrentPassword {
		writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	acct.password = req.NewPassword
	writeMessage(w, http.StatusOK, "Password changed")
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	username, _ := s.sessionUser(r)

	s.mu.Lock()
	delete(s.accounts, username)
	delete(s.bookmarks, username)
	for id, u := range s.sessions {
		if u == username {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	clearCookie(w, SessionCookieName)
	writeMessage(w, http.StatusOK, "Account deleted")
}
