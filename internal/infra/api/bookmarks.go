package api

import (
	"context"
	"net/http"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/requestid"
)

const (
	bookmarksPath      = "/bookmarks/"
	addBookmarkPath    = "/bookmarks/add/"
	removeBookmarkPath = "/bookmarks/remove/"
	bookmarkCountPath  = "/bookmarks/count/"
)

// AddBookmark stores a normalized bookmark record for the current user.
func (c *Client) AddBookmark(ctx context.Context, rec entity.BookmarkRecord) error {
	return c.do(ctx, http.MethodPost, addBookmarkPath, nil, rec, nil)
}

// RemoveBookmark deletes the bookmark for articleURL.
func (c *Client) RemoveBookmark(ctx context.Context, articleURL string) error {
	return c.do(ctx, http.MethodPost, removeBookmarkPath, nil, removeBookmarkRequest{ArticleURL: articleURL}, nil)
}

// ListBookmarks returns every bookmark of the current user, unpaginated, in server order.
// Items missing a language are reported as English, the bookmark default.
func (c *Client) ListBookmarks(ctx context.Context) ([]entity.Article, error) {
	ctx, _ = requestid.Ensure(ctx)

	var resp bookmarksResponse
	if err := c.do(ctx, http.MethodGet, bookmarksPath, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Bookmarks == nil {
		return nil, c.decodeFailure(ctx, bookmarksPath, nil, errMissingList)
	}
	return toArticles(*resp.Bookmarks, entity.DefaultBookmarkLanguage, bookmarksPath), nil
}

// BookmarkCount returns the number of bookmarks held by the current user.
func (c *Client) BookmarkCount(ctx context.Context) (int, error) {
	ctx, _ = requestid.Ensure(ctx)

	var resp countResponse
	if err := c.do(ctx, http.MethodGet, bookmarkCountPath, nil, nil, &resp); err != nil {
		return 0, err
	}
	switch {
	case resp.Count == nil:
		return 0, c.decodeFailure(ctx, bookmarkCountPath, nil, errMissingCount)
	case *resp.Count < 0:
		return 0, c.decodeFailure(ctx, bookmarkCountPath, nil, errNegativeCount)
	}
	return *resp.Count, nil
}
