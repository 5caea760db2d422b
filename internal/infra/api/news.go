package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/requestid"
)

const newsPath = "/news/"

// FetchNews requests one page of the news feed.
// Duplicate URLs within the page are dropped (first occurrence wins).
func (c *Client) FetchNews(ctx context.Context, req entity.NewsRequest) (*entity.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, _ = requestid.Ensure(ctx)

	query := url.Values{}
	query.Set("page", strconv.Itoa(req.Page))
	query.Set("language", string(req.Language))
	query.Set("per_page", strconv.Itoa(req.PerPage))

	var resp newsResponse
	if err := c.do(ctx, http.MethodGet, newsPath, query, nil, &resp); err != nil {
		return nil, err
	}

	page, err := resp.toPage(req.Language, newsPath)
	if err != nil {
		return nil, c.decodeFailure(ctx, newsPath, query, err)
	}
	return page, nil
}
