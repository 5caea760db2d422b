package fixtures_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsclient/internal/domain/entity"
	"newsclient/tests/fixtures"
)

func TestArticles_Deterministic(t *testing.T) {
	first := fixtures.Articles(entity.LanguageNepali, 3)
	second := fixtures.Articles(entity.LanguageNepali, 3)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "https://news.example.com/np/1", first[0].URL)
	assert.Equal(t, "https://news.example.com/np/3", first[2].URL)
	assert.True(t, first[0].PublishedAt.After(*first[1].PublishedAt), "articles are newest first")
}

func TestArticlesFrom_ContinuesNumbering(t *testing.T) {
	articles := fixtures.ArticlesFrom(entity.LanguageEnglish, 31, 2)

	assert.Equal(t, fixtures.ArticleURL(entity.LanguageEnglish, 31), articles[0].URL)
	assert.Equal(t, fixtures.ArticleURL(entity.LanguageEnglish, 32), articles[1].URL)
}

func TestBare_ClearsOptionalFields(t *testing.T) {
	a := fixtures.NewTestArticle(fixtures.Bare())

	assert.Nil(t, a.ImageURL)
	assert.Nil(t, a.PublishedAt)
	assert.Empty(t, a.Category)
	assert.Empty(t, a.Source)
	assert.Empty(t, a.Language)
	assert.NotEmpty(t, a.URL)
}

func TestGenerateBody_Length(t *testing.T) {
	for _, length := range []int{500, 2000} {
		body := fixtures.GenerateBody(length)
		assert.GreaterOrEqual(t, len(body), int(float64(length)*0.9))
		assert.LessOrEqual(t, len(body), int(float64(length)*1.1))
	}
}

func TestRSS_ContainsItems(t *testing.T) {
	doc := fixtures.RSS("Fixture & Co", fixtures.Articles(entity.LanguageEnglish, 2))

	assert.True(t, strings.HasPrefix(doc, "<?xml"))
	assert.Contains(t, doc, "Fixture &amp; Co")
	assert.Equal(t, 2, strings.Count(doc, "<item>"))
}
