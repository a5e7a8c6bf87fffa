package storage

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertArticleQuery(t *testing.T) {
	record := ArticleRecord(model.Article{
		ArticleID: "a1",
		FeedID:    "7",
		UniqueID:  "u1",
		Title:     strPtr("Hello"),
	})

	query, args, err := insertArticleQuery(record).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO articles")
	assert.Contains(t, query, "$4")
	assert.NotContains(t, query, "$5")
	assert.Contains(t, query, "ON CONFLICT (article_id) DO UPDATE SET")
	assert.Contains(t, query, "title = EXCLUDED.title")
	assert.Contains(t, query, "feed_id = EXCLUDED.feed_id")
	// Чего нет в записи, то при замене обнуляется
	assert.Contains(t, query, "summary = NULL")
	assert.NotContains(t, query, "article_id = EXCLUDED.article_id")
	assert.ElementsMatch(t, []any{"a1", "7", "u1", "Hello"}, args)
}

func TestUpdateArticleQuery(t *testing.T) {
	changes := ArticleChanges(
		model.Article{ArticleID: "a1", FeedID: "7", UniqueID: "u1"},
		model.Article{ArticleID: "a1", FeedID: "7", UniqueID: "u1", Title: strPtr("Old")},
	)
	require.NotNil(t, changes)

	query, args, err := updateArticleQuery("a1", changes).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE articles SET title = $1 WHERE article_id = $2", query)
	assert.Equal(t, []any{"", "a1"}, args)
}

func TestSelectArticlesQuery(t *testing.T) {
	query, args, err := selectArticlesQuery(sq.Eq{columnArticleID: []string{"a1", "a2"}}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM articles WHERE article_id IN ($1,$2)")
	assert.Equal(t, []any{"a1", "a2"}, args)
}

func TestSelectUnreadArticlesQuery(t *testing.T) {
	since := time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC)

	query, args, err := selectUnreadArticlesQuery(since, 1).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "a.article_id")
	assert.Contains(t, query, "JOIN statuses s ON s.article_id = a.article_id")
	assert.Contains(t, query, "s.date_arrived >= ")
	assert.Contains(t, query, "ORDER BY s.date_arrived ASC LIMIT 1")
	assert.Contains(t, args, since)
}

func TestRelationQueries(t *testing.T) {
	_, ok := insertAuthorsQuery("a1", nil)
	assert.False(t, ok)

	q, ok := insertAuthorsQuery("a1", []model.Author{{Name: "Ann"}, {Name: "Bob"}})
	require.True(t, ok)
	query, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO article_authors (article_id,name,url,avatar_url,email_address)")
	assert.Len(t, args, 10)

	q, ok = insertTagsQuery("a1", []string{"go"})
	require.True(t, ok)
	_, args, err = q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, []any{"a1", "go"}, args)

	query, args, err = deleteRelationsQuery(tableTags, []string{"a1"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM article_tags WHERE article_id IN ($1)", query)
	assert.Equal(t, []any{"a1"}, args)
}

func TestInsertStatusesQuery(t *testing.T) {
	arrived := time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC)

	query, args, err := insertStatusesQuery([]string{"a1", "a2"}, false, arrived).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO statuses")
	assert.Contains(t, query, "ON CONFLICT (article_id) DO NOTHING")
	assert.Equal(t, []any{"a1", false, false, false, arrived, "a2", false, false, false, arrived}, args)
}
