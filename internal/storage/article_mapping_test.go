package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

var (
	published = time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	modified  = time.Date(2023, 7, 4, 12, 30, 0, 0, time.UTC)
)

func fullRow() MapRow {
	return MapRow{
		columnArticleID:      "a1",
		columnFeedID:         "7",
		columnUniqueID:       "https://example.com/post/1",
		columnTitle:          "Hello",
		columnContentHTML:    []byte("<p>Hello</p>"),
		columnContentText:    nil,
		columnURL:            "https://example.com/post/1",
		columnSummary:        "Short",
		columnDatePublished:  published,
		columnDateModified:   nil,
		columnBannerImageURL: "https://example.com/banner.png",
	}
}

func baseArticle() model.Article {
	return model.Article{
		ArticleID:     "a1",
		AccountID:     "local",
		FeedID:        "7",
		UniqueID:      "u1",
		Title:         strPtr("Title"),
		URL:           strPtr("https://example.com/1"),
		DatePublished: timePtr(published),
		Authors:       []model.Author{{Name: "Ann"}},
		Tags:          []string{"go", "db"},
	}
}

func TestArticleFromRow(t *testing.T) {
	authors := []model.Author{{Name: "Ann", EmailAddress: "ann@example.com"}}
	attachments := []model.Attachment{{URL: "https://example.com/a.mp3", MimeType: "audio/mpeg", SizeInBytes: 42}}
	tags := []string{"go"}

	article, err := ArticleFromRow(fullRow(), authors, attachments, tags, "local")
	require.NoError(t, err)

	assert.Equal(t, "a1", article.ArticleID)
	assert.Equal(t, "local", article.AccountID)
	assert.Equal(t, "7", article.FeedID)
	assert.Equal(t, "https://example.com/post/1", article.UniqueID)
	assert.Equal(t, strPtr("Hello"), article.Title)
	assert.Equal(t, strPtr("<p>Hello</p>"), article.ContentHTML)
	assert.Nil(t, article.ContentText)
	assert.Nil(t, article.ExternalURL)
	assert.Nil(t, article.ImageURL)
	assert.Equal(t, strPtr("https://example.com/banner.png"), article.BannerImageURL)
	assert.Equal(t, strPtr("Short"), article.Summary)
	require.NotNil(t, article.DatePublished)
	assert.True(t, published.Equal(*article.DatePublished))
	assert.Nil(t, article.DateModified)
	assert.Equal(t, authors, article.Authors)
	assert.Equal(t, attachments, article.Attachments)
	assert.Equal(t, tags, article.Tags)
	assert.Nil(t, article.Status)
}

func TestArticleFromRow_MissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name   string
		column string
	}{
		{name: "no feed id", column: columnFeedID},
		{name: "no unique id", column: columnUniqueID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := fullRow()
			delete(row, tt.column)

			article, err := ArticleFromRow(row, nil, nil, nil, "local")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumn))
			assert.Contains(t, err.Error(), tt.column)
			assert.Equal(t, model.Article{}, article)
		})

		t.Run(tt.name+" as NULL", func(t *testing.T) {
			row := fullRow()
			row[tt.column] = nil

			_, err := ArticleFromRow(row, nil, nil, nil, "local")
			assert.ErrorIs(t, err, ErrMissingColumn)
		})
	}
}

func TestArticleFromRow_MissingArticleIDPanics(t *testing.T) {
	row := fullRow()
	delete(row, columnArticleID)

	assert.Panics(t, func() {
		_, _ = ArticleFromRow(row, nil, nil, nil, "local")
	})
}

func TestArticleRecord_RoundTrip(t *testing.T) {
	row := fullRow()

	article, err := ArticleFromRow(row, nil, nil, nil, "local")
	require.NoError(t, err)

	record := ArticleRecord(article)

	for column, value := range row {
		if value == nil {
			assert.NotContains(t, record, column)
			continue
		}

		require.Contains(t, record, column)
		switch v := value.(type) {
		case []byte:
			assert.Equal(t, string(v), record[column])
		case time.Time:
			assert.True(t, v.Equal(record[column].(time.Time)))
		default:
			assert.Equal(t, v, record[column])
		}
	}
}

func TestArticleRecord_OmitsAbsentFields(t *testing.T) {
	record := ArticleRecord(model.Article{
		ArticleID: "a1",
		AccountID: "local",
		FeedID:    "7",
		UniqueID:  "u1",
		Title:     strPtr(""),
	})

	assert.Equal(t, Record{
		columnArticleID: "a1",
		columnFeedID:    "7",
		columnUniqueID:  "u1",
		// Пустая строка это значение, а не отсутствие значения
		columnTitle: "",
	}, record)
}

func TestArticleFromParsedItem(t *testing.T) {
	item := model.ParsedItem{
		SyncServiceID: "sync-1",
		UniqueID:      "guid-1",
		Title:         strPtr("Title"),
		Summary:       strPtr("Summary"),
		DateModified:  timePtr(modified),
		Authors: []model.ParsedAuthor{
			{Name: "Ann"},
			{Name: "Bob", EmailAddress: "bob@example.com"},
		},
		Attachments: []model.ParsedAttachment{
			{URL: "https://example.com/a.mp3", MimeType: "audio/mpeg"},
		},
		Tags: []string{"go", "", "go", "db"},
	}

	article := ArticleFromParsedItem(item, "local", "7")

	assert.Equal(t, "sync-1", article.ArticleID)
	assert.Equal(t, "local", article.AccountID)
	assert.Equal(t, "7", article.FeedID)
	assert.Equal(t, "guid-1", article.UniqueID)
	assert.Equal(t, item.Title, article.Title)
	assert.Equal(t, item.Summary, article.Summary)
	assert.Equal(t, item.DateModified, article.DateModified)
	assert.ElementsMatch(t, []model.Author{
		{Name: "Ann"},
		{Name: "Bob", EmailAddress: "bob@example.com"},
	}, article.Authors)
	assert.Equal(t, []model.Attachment{{URL: "https://example.com/a.mp3", MimeType: "audio/mpeg"}}, article.Attachments)
	assert.ElementsMatch(t, []string{"go", "db"}, article.Tags)
}

func TestArticleFromParsedItem_EmptySyncServiceID(t *testing.T) {
	article := ArticleFromParsedItem(model.ParsedItem{UniqueID: "guid-1"}, "local", "7")

	assert.Empty(t, article.ArticleID)
	assert.Equal(t, "guid-1", article.UniqueID)
}

func TestArticlesFromParsedItems_CollapsesDuplicates(t *testing.T) {
	item := model.ParsedItem{SyncServiceID: "s1", UniqueID: "u1", Title: strPtr("A")}
	other := model.ParsedItem{SyncServiceID: "s2", UniqueID: "u2"}

	articles := ArticlesFromParsedItems([]model.ParsedItem{item, other, item}, "local", "7")

	assert.Len(t, articles, 2)
	assert.Equal(t, []string{"s1", "s2"}, articles.IDs())
}

func TestArticleChanges_SameArticle(t *testing.T) {
	a := baseArticle()
	assert.Nil(t, ArticleChanges(a, a))

	// Порядок тегов и авторов не важен
	b := baseArticle()
	b.Tags = []string{"db", "go"}
	assert.Nil(t, ArticleChanges(a, b))
}

func TestArticleChanges(t *testing.T) {
	tests := []struct {
		name    string
		current func(*model.Article)
		other   func(*model.Article)
		want    Record
	}{
		{
			name:    "changed title uses current value",
			current: func(a *model.Article) { a.Title = strPtr("New") },
			want:    Record{columnTitle: "New"},
		},
		{
			name:    "absent current value clears the column",
			current: func(a *model.Article) { a.Title = nil },
			other:   func(a *model.Article) { a.Title = strPtr("X") },
			want:    Record{columnTitle: ""},
		},
		{
			name:    "unique id change",
			current: func(a *model.Article) { a.UniqueID = "u2" },
			want:    Record{columnUniqueID: "u2"},
		},
		{
			name: "several string fields",
			current: func(a *model.Article) {
				a.ContentHTML = strPtr("<p>x</p>")
				a.BannerImageURL = strPtr("https://example.com/b.png")
				a.URL = nil
			},
			want: Record{
				columnContentHTML:    "<p>x</p>",
				columnBannerImageURL: "https://example.com/b.png",
				columnURL:            "",
			},
		},
		{
			name:    "date present only on other is written",
			current: func(a *model.Article) { a.DateModified = nil },
			other:   func(a *model.Article) { a.DateModified = timePtr(modified) },
			want:    Record{columnDateModified: modified},
		},
		{
			name:    "date dropped by other is kept",
			current: func(a *model.Article) { a.DateModified = timePtr(modified) },
			other:   func(a *model.Article) { a.DateModified = nil },
			want:    nil,
		},
		{
			name:    "changed date takes other value",
			current: func(a *model.Article) { a.DatePublished = timePtr(modified) },
			want:    Record{columnDatePublished: published},
		},
		{
			name:    "only relations changed",
			current: func(a *model.Article) { a.Tags = []string{"rust"} },
			want:    nil,
		},
		{
			name:    "same instant in another location is not a change",
			current: func(a *model.Article) { a.DatePublished = timePtr(published.In(time.FixedZone("MSK", 3*60*60))) },
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, other := baseArticle(), baseArticle()
			if tt.current != nil {
				tt.current(&current)
			}
			if tt.other != nil {
				tt.other(&other)
			}

			got := ArticleChanges(current, other)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.Len(t, got, len(tt.want))
			for column, want := range tt.want {
				if wantTime, ok := want.(time.Time); ok {
					gotTime, ok := got[column].(time.Time)
					require.True(t, ok, column)
					assert.True(t, wantTime.Equal(gotTime), column)
					continue
				}
				assert.Equal(t, want, got[column], column)
			}
		})
	}
}

func TestStoredArticleChanges(t *testing.T) {
	later := modified.Add(24 * time.Hour)

	tests := []struct {
		name     string
		incoming func(*model.Article)
		stored   func(*model.Article)
		want     Record
	}{
		{
			name:     "changed date from the feed is written",
			incoming: func(a *model.Article) { a.DateModified = timePtr(later) },
			stored:   func(a *model.Article) { a.DateModified = timePtr(modified) },
			want:     Record{columnDateModified: later},
		},
		{
			name:     "new date from the feed is written",
			incoming: func(a *model.Article) { a.DateModified = timePtr(later) },
			stored:   func(a *model.Article) { a.DateModified = nil },
			want:     Record{columnDateModified: later},
		},
		{
			name:     "date dropped by the feed is kept",
			incoming: func(a *model.Article) { a.DatePublished = nil },
			want:     nil,
		},
		{
			name:     "same instant in another location is not a change",
			incoming: func(a *model.Article) { a.DatePublished = timePtr(published.In(time.FixedZone("MSK", 3*60*60))) },
			want:     nil,
		},
		{
			name: "strings and dates together",
			incoming: func(a *model.Article) {
				a.Title = strPtr("New")
				a.DatePublished = timePtr(later)
			},
			want: Record{columnTitle: "New", columnDatePublished: later},
		},
		{
			name:     "unchanged article",
			incoming: func(a *model.Article) {},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			incoming, stored := baseArticle(), baseArticle()
			tt.incoming(&incoming)
			if tt.stored != nil {
				tt.stored(&stored)
			}

			got := storedArticleChanges(incoming, stored)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.Len(t, got, len(tt.want))
			for column, want := range tt.want {
				if wantTime, ok := want.(time.Time); ok {
					gotTime, ok := got[column].(time.Time)
					require.True(t, ok, column)
					assert.True(t, wantTime.Equal(gotTime), column)
					continue
				}
				assert.Equal(t, want, got[column], column)
			}
		})
	}
}
