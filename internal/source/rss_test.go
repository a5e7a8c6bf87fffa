package source

import (
	"context"
	"testing"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedItemFromRSS(t *testing.T) {
	date := time.Date(2023, 7, 3, 13, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

	item := parsedItemFromRSS(&rss.Item{
		Title:      "Hello",
		Summary:    "Short",
		Content:    "<p>Body</p>",
		Categories: []string{"go", "db"},
		Link:       "https://example.com/1",
		Date:       date,
		Enclosures: []*rss.Enclosure{
			{URL: "https://example.com/a.mp3", Type: "audio/mpeg", Length: 2048},
			{URL: ""},
		},
	})

	assert.Equal(t, "https://example.com/1", item.UniqueID)
	assert.Equal(t, "Hello", *item.Title)
	assert.Equal(t, "<p>Body</p>", *item.ContentHTML)
	assert.Equal(t, "Short", *item.Summary)
	assert.Equal(t, "https://example.com/1", *item.URL)
	require.NotNil(t, item.DatePublished)
	assert.Equal(t, time.UTC, item.DatePublished.Location())
	assert.True(t, date.Equal(*item.DatePublished))
	assert.Nil(t, item.DateModified)
	assert.Equal(t, []string{"go", "db"}, item.Tags)
	assert.Equal(t, []model.ParsedAttachment{
		{URL: "https://example.com/a.mp3", MimeType: "audio/mpeg", SizeInBytes: 2048},
	}, item.Attachments)
}

func TestParsedItemFromRSS_PrefersID(t *testing.T) {
	item := parsedItemFromRSS(&rss.Item{ID: "guid-1", Link: "https://example.com/1"})

	assert.Equal(t, "guid-1", item.UniqueID)
	assert.Nil(t, item.Title)
	assert.Nil(t, item.DatePublished)
}

func TestRSSSource_FetchCanceled(t *testing.T) {
	src := NewRSSSourceFromModel(model.Source{ID: 3, Name: "Example", FeedURL: "http://127.0.0.1:1/feed"})
	assert.Equal(t, int64(3), src.ID())
	assert.Equal(t, "Example", src.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Fetch(ctx)
	assert.Error(t, err)
}
