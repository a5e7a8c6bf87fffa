package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestArticleEqual(t *testing.T) {
	published := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)

	base := func() Article {
		return Article{
			ArticleID:     "a1",
			FeedID:        "7",
			UniqueID:      "u1",
			Title:         strPtr("Title"),
			DatePublished: &published,
			Authors:       []Author{{Name: "Ann"}, {Name: "Bob"}},
			Attachments:   []Attachment{{URL: "https://example.com/a.mp3"}},
			Tags:          []string{"go", "db"},
		}
	}

	tests := []struct {
		name   string
		modify func(*Article)
		equal  bool
	}{
		{name: "identical", modify: func(*Article) {}, equal: true},
		{name: "same title in other pointer", modify: func(a *Article) { a.Title = strPtr("Title") }, equal: true},
		{name: "reordered sets", modify: func(a *Article) {
			a.Authors = []Author{{Name: "Bob"}, {Name: "Ann"}}
			a.Tags = []string{"db", "go", "go"}
		}, equal: true},
		{name: "status is ignored", modify: func(a *Article) { a.Status = &ArticleStatus{ArticleID: "a1", Read: true} }, equal: true},
		{name: "same instant other zone", modify: func(a *Article) {
			t := published.In(time.FixedZone("MSK", 3*60*60))
			a.DatePublished = &t
		}, equal: true},
		{name: "title removed", modify: func(a *Article) { a.Title = nil }, equal: false},
		{name: "title changed", modify: func(a *Article) { a.Title = strPtr("Other") }, equal: false},
		{name: "date removed", modify: func(a *Article) { a.DatePublished = nil }, equal: false},
		{name: "author added", modify: func(a *Article) { a.Authors = append(a.Authors, Author{Name: "Eve"}) }, equal: false},
		{name: "attachments cleared", modify: func(a *Article) { a.Attachments = nil }, equal: false},
		{name: "feed changed", modify: func(a *Article) { a.FeedID = "8" }, equal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base()
			tt.modify(&other)

			assert.Equal(t, tt.equal, base().Equal(other))
			assert.Equal(t, tt.equal, other.Equal(base()))
		})
	}
}

func TestArticleDatabaseID(t *testing.T) {
	var obj DatabaseObject = Article{ArticleID: "a1"}
	assert.Equal(t, "a1", obj.DatabaseID())
}

func TestCalculatedArticleID(t *testing.T) {
	id := CalculatedArticleID("7", "https://example.com/1")

	assert.Len(t, id, 32)
	assert.Equal(t, id, CalculatedArticleID("7", "https://example.com/1"))
	assert.NotEqual(t, id, CalculatedArticleID("8", "https://example.com/1"))
}

func TestFromParsed(t *testing.T) {
	assert.Nil(t, AuthorsFromParsed(nil))
	assert.Nil(t, AttachmentsFromParsed(nil))
	assert.Nil(t, TagSetFromParsed(nil))

	authors := AuthorsFromParsed([]ParsedAuthor{
		{Name: "Ann", URL: "https://ann.example.com"},
		{Name: "Ann", URL: "https://ann.example.com"},
	})
	assert.Equal(t, []Author{{Name: "Ann", URL: "https://ann.example.com"}}, authors)

	attachments := AttachmentsFromParsed([]ParsedAttachment{{URL: "u", MimeType: "audio/mpeg", DurationInSeconds: 60}})
	assert.Equal(t, []Attachment{{URL: "u", MimeType: "audio/mpeg", DurationInSeconds: 60}}, attachments)

	assert.Equal(t, []string{"go", "db"}, TagSetFromParsed([]string{"go", "", "db", "go"}))
}
