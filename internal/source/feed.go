package source

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// Клиент для любых лент (RSS, Atom, JSON Feed) на gofeed.
// В отличие от RSSSource отдает авторов и даты изменения.
type FeedSource struct {
	URL        string
	SourceID   int64
	SourceName string

	parser *gofeed.Parser
}

func NewFeedSourceFromModel(m model.Source) FeedSource {
	return FeedSource{
		URL:        m.FeedURL,
		SourceID:   m.ID,
		SourceName: m.Name,
		parser:     gofeed.NewParser(),
	}
}

func (s FeedSource) Fetch(ctx context.Context) ([]model.ParsedItem, error) {
	feed, err := s.parser.ParseURLWithContext(s.URL, ctx)
	if err != nil {
		return nil, err
	}

	return parsedItemsFromFeed(feed), nil
}

func parsedItemsFromFeed(feed *gofeed.Feed) []model.ParsedItem {
	return lo.FilterMap(feed.Items, func(item *gofeed.Item, _ int) (model.ParsedItem, bool) {
		if item == nil {
			return model.ParsedItem{}, false
		}
		return parsedItemFromFeed(item), true
	})
}

func parsedItemFromFeed(item *gofeed.Item) model.ParsedItem {
	parsed := model.ParsedItem{
		UniqueID:      firstNonEmpty(item.GUID, item.Link),
		Title:         nonEmpty(item.Title),
		ContentHTML:   nonEmpty(item.Content),
		Summary:       nonEmpty(item.Description),
		URL:           nonEmpty(item.Link),
		DatePublished: utcTime(item.PublishedParsed),
		DateModified:  utcTime(item.UpdatedParsed),
		Tags:          item.Categories,
	}

	// Вторая ссылка обычно ведет на первоисточник
	if len(item.Links) > 1 && item.Links[1] != item.Link {
		parsed.ExternalURL = nonEmpty(item.Links[1])
	}

	if item.Image != nil {
		parsed.ImageURL = nonEmpty(item.Image.URL)
	}

	for _, person := range item.Authors {
		if person == nil || (person.Name == "" && person.Email == "") {
			continue
		}
		parsed.Authors = append(parsed.Authors, model.ParsedAuthor{
			Name:         person.Name,
			EmailAddress: person.Email,
		})
	}

	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		// Длина в ленте бывает мусорной, тогда считаем ее неизвестной
		size, _ := strconv.ParseInt(strings.TrimSpace(enclosure.Length), 10, 64)
		parsed.Attachments = append(parsed.Attachments, model.ParsedAttachment{
			URL:         enclosure.URL,
			MimeType:    enclosure.Type,
			SizeInBytes: size,
		})
	}

	return parsed
}

func (s FeedSource) ID() int64 {
	return s.SourceID
}

func (s FeedSource) Name() string {
	return s.SourceName
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	v, _ := lo.Find(values, func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
	return v
}

func utcTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
