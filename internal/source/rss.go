package source

import (
	"context"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/samber/lo"
)

// RSS клиент на SlyMarbo/rss. Авторов эта библиотека не отдает.
type RSSSource struct {
	// URL откуда мы забираем данные
	URL        string
	SourceID   int64
	SourceName string
}

// Из модели источника делаем клиент для RSS ленты
func NewRSSSourceFromModel(m model.Source) RSSSource {
	return RSSSource{
		URL:        m.FeedURL,
		SourceID:   m.ID,
		SourceName: m.Name,
	}
}

func (s RSSSource) Fetch(ctx context.Context) ([]model.ParsedItem, error) {
	feed, err := s.loadFeed(ctx, s.URL)
	if err != nil {
		return nil, err
	}

	return lo.Map(feed.Items, func(item *rss.Item, _ int) model.ParsedItem {
		return parsedItemFromRSS(item)
	}), nil
}

// rss.Fetch не умеет в контекст, поэтому ждем его в отдельной горутине
func (s RSSSource) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	var (
		// Буфер, чтобы горутина не зависла, если мы уже ушли по ctx.Done
		feedCh = make(chan *rss.Feed, 1)
		errCh  = make(chan error, 1)
	)

	go func() {
		feed, err := rss.Fetch(url)
		if err != nil {
			errCh <- err
			return
		}

		feedCh <- feed
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case feed := <-feedCh:
		return feed, nil
	}
}

func parsedItemFromRSS(item *rss.Item) model.ParsedItem {
	parsed := model.ParsedItem{
		UniqueID:    firstNonEmpty(item.ID, item.Link),
		Title:       nonEmpty(item.Title),
		ContentHTML: nonEmpty(item.Content),
		Summary:     nonEmpty(item.Summary),
		URL:         nonEmpty(item.Link),
		Tags:        item.Categories,
	}

	if !item.Date.IsZero() {
		date := item.Date.UTC()
		parsed.DatePublished = &date
	}

	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		parsed.Attachments = append(parsed.Attachments, model.ParsedAttachment{
			URL:         enclosure.URL,
			MimeType:    enclosure.Type,
			SizeInBytes: int64(enclosure.Length),
		})
	}

	return parsed
}

func (s RSSSource) ID() int64 {
	return s.SourceID
}

func (s RSSSource) Name() string {
	return s.SourceName
}
