package fetcher

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/kovalyov-valentin/feed-article-store/internal/source"
	"github.com/kovalyov-valentin/feed-article-store/internal/storage"

	"github.com/tomakado/containers/set"
)

type ArticleStorage interface {
	UpdateFeed(ctx context.Context, feedID string, items []model.ParsedItem) (storage.UpdateResult, error)
}

type SourceProvider interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

// Интерфейс источника
type Source interface {
	ID() int64
	Name() string
	Fetch(ctx context.Context) ([]model.ParsedItem, error)
}

// Структура сборщика
type Fetcher struct {
	articles ArticleStorage
	sources  SourceProvider

	// Как часто обновляем источники
	fetchInterval time.Duration
	// Статьи с этими словами в заголовке или тегах пропускаем
	filterKeywords []string

	// Как из модели получить клиент источника. Подменяется в тестах.
	newSource func(model.Source) Source
}

func NewFetcher(articleStorage ArticleStorage, sourceProvider SourceProvider, fetchInterval time.Duration, filterKeywords []string) *Fetcher {
	return &Fetcher{
		articles:       articleStorage,
		sources:        sourceProvider,
		fetchInterval:  fetchInterval,
		filterKeywords: normalizeKeywords(filterKeywords),
		newSource:      SourceFromModel,
	}
}

// Клиент для источника в зависимости от его вида
func SourceFromModel(m model.Source) Source {
	switch m.Kind {
	case model.SourceKindFeed:
		return source.NewFeedSourceFromModel(m)
	default:
		return source.NewRSSSourceFromModel(m)
	}
}

// ID ленты, под которым ее статьи лежат в БД
func FeedID(src Source) string {
	return model.FeedIDForSource(src.ID())
}

// Fetcher работает в отдельной горутине и раз в fetchInterval забирает статьи
func (f *Fetcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(f.fetchInterval)
	defer ticker.Stop()

	if err := f.Fetch(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := f.Fetch(ctx); err != nil {
				return err
			}
		}
	}
}

func (f *Fetcher) Fetch(ctx context.Context) error {
	sources, err := f.sources.Sources(ctx)
	if err != nil {
		return err
	}

	// Источники опрашиваем параллельно, чтобы медленный не тормозил остальные
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)

		go func(source Source) {
			defer wg.Done()

			items, err := source.Fetch(ctx)
			if err != nil {
				log.Printf("[ERROR] Fetching items from source %s: %v", source.Name(), err)
				return
			}

			if err := f.processItems(ctx, source, items); err != nil {
				log.Printf("[ERROR] Processing items from source %s: %v", source.Name(), err)
				return
			}
		}(f.newSource(src))
	}

	wg.Wait()

	return nil
}

func (f *Fetcher) processItems(ctx context.Context, source Source, items []model.ParsedItem) error {
	feedID := FeedID(source)

	kept := make([]model.ParsedItem, 0, len(items))
	for _, item := range items {
		if item.UniqueID == "" {
			continue
		}

		if f.itemShouldBeSkipped(item) {
			continue
		}

		// У локальных лент нет сервиса синхронизации, ID считаем сами
		if item.SyncServiceID == "" {
			item.SyncServiceID = model.CalculatedArticleID(feedID, item.UniqueID)
		}

		kept = append(kept, item)
	}

	if len(kept) == 0 {
		return nil
	}

	result, err := f.articles.UpdateFeed(ctx, feedID, kept)
	if err != nil {
		return err
	}

	if len(result.New) > 0 || len(result.Updated) > 0 {
		log.Printf("[INFO] source %s: %d new, %d updated articles", source.Name(), len(result.New), len(result.Updated))
	}

	return nil
}

// Есть ли ключевое слово среди тегов или в заголовке
func (f *Fetcher) itemShouldBeSkipped(item model.ParsedItem) bool {
	if len(f.filterKeywords) == 0 {
		return false
	}

	tags := make([]string, 0, len(item.Tags))
	for _, tag := range item.Tags {
		tags = append(tags, strings.ToLower(tag))
	}
	tagSet := set.New(tags...)

	var title string
	if item.Title != nil {
		title = strings.ToLower(*item.Title)
	}

	for _, keyword := range f.filterKeywords {
		if tagSet.Contains(keyword) || strings.Contains(title, keyword) {
			return true
		}
	}

	return false
}

func normalizeKeywords(keywords []string) []string {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			normalized = append(normalized, k)
		}
	}
	return normalized
}
