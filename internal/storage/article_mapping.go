package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/samber/lo"
)

// В строке нет обязательной колонки. Такую строку нужно пропустить.
var ErrMissingColumn = errors.New("missing required column")

// Плоское представление статьи: колонка -> значение.
// Подходит для squirrel SetMap при вставке и обновлении.
type Record map[string]any

// Собираем статью из строки БД и заранее подгруженных авторов, вложений и тегов.
// Без feed_id или unique_id статьи нет, возвращаем ошибку.
// Отсутствие article_id означает баг в запросе, поэтому паникуем.
func ArticleFromRow(
	row Row,
	authors []model.Author,
	attachments []model.Attachment,
	tags []string,
	accountID string,
) (model.Article, error) {
	feedID, ok := row.String(columnFeedID)
	if !ok {
		return model.Article{}, fmt.Errorf("%w: %s", ErrMissingColumn, columnFeedID)
	}

	uniqueID, ok := row.String(columnUniqueID)
	if !ok {
		return model.Article{}, fmt.Errorf("%w: %s", ErrMissingColumn, columnUniqueID)
	}

	articleID, ok := row.String(columnArticleID)
	if !ok {
		panic(fmt.Sprintf("storage: article row without %s (feed %s, unique id %s)", columnArticleID, feedID, uniqueID))
	}

	return model.Article{
		ArticleID:      articleID,
		AccountID:      accountID,
		FeedID:         feedID,
		UniqueID:       uniqueID,
		Title:          optionalString(row, columnTitle),
		ContentHTML:    optionalString(row, columnContentHTML),
		ContentText:    optionalString(row, columnContentText),
		URL:            optionalString(row, columnURL),
		ExternalURL:    optionalString(row, columnExternalURL),
		Summary:        optionalString(row, columnSummary),
		ImageURL:       optionalString(row, columnImageURL),
		BannerImageURL: optionalString(row, columnBannerImageURL),
		DatePublished:  optionalTime(row, columnDatePublished),
		DateModified:   optionalTime(row, columnDateModified),
		Authors:        authors,
		Attachments:    attachments,
		Tags:           tags,
	}, nil
}

// Статья из только что разобранной ленты.
// ArticleID берется из SyncServiceID как есть, даже если он пустой: проверок тут нет.
func ArticleFromParsedItem(item model.ParsedItem, accountID, feedID string) model.Article {
	return model.Article{
		ArticleID:      item.SyncServiceID,
		AccountID:      accountID,
		FeedID:         feedID,
		UniqueID:       item.UniqueID,
		Title:          item.Title,
		ContentHTML:    item.ContentHTML,
		ContentText:    item.ContentText,
		URL:            item.URL,
		ExternalURL:    item.ExternalURL,
		Summary:        item.Summary,
		ImageURL:       item.ImageURL,
		BannerImageURL: item.BannerImageURL,
		DatePublished:  item.DatePublished,
		DateModified:   item.DateModified,
		Authors:        model.AuthorsFromParsed(item.Authors),
		Attachments:    model.AttachmentsFromParsed(item.Attachments),
		Tags:           model.TagSetFromParsed(item.Tags),
	}
}

// Статьи из всех элементов ленты. Полностью одинаковые элементы схлопываются.
func ArticlesFromParsedItems(items []model.ParsedItem, accountID, feedID string) model.Articles {
	articles := make(model.Articles, 0, len(items))

	for _, item := range items {
		article := ArticleFromParsedItem(item, accountID, feedID)

		duplicate := lo.ContainsBy(articles, func(existing model.Article) bool {
			return existing.Equal(article)
		})
		if !duplicate {
			articles = append(articles, article)
		}
	}

	return articles
}

// Запись для INSERT.
// article_id, feed_id и unique_id есть всегда, необязательные поля только если заданы.
// account_id не пишем: аккаунт определяется БД, в которой лежит статья.
func ArticleRecord(article model.Article) Record {
	r := Record{
		columnArticleID: article.ArticleID,
		columnFeedID:    article.FeedID,
		columnUniqueID:  article.UniqueID,
	}

	for _, f := range stringFields {
		if v := f.value(article); v != nil {
			r[f.column] = *v
		}
	}

	for _, f := range dateFields {
		if v := f.value(article); v != nil {
			r[f.column] = *v
		}
	}

	return r
}

// Поля, которые участвуют в записи и в дельте, в фиксированном порядке
type stringField struct {
	column string
	value  func(model.Article) *string
}

type dateField struct {
	column string
	value  func(model.Article) *time.Time
}

var stringFields = []stringField{
	{columnTitle, func(a model.Article) *string { return a.Title }},
	{columnContentHTML, func(a model.Article) *string { return a.ContentHTML }},
	{columnContentText, func(a model.Article) *string { return a.ContentText }},
	{columnURL, func(a model.Article) *string { return a.URL }},
	{columnExternalURL, func(a model.Article) *string { return a.ExternalURL }},
	{columnSummary, func(a model.Article) *string { return a.Summary }},
	{columnImageURL, func(a model.Article) *string { return a.ImageURL }},
	{columnBannerImageURL, func(a model.Article) *string { return a.BannerImageURL }},
}

var dateFields = []dateField{
	{columnDatePublished, func(a model.Article) *time.Time { return a.DatePublished }},
	{columnDateModified, func(a model.Article) *time.Time { return a.DateModified }},
}

// Дельта для UPDATE: только поля, которые отличаются.
// nil значит, что обновлять нечего.
//
// Для строк пишется значение current, а если его нет, то пустая строка,
// чтобы очистить колонку. Даты пишутся только когда у other дата есть:
// лента, которая потеряла даты, скорее всего делает это по ошибке.
func ArticleChanges(current, other model.Article) Record {
	if current.Equal(other) {
		return nil
	}

	r := Record{}

	if current.UniqueID != other.UniqueID {
		r[columnUniqueID] = current.UniqueID
	}

	for _, f := range stringFields {
		currentValue, otherValue := f.value(current), f.value(other)
		if equalString(currentValue, otherValue) {
			continue
		}
		r[f.column] = lo.FromPtr(currentValue)
	}

	for _, f := range dateFields {
		currentValue, otherValue := f.value(current), f.value(other)
		if model.EqualTime(currentValue, otherValue) || otherValue == nil {
			continue
		}
		r[f.column] = *otherValue
	}

	if len(r) == 0 {
		return nil
	}

	return r
}

// Дельта для статьи, которая уже лежит в БД.
// Строки как в ArticleChanges. Даты берем из ленты: новая или изменившаяся дата
// записывается, а пропавшая из ленты дата остается в БД.
func storedArticleChanges(incoming, stored model.Article) Record {
	changes := ArticleChanges(incoming, stored)

	for _, f := range dateFields {
		delete(changes, f.column)

		incomingValue := f.value(incoming)
		if incomingValue == nil || model.EqualTime(incomingValue, f.value(stored)) {
			continue
		}

		if changes == nil {
			changes = Record{}
		}
		changes[f.column] = *incomingValue
	}

	if len(changes) == 0 {
		return nil
	}

	return changes
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func optionalString(row Row, column string) *string {
	if v, ok := row.String(column); ok {
		return &v
	}
	return nil
}

func optionalTime(row Row, column string) *time.Time {
	if v, ok := row.Time(column); ok {
		return &v
	}
	return nil
}
