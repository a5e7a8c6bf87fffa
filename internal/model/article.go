package model

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
)

// Любая сущность, у которой есть стабильный строковый ID в БД.
// Через этот интерфейс хранилище решает, делать вставку или обновление.
type DatabaseObject interface {
	DatabaseID() string
}

var _ DatabaseObject = Article{}

func (a Article) DatabaseID() string {
	return a.ArticleID
}

// Equal сравнивает статьи по всем сохраняемым полям.
// Статус не входит в тело статьи и не сравнивается.
// AccountInfo пока не поддерживается, поэтому его здесь нет.
func (a Article) Equal(other Article) bool {
	return a.ArticleID == other.ArticleID &&
		a.AccountID == other.AccountID &&
		a.FeedID == other.FeedID &&
		a.UniqueID == other.UniqueID &&
		equalPtr(a.Title, other.Title) &&
		equalPtr(a.ContentHTML, other.ContentHTML) &&
		equalPtr(a.ContentText, other.ContentText) &&
		equalPtr(a.URL, other.URL) &&
		equalPtr(a.ExternalURL, other.ExternalURL) &&
		equalPtr(a.Summary, other.Summary) &&
		equalPtr(a.ImageURL, other.ImageURL) &&
		equalPtr(a.BannerImageURL, other.BannerImageURL) &&
		EqualTime(a.DatePublished, other.DatePublished) &&
		EqualTime(a.DateModified, other.DateModified) &&
		a.EqualRelations(other)
}

// Авторы, вложения и теги совпадают как множества
func (a Article) EqualRelations(other Article) bool {
	return sameSet(a.Authors, other.Authors) &&
		sameSet(a.Attachments, other.Attachments) &&
		sameSet(a.Tags, other.Tags)
}

// EqualTime сравнивает необязательные даты.
// Время из БД приходит в другой локации, поэтому == тут не подходит.
func EqualTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.Equal(*b)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

// Сравнение слайсов как множеств: порядок и повторы не важны
func sameSet[T comparable](a, b []T) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}

	var (
		setA = set.New(a...)
		setB = set.New(b...)
	)

	for _, item := range a {
		if !setB.Contains(item) {
			return false
		}
	}

	for _, item := range b {
		if !setA.Contains(item) {
			return false
		}
	}

	return true
}

func AuthorFromParsed(parsed ParsedAuthor) Author {
	return Author(parsed)
}

func AttachmentFromParsed(parsed ParsedAttachment) Attachment {
	return Attachment(parsed)
}

// Авторы из ленты, по одному Author на каждую запись
func AuthorsFromParsed(parsed []ParsedAuthor) []Author {
	if len(parsed) == 0 {
		return nil
	}

	return lo.Uniq(lo.Map(parsed, func(p ParsedAuthor, _ int) Author {
		return AuthorFromParsed(p)
	}))
}

func AttachmentsFromParsed(parsed []ParsedAttachment) []Attachment {
	if len(parsed) == 0 {
		return nil
	}

	return lo.Uniq(lo.Map(parsed, func(p ParsedAttachment, _ int) Attachment {
		return AttachmentFromParsed(p)
	}))
}

// Теги без пустых строк и повторов
func TagSetFromParsed(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	return lo.Uniq(lo.Filter(tags, func(tag string, _ int) bool {
		return tag != ""
	}))
}

// ID статьи для лент без сервиса синхронизации.
// Считается из feedID и uniqueID, поэтому стабилен между загрузками.
func CalculatedArticleID(feedID, uniqueID string) string {
	sum := md5.Sum([]byte(feedID + " " + uniqueID))
	return hex.EncodeToString(sum[:])
}
