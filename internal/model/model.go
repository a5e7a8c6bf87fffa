package model

import (
	"strconv"
	"time"
)

// Виды источников
const (
	// RSS лента, разбирается через SlyMarbo/rss
	SourceKindRSS = "rss"
	// Любая лента (RSS, Atom, JSON Feed), разбирается через gofeed
	SourceKindFeed = "feed"
)

// Модель источника
type Source struct {
	ID int64
	// Имя
	Name string
	// Урл откуда забираем данные
	FeedURL string
	// Каким парсером разбирать ленту
	Kind string
	// Время создания
	CreatedAt time.Time
}

// ID ленты, под которым статьи источника лежат в БД
func FeedIDForSource(sourceID int64) string {
	return strconv.FormatInt(sourceID, 10)
}

// Автор статьи в том виде, в котором он пришел из ленты
type ParsedAuthor struct {
	Name         string
	URL          string
	AvatarURL    string
	EmailAddress string
}

// Вложение (enclosure) в том виде, в котором оно пришло из ленты
type ParsedAttachment struct {
	URL               string
	MimeType          string
	Title             string
	SizeInBytes       int64
	DurationInSeconds int64
}

// Статья как элемент ленты, еще не сохраненная в БД
type ParsedItem struct {
	// ID статьи в сервисе синхронизации. Для локальных лент пустой
	SyncServiceID string
	// ID, который дал статье источник (guid, id, ссылка)
	UniqueID string

	Title          *string
	ContentHTML    *string
	ContentText    *string
	URL            *string
	ExternalURL    *string
	Summary        *string
	ImageURL       *string
	BannerImageURL *string

	DatePublished *time.Time
	DateModified  *time.Time

	Authors     []ParsedAuthor
	Attachments []ParsedAttachment
	// Категории статьи
	Tags []string
}

type Author struct {
	Name         string
	URL          string
	AvatarURL    string
	EmailAddress string
}

type Attachment struct {
	URL      string
	MimeType string
	Title    string
	// 0 значит неизвестно
	SizeInBytes       int64
	DurationInSeconds int64
}

// Статус статьи хранится отдельно от ее тела
type ArticleStatus struct {
	ArticleID   string
	Read        bool
	Starred     bool
	UserDeleted bool
	// Когда статья впервые попала к нам
	DateArrived time.Time
}

// Модель статьи которая используется у нас внутри а не в ленте
type Article struct {
	ArticleID string
	AccountID string
	FeedID    string
	UniqueID  string

	Title          *string
	ContentHTML    *string
	ContentText    *string
	URL            *string
	ExternalURL    *string
	Summary        *string
	ImageURL       *string
	BannerImageURL *string

	DatePublished *time.Time
	DateModified  *time.Time

	// Авторы, вложения и теги ведут себя как множества: порядок не важен
	Authors     []Author
	Attachments []Attachment
	Tags        []string

	// Статус подгружается отдельно и может отсутствовать
	Status *ArticleStatus
}
