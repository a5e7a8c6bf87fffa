package storage

import (
	"time"
)

// Колонки таблицы articles
const (
	columnArticleID      = "article_id"
	columnFeedID         = "feed_id"
	columnUniqueID       = "unique_id"
	columnTitle          = "title"
	columnContentHTML    = "content_html"
	columnContentText    = "content_text"
	columnURL            = "url"
	columnExternalURL    = "external_url"
	columnSummary        = "summary"
	columnImageURL       = "image_url"
	columnBannerImageURL = "banner_image_url"
	columnDatePublished  = "date_published"
	columnDateModified   = "date_modified"
)

// Строка из таблицы статей. Любая колонка может отсутствовать или быть NULL.
type Row interface {
	String(column string) (string, bool)
	Time(column string) (time.Time, bool)
}

// Строка, прочитанная через sqlx MapScan
type MapRow map[string]any

var _ Row = MapRow(nil)

func (r MapRow) String(column string) (string, bool) {
	switch v := r[column].(type) {
	case string:
		return v, true
	case []byte:
		// lib/pq отдает text как []byte при сканировании в interface{}
		return string(v), true
	default:
		return "", false
	}
}

func (r MapRow) Time(column string) (time.Time, bool) {
	switch v := r[column].(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	default:
		return time.Time{}, false
	}
}
