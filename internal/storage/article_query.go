package storage

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/samber/lo"
)

const (
	tableArticles    = "articles"
	tableAuthors     = "article_authors"
	tableAttachments = "article_attachments"
	tableTags        = "article_tags"
	tableStatuses    = "statuses"
)

// Postgres ждет плейсхолдеры вида $1, $2
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Все колонки articles в порядке схемы
var articleColumns = []string{
	columnArticleID,
	columnFeedID,
	columnUniqueID,
	columnTitle,
	columnContentHTML,
	columnContentText,
	columnURL,
	columnExternalURL,
	columnSummary,
	columnImageURL,
	columnBannerImageURL,
	columnDatePublished,
	columnDateModified,
}

func selectArticlesQuery(where sq.Sqlizer) sq.SelectBuilder {
	return psql.Select(articleColumns...).From(tableArticles).Where(where)
}

// Непрочитанные статьи, которые пришли не раньше since, самые старые первыми
func selectUnreadArticlesQuery(since time.Time, limit uint64) sq.SelectBuilder {
	columns := lo.Map(articleColumns, func(column string, _ int) string {
		return "a." + column
	})

	return psql.Select(columns...).
		From(tableArticles + " a").
		Join(tableStatuses + " s ON s.article_id = a.article_id").
		Where(sq.Eq{"s.read": false, "s.user_deleted": false}).
		Where(sq.GtOrEq{"s.date_arrived": since}).
		OrderBy("s.date_arrived ASC").
		Limit(limit)
}

// INSERT с заменой: колонки, которых нет в записи, после замены станут NULL
func insertArticleQuery(record Record) sq.InsertBuilder {
	assignments := make([]string, 0, len(articleColumns)-1)
	for _, column := range articleColumns {
		if column == columnArticleID {
			continue
		}

		if _, ok := record[column]; ok {
			assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
		} else {
			assignments = append(assignments, fmt.Sprintf("%s = NULL", column))
		}
	}

	return psql.Insert(tableArticles).
		SetMap(record).
		Suffix("ON CONFLICT (" + columnArticleID + ") DO UPDATE SET " + strings.Join(assignments, ", "))
}

func updateArticleQuery(articleID string, changes Record) sq.UpdateBuilder {
	return psql.Update(tableArticles).
		SetMap(changes).
		Where(sq.Eq{columnArticleID: articleID})
}

func deleteRelationsQuery(table string, articleIDs []string) sq.DeleteBuilder {
	return psql.Delete(table).Where(sq.Eq{columnArticleID: articleIDs})
}

func selectRelationsQuery(table string, columns []string, articleIDs []string) sq.SelectBuilder {
	return psql.Select(columns...).From(table).Where(sq.Eq{columnArticleID: articleIDs})
}

// Вставка авторов, вложений и тегов одной статьи.
// Возвращает false, если вставлять нечего.
func insertAuthorsQuery(articleID string, authors []model.Author) (sq.InsertBuilder, bool) {
	q := psql.Insert(tableAuthors).Columns(authorColumns...)
	for _, author := range authors {
		q = q.Values(articleID, author.Name, author.URL, author.AvatarURL, author.EmailAddress)
	}
	return q, len(authors) > 0
}

func insertAttachmentsQuery(articleID string, attachments []model.Attachment) (sq.InsertBuilder, bool) {
	q := psql.Insert(tableAttachments).Columns(attachmentColumns...)
	for _, a := range attachments {
		q = q.Values(articleID, a.URL, a.MimeType, a.Title, a.SizeInBytes, a.DurationInSeconds)
	}
	return q, len(attachments) > 0
}

func insertTagsQuery(articleID string, tags []string) (sq.InsertBuilder, bool) {
	q := psql.Insert(tableTags).Columns(tagColumns...)
	for _, tag := range tags {
		q = q.Values(articleID, tag)
	}
	return q, len(tags) > 0
}

// Статусы создаются один раз, существующие не трогаем
func insertStatusesQuery(articleIDs []string, read bool, arrived time.Time) sq.InsertBuilder {
	q := psql.Insert(tableStatuses).Columns(statusColumns...)
	for _, id := range articleIDs {
		q = q.Values(id, read, false, false, arrived)
	}
	return q.Suffix("ON CONFLICT (" + columnArticleID + ") DO NOTHING")
}

func markReadQuery(articleID string) sq.UpdateBuilder {
	return psql.Update(tableStatuses).
		Set("read", true).
		Where(sq.Eq{columnArticleID: articleID})
}

var (
	authorColumns     = []string{columnArticleID, "name", "url", "avatar_url", "email_address"}
	attachmentColumns = []string{columnArticleID, "url", "mime_type", "title", "size_in_bytes", "duration_in_seconds"}
	tagColumns        = []string{columnArticleID, "tag"}
	statusColumns     = []string{columnArticleID, "read", "starred", "user_deleted", "date_arrived"}
)
