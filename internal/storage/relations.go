package storage

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
)

// Авторы, вложения, теги и статусы, сгруппированные по article_id
type relations struct {
	authors     map[string][]model.Author
	attachments map[string][]model.Attachment
	tags        map[string][]string
	statuses    map[string]model.ArticleStatus
}

func loadRelations(ctx context.Context, q sqlx.QueryerContext, articleIDs []string) (relations, error) {
	r := relations{
		authors:     make(map[string][]model.Author),
		attachments: make(map[string][]model.Attachment),
		tags:        make(map[string][]string),
		statuses:    make(map[string]model.ArticleStatus),
	}

	if len(articleIDs) == 0 {
		return r, nil
	}

	var authors []dbAuthor
	if err := selectBuilder(ctx, q, &authors, selectRelationsQuery(tableAuthors, authorColumns, articleIDs)); err != nil {
		return r, err
	}
	for _, a := range authors {
		r.authors[a.ArticleID] = append(r.authors[a.ArticleID], a.toModel())
	}

	var attachments []dbAttachment
	if err := selectBuilder(ctx, q, &attachments, selectRelationsQuery(tableAttachments, attachmentColumns, articleIDs)); err != nil {
		return r, err
	}
	for _, a := range attachments {
		r.attachments[a.ArticleID] = append(r.attachments[a.ArticleID], a.toModel())
	}

	var tags []dbTag
	if err := selectBuilder(ctx, q, &tags, selectRelationsQuery(tableTags, tagColumns, articleIDs)); err != nil {
		return r, err
	}
	for _, t := range tags {
		r.tags[t.ArticleID] = append(r.tags[t.ArticleID], t.Tag)
	}

	var statuses []dbStatus
	if err := selectBuilder(ctx, q, &statuses, selectRelationsQuery(tableStatuses, statusColumns, articleIDs)); err != nil {
		return r, err
	}
	for _, s := range statuses {
		r.statuses[s.ArticleID] = model.ArticleStatus(s)
	}

	return r, nil
}

func selectBuilder(ctx context.Context, q sqlx.QueryerContext, dest any, builder sq.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

// Внутренние модели для работы с БД, чтобы правильно мапить их на колонки в таблицах
type dbAuthor struct {
	ArticleID    string `db:"article_id"`
	Name         string `db:"name"`
	URL          string `db:"url"`
	AvatarURL    string `db:"avatar_url"`
	EmailAddress string `db:"email_address"`
}

func (a dbAuthor) toModel() model.Author {
	return model.Author{
		Name:         a.Name,
		URL:          a.URL,
		AvatarURL:    a.AvatarURL,
		EmailAddress: a.EmailAddress,
	}
}

type dbAttachment struct {
	ArticleID         string `db:"article_id"`
	URL               string `db:"url"`
	MimeType          string `db:"mime_type"`
	Title             string `db:"title"`
	SizeInBytes       int64  `db:"size_in_bytes"`
	DurationInSeconds int64  `db:"duration_in_seconds"`
}

func (a dbAttachment) toModel() model.Attachment {
	return model.Attachment{
		URL:               a.URL,
		MimeType:          a.MimeType,
		Title:             a.Title,
		SizeInBytes:       a.SizeInBytes,
		DurationInSeconds: a.DurationInSeconds,
	}
}

type dbTag struct {
	ArticleID string `db:"article_id"`
	Tag       string `db:"tag"`
}

type dbStatus struct {
	ArticleID   string    `db:"article_id"`
	Read        bool      `db:"read"`
	Starred     bool      `db:"starred"`
	UserDeleted bool      `db:"user_deleted"`
	DateArrived time.Time `db:"date_arrived"`
}
