package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
)

// Хранилище статей в Postgres.
// Одна БД обслуживает один аккаунт, поэтому accountID задается при создании.
type ArticlePostgresStorage struct {
	db        *sqlx.DB
	accountID string
	// Для тестов и чтобы время прихода статей было одинаковым внутри одного обновления
	now func() time.Time
}

func NewArticleStorage(db *sqlx.DB, accountID string) *ArticlePostgresStorage {
	return &ArticlePostgresStorage{
		db:        db,
		accountID: accountID,
		now:       time.Now,
	}
}

// Общее у *sqlx.Conn и *sqlx.Tx
type queryExecer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Итог обновления ленты
type UpdateResult struct {
	// Статьи, которых раньше не было
	New model.Articles
	// Статьи, которые уже были, но изменились
	Updated model.Articles
}

// Все статьи ленты со статусами
func (s *ArticlePostgresStorage) ArticlesForFeed(ctx context.Context, feedID string) (model.Articles, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return s.fetchArticles(ctx, conn, selectArticlesQuery(sq.Eq{columnFeedID: feedID}))
}

func (s *ArticlePostgresStorage) ArticlesByIDs(ctx context.Context, ids []string) (model.Articles, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return s.fetchArticles(ctx, conn, selectArticlesQuery(sq.Eq{columnArticleID: ids}))
}

// Непрочитанные статьи, пришедшие после since. Нужны notifier.
func (s *ArticlePostgresStorage) AllUnread(ctx context.Context, since time.Time, limit uint64) (model.Articles, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return s.fetchArticles(ctx, conn, selectUnreadArticlesQuery(since.UTC(), limit))
}

func (s *ArticlePostgresStorage) MarkRead(ctx context.Context, articleID string) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return execBuilder(ctx, conn, markReadQuery(articleID))
}

// Создаем статусы для статей, у которых их еще нет
func (s *ArticlePostgresStorage) EnsureStatuses(ctx context.Context, articleIDs []string, read bool) error {
	if len(articleIDs) == 0 {
		return nil
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = s.insertStatuses(ctx, conn, articleIDs, read)
	return err
}

// Вставляем статусы и возвращаем их в том виде, в каком они легли в БД.
// Уже существующие статусы не перезаписываются.
func (s *ArticlePostgresStorage) insertStatuses(ctx context.Context, e sqlx.ExecerContext, articleIDs []string, read bool) ([]model.ArticleStatus, error) {
	arrived := s.now().UTC()

	if err := execBuilder(ctx, e, insertStatusesQuery(articleIDs, read, arrived)); err != nil {
		return nil, err
	}

	statuses := make([]model.ArticleStatus, 0, len(articleIDs))
	for _, id := range articleIDs {
		statuses = append(statuses, model.ArticleStatus{ArticleID: id, Read: read, DateArrived: arrived})
	}

	return statuses, nil
}

// Сохраняем свежие элементы ленты.
// Новые статьи вставляются целиком, изменившиеся обновляются только дельтой.
// Все делается в одной транзакции.
func (s *ArticlePostgresStorage) UpdateFeed(ctx context.Context, feedID string, items []model.ParsedItem) (UpdateResult, error) {
	var result UpdateResult

	incoming := ArticlesFromParsedItems(items, s.accountID, feedID)
	if len(incoming) == 0 {
		return result, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx: %w", err)
	}
	// После Commit Rollback ничего не делает
	defer tx.Rollback()

	var (
		incomingByID = incoming.ByID()
		ids          = incoming.IDs()
	)

	existing, err := s.fetchArticles(ctx, tx, selectArticlesQuery(sq.Eq{columnArticleID: ids}))
	if err != nil {
		return result, fmt.Errorf("fetch existing articles: %w", err)
	}
	existingByID := existing.ByID()

	for _, id := range ids {
		if id == "" {
			log.Printf("[WARN] skipping article without id in feed %s", feedID)
			continue
		}

		article := incomingByID[id]

		stored, ok := existingByID[id]
		if !ok {
			if err := insertArticle(ctx, tx, article); err != nil {
				return result, fmt.Errorf("insert article %s: %w", id, err)
			}
			result.New = append(result.New, article)
			continue
		}

		updated, err := updateArticle(ctx, tx, article, stored)
		if err != nil {
			return result, fmt.Errorf("update article %s: %w", id, err)
		}
		if updated {
			result.Updated = append(result.Updated, article)
		}
	}

	if newIDs := result.New.IDs(); len(newIDs) > 0 {
		if _, err := s.insertStatuses(ctx, tx, newIDs, false); err != nil {
			return result, fmt.Errorf("insert statuses: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit: %w", err)
	}

	return result, nil
}

func insertArticle(ctx context.Context, tx queryExecer, article model.Article) error {
	if err := execBuilder(ctx, tx, insertArticleQuery(ArticleRecord(article))); err != nil {
		return err
	}

	return replaceRelations(ctx, tx, article)
}

// Обновляет статью, если она отличается от сохраненной.
// Возвращает true, если что-то было записано.
func updateArticle(ctx context.Context, tx queryExecer, article, stored model.Article) (bool, error) {
	changes := storedArticleChanges(article, stored)
	relationsChanged := !article.EqualRelations(stored)

	if changes == nil && !relationsChanged {
		return false, nil
	}

	if changes != nil {
		if err := execBuilder(ctx, tx, updateArticleQuery(article.ArticleID, changes)); err != nil {
			return false, err
		}
	}

	if relationsChanged {
		if err := replaceRelations(ctx, tx, article); err != nil {
			return false, err
		}
	}

	return true, nil
}

// Перезаписываем авторов, вложения и теги статьи
func replaceRelations(ctx context.Context, tx queryExecer, article model.Article) error {
	ids := []string{article.ArticleID}

	for _, table := range []string{tableAuthors, tableAttachments, tableTags} {
		if err := execBuilder(ctx, tx, deleteRelationsQuery(table, ids)); err != nil {
			return err
		}
	}

	if q, ok := insertAuthorsQuery(article.ArticleID, article.Authors); ok {
		if err := execBuilder(ctx, tx, q); err != nil {
			return err
		}
	}

	if q, ok := insertAttachmentsQuery(article.ArticleID, article.Attachments); ok {
		if err := execBuilder(ctx, tx, q); err != nil {
			return err
		}
	}

	if q, ok := insertTagsQuery(article.ArticleID, article.Tags); ok {
		if err := execBuilder(ctx, tx, q); err != nil {
			return err
		}
	}

	return nil
}

// Читаем строки статей, подгружаем к ним авторов, вложения, теги и статусы.
// Строки, из которых не получилось собрать статью, пропускаем.
func (s *ArticlePostgresStorage) fetchArticles(ctx context.Context, q queryExecer, builder sq.SelectBuilder) (model.Articles, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articleRows []MapRow
	for rows.Next() {
		row := MapRow{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		articleRows = append(articleRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(articleRows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(articleRows))
	for _, row := range articleRows {
		if id, ok := row.String(columnArticleID); ok {
			ids = append(ids, id)
		}
	}

	related, err := loadRelations(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	articles := make(model.Articles, 0, len(articleRows))
	for _, row := range articleRows {
		id, _ := row.String(columnArticleID)

		article, err := ArticleFromRow(row, related.authors[id], related.attachments[id], related.tags[id], s.accountID)
		if err != nil {
			if errors.Is(err, ErrMissingColumn) {
				log.Printf("[WARN] skipping article row %s: %v", id, err)
				continue
			}
			return nil, err
		}

		if status, ok := related.statuses[id]; ok {
			article.Status = &status
		}

		articles = append(articles, article)
	}

	// У статьи всегда должен быть статус. Если его нет, создаем непрочитанный.
	if !articles.EachHasAStatus() {
		statuses, err := s.insertStatuses(ctx, q, articles.MissingStatuses().IDs(), false)
		if err != nil {
			return nil, fmt.Errorf("insert missing statuses: %w", err)
		}

		created := make(map[string]model.ArticleStatus, len(statuses))
		for _, status := range statuses {
			created[status.ArticleID] = status
		}

		for i := range articles {
			if status, ok := created[articles[i].ArticleID]; ok && articles[i].Status == nil {
				articles[i].Status = &status
			}
		}
	}

	return articles, nil
}

func execBuilder(ctx context.Context, e sqlx.ExecerContext, builder sq.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	if _, err := e.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}
