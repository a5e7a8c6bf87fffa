package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/kovalyov-valentin/feed-article-store/internal/storage"
	"github.com/samber/lo"
)

type SourceGetter interface {
	SourceByID(ctx context.Context, id int64) (*model.Source, error)
}

type FeedArticles interface {
	ArticlesForFeed(ctx context.Context, feedID string) (model.Articles, error)
}

// /sourceinfo 42
func ViewCmdSourceInfo(sources SourceGetter, articles FeedArticles) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		id, err := botkit.ParseInt64(update.Message.CommandArguments())
		if err != nil {
			return replyText(bot, update, "Укажите ID источника: `/sourceinfo 42`")
		}

		source, err := sources.SourceByID(ctx, id)
		if errors.Is(err, storage.ErrSourceNotFound) {
			return replyText(bot, update, fmt.Sprintf("Источник `%d` не найден", id))
		}
		if err != nil {
			return err
		}

		feedArticles, err := articles.ArticlesForFeed(ctx, model.FeedIDForSource(source.ID))
		if err != nil {
			return err
		}

		return replyText(bot, update, formatSourceInfo(*source, feedArticles))
	}
}

func formatSourceInfo(source model.Source, articles model.Articles) string {
	unread := lo.Filter(articles.Statuses(), func(status model.ArticleStatus, _ int) bool {
		return !status.Read && !status.UserDeleted
	})

	return fmt.Sprintf(
		"%s\nСтатей: %d, непрочитанных: %d",
		formatSource(source),
		len(articles.IDs()),
		len(unread),
	)
}
