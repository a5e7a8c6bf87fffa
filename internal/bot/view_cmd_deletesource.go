package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit"
	"github.com/kovalyov-valentin/feed-article-store/internal/storage"
)

type SourceDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// /deletesource 42
func ViewCmdDeleteSource(deleter SourceDeleter) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		id, err := botkit.ParseInt64(update.Message.CommandArguments())
		if err != nil {
			return replyText(bot, update, "Укажите ID источника: `/deletesource 42`")
		}

		err = deleter.Delete(ctx, id)
		if errors.Is(err, storage.ErrSourceNotFound) {
			return replyText(bot, update, fmt.Sprintf("Источник `%d` не найден", id))
		}
		if err != nil {
			return err
		}

		return replyText(bot, update, fmt.Sprintf("Источник `%d` удален", id))
	}
}
