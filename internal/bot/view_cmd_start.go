package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit"
)

func ViewCmdStart() botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		return replyText(bot, update, "Привет\\! Я собираю статьи из лент и публикую их в канал\\.\n\n"+
			"/listsources \\- список источников\n"+
			"/addsource \\- добавить источник\n"+
			"/deletesource \\- удалить источник\n"+
			"/sourceinfo \\- сколько статей у источника\n"+
			"/article \\- статья по ID")
	}
}
