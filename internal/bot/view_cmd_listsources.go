package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit/markup"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
	"github.com/samber/lo"
)

type SourceLister interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

func ViewCmdListSources(lister SourceLister) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		sources, err := lister.Sources(ctx)
		if err != nil {
			return err
		}

		return replyText(bot, update, formatSources(sources))
	}
}

func formatSources(sources []model.Source) string {
	if len(sources) == 0 {
		return "Источников пока нет\\. Добавьте первый через /addsource"
	}

	sourceInfos := lo.Map(sources, func(source model.Source, _ int) string {
		return formatSource(source)
	})

	return fmt.Sprintf(
		"Список источников \\(всего %d\\):\n\n%s",
		len(sources),
		strings.Join(sourceInfos, "\n\n"),
	)
}

func formatSource(source model.Source) string {
	return fmt.Sprintf(
		"🌐 *%s*\nID: `%d`\nТип: %s\nURL фида: %s",
		markup.EscapeForMarkdown(source.Name),
		source.ID,
		markup.EscapeForMarkdown(source.Kind),
		markup.EscapeForMarkdown(source.FeedURL),
	)
}
