package bot

import (
	"context"
	"fmt"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit"
	"github.com/kovalyov-valentin/feed-article-store/internal/model"
)

type SourceStorage interface {
	Add(ctx context.Context, source model.Source) (int64, error)
}

// /addsource {"name": "Go blog", "url": "https://go.dev/blog/feed.atom", "kind": "feed"}
func ViewCmdAddSource(storage SourceStorage) botkit.ViewFunc {
	type addSourceArgs struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Kind string `json:"kind"`
	}

	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addSourceArgs](update.Message.CommandArguments())
		if err != nil {
			return replyText(bot, update, "Не удалось разобрать аргументы\\. Пример: `/addsource {\"name\": \"...\", \"url\": \"...\"}`")
		}

		source, err := sourceFromArgs(args.Name, args.URL, args.Kind)
		if err != nil {
			return replyText(bot, update, "Некорректный источник\\. Нужны name и http\\(s\\) url, kind: rss или feed")
		}

		sourceID, err := storage.Add(ctx, source)
		if err != nil {
			return err
		}

		return replyText(bot, update, fmt.Sprintf(
			"Источник добавлен с ID: `%d`\\. Используйте этот ID для управления источником\\.",
			sourceID,
		))
	}
}

func sourceFromArgs(name, rawURL, kind string) (model.Source, error) {
	if name == "" {
		return model.Source{}, fmt.Errorf("empty source name")
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.Source{}, fmt.Errorf("invalid feed url %q", rawURL)
	}

	switch kind {
	case "":
		kind = model.SourceKindRSS
	case model.SourceKindRSS, model.SourceKindFeed:
	default:
		return model.Source{}, fmt.Errorf("unknown source kind %q", kind)
	}

	return model.Source{
		Name:    name,
		FeedURL: u.String(),
		Kind:    kind,
	}, nil
}

func replyText(bot *tgbotapi.BotAPI, update tgbotapi.Update, text string) error {
	reply := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdownV2

	_, err := bot.Send(reply)
	return err
}
