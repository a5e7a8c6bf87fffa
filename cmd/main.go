package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/feed-article-store/internal/bot"
	"github.com/kovalyov-valentin/feed-article-store/internal/bot/middleware"
	"github.com/kovalyov-valentin/feed-article-store/internal/botkit"
	"github.com/kovalyov-valentin/feed-article-store/internal/config"
	"github.com/kovalyov-valentin/feed-article-store/internal/fetcher"
	"github.com/kovalyov-valentin/feed-article-store/internal/notifier"
	"github.com/kovalyov-valentin/feed-article-store/internal/storage"
	"github.com/kovalyov-valentin/feed-article-store/internal/summary"
	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Get()

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("[ERROR] failed to create bot: %v", err)
		return
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		log.Printf("[ERROR] failed to connect to database: %v", err)
		return
	}
	defer db.Close()

	var (
		articleStorage = storage.NewArticleStorage(db, cfg.AccountID)
		sourceStorage  = storage.NewSourcePostgresStorage(db)
		fetcher        = fetcher.NewFetcher(
			articleStorage,
			sourceStorage,
			cfg.FetchInterval,
			cfg.FilterKeywords,
		)
		notifier = notifier.New(
			articleStorage,
			summary.NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIPrompt),
			botAPI,
			cfg.NotificationInterval,
			cfg.LookupWindow(),
			cfg.TelegramChannelID,
		)
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Управлять источниками могут только админы канала
	newsBot := botkit.New(botAPI)
	newsBot.RegisterCmdView("start", bot.ViewCmdStart())
	newsBot.RegisterCmdView(
		"addsource",
		middleware.AdminOnly(cfg.TelegramChannelID, bot.ViewCmdAddSource(sourceStorage)),
	)
	newsBot.RegisterCmdView(
		"deletesource",
		middleware.AdminOnly(cfg.TelegramChannelID, bot.ViewCmdDeleteSource(sourceStorage)),
	)
	newsBot.RegisterCmdView("listsources", bot.ViewCmdListSources(sourceStorage))
	newsBot.RegisterCmdView("sourceinfo", bot.ViewCmdSourceInfo(sourceStorage, articleStorage))
	newsBot.RegisterCmdView("article", bot.ViewCmdArticle(articleStorage))

	go func(ctx context.Context) {
		if err := fetcher.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start fetcher: %v", err)
				return
			}

			log.Println("fetcher stopped")
		}
	}(ctx)

	go func(ctx context.Context) {
		if err := notifier.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to start notifier: %v", err)
				return
			}

			log.Println("notifier stopped")
		}
	}(ctx)

	if err := newsBot.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to start bot: %v", err)
			return
		}

		log.Println("bot stopped")
	}
}
