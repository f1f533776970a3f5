package main

import (
	"flag"
	"log/slog"

	"DonorLink/internal/bot"
	"DonorLink/internal/config"
	repository "DonorLink/internal/database"
	"DonorLink/internal/http-server/api"
	"DonorLink/internal/lib/logger"
	"DonorLink/internal/lib/sl"
	"DonorLink/internal/service/auth"
	"DonorLink/internal/service/chat"
	"DonorLink/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram alert bot if enabled
	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
		}
	}

	lg.Info("starting donorlink", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	authService := auth.NewAuthService(conf, lg)
	chatService := chat.NewChatService(lg)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		authService.SetRepository(db)
		chatService.SetRepository(db)
		if err := db.EnsureMessageIndexes(); err != nil {
			lg.Error("ensure message indexes", sl.Err(err))
		}
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	hub := ws.NewHub(lg)
	hub.SetHandler(chatService)
	go hub.Run()

	// *** blocking start with http server ***
	err = api.New(conf, lg, authService, chatService, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
