package main

import (
	"AgriHub/bot"
	"AgriHub/impl/core"
	"AgriHub/internal/config"
	repository "AgriHub/internal/database"
	"AgriHub/internal/http-server/api"
	"AgriHub/internal/lib/logger"
	"AgriHub/internal/lib/sl"
	"AgriHub/internal/service/consult"
	"AgriHub/internal/service/sensor"
	"AgriHub/internal/ws"
	"flag"
	"log/slog"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Telegram sink for escalated logs and severe sensor alerts
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting agrihub", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		if err := db.EnsureConversationIndexes(); err != nil {
			lg.Error("ensure conversation indexes", sl.Err(err))
		}
		handler.SetDirectory(db)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	hub := ws.NewHub(lg)
	hub.SetHandler(handler)
	go hub.Run()

	deliverer := ws.NewDeliverer(hub, lg)

	consultService := consult.NewService(lg)
	if db != nil {
		consultService.SetRepository(db)
	}
	consultService.SetHub(hub)
	consultService.SetDeliverer(deliverer)
	handler.SetConsultService(consultService)

	sensorService := sensor.NewService(lg)
	if db != nil {
		sensorService.SetRepository(db)
	}
	sensorService.SetDeliverer(deliverer)
	if tgBot != nil {
		sensorService.SetNotifier(tgBot)
	}
	handler.SetSensorService(sensorService)

	handler.SetBroadcaster(hub)

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
