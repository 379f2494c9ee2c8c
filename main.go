package main

import (
	"CoverBot/ai/gpt"
	"CoverBot/bot"
	"CoverBot/bot/flows"
	"CoverBot/bot/journey"
	"CoverBot/bot/journey/motor"
	"CoverBot/impl/core"
	"CoverBot/internal/config"
	"CoverBot/internal/database"
	"CoverBot/internal/http-server/api"
	"CoverBot/internal/lib/logger"
	"CoverBot/internal/lib/sl"
	"CoverBot/internal/metrics"
	"CoverBot/internal/service/vehicle"
	"CoverBot/internal/ws"
	"context"
	"flag"
	"log/slog"

	"github.com/joho/godotenv"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	// optional; real environment variables take precedence
	_ = godotenv.Load()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, motor.Product, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
			tgBot = nil
		} else {
			// Set up Telegram handler for the logger
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting coverbot", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)
	handler.SetFileSigning(conf.Journey.FileSecret, conf.Journey.FileTTL)

	var storage journey.Storage = journey.NewMemoryStorage()
	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		storage = db
		handler.SetRepository(db)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	} else if conf.SQLite.Enabled {
		lite, err := repository.NewSQLite(conf.SQLite.Path, lg)
		if err != nil {
			lg.With(
				sl.Err(err),
				slog.String("path", conf.SQLite.Path),
			).Error("sqlite storage")
		} else {
			defer func() { _ = lite.Close() }()
			storage = lite
			lg.With(slog.String("path", conf.SQLite.Path)).Info("sqlite storage initialized")
		}
	}

	catalog, err := flows.MotorCatalog()
	if err != nil {
		lg.Error("journey catalog", sl.Err(err))
		return
	}

	hub := ws.NewHub(lg)
	hub.SetHandler(handler)
	go hub.Run(context.Background())

	presenters := journey.Presenters{hub}
	if tgBot != nil {
		presenters = append(presenters, tgBot)
	}

	jm := metrics.New()
	vehicles := vehicle.NewVehicleService(conf, lg)
	opts := []journey.EngineOption{
		journey.WithPresenter(presenters),
		journey.WithMetrics(jm),
		journey.WithMaxTransitions(conf.Journey.MaxTransitions),
	}
	if !conf.Journey.Pacing {
		opts = append(opts, journey.WithPacer(journey.NoPacer{}))
	}
	opts = append(opts, flows.NewLoaders(vehicles, conf.Journey.PaymentFailRate, lg).Options()...)

	engine := journey.NewEngine(storage, lg, opts...)
	engine.RegisterCatalog(catalog)
	handler.SetEngine(engine)

	if conf.OpenAI.Enabled {
		helper := gpt.NewHelper(conf, lg)
		handler.SetAssistant(helper)
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("assistant initialized")
	}

	if tgBot != nil {
		tgBot.SetJourneyService(handler)
		// Start the bot in a goroutine
		go func() {
			if err := tgBot.Start(); err != nil {
				lg.Error("telegram bot error", sl.Err(err))
			}
		}()
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub, jm.Handler())
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
