package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blogmhq/blogm/internal/blogservice"
	"github.com/blogmhq/blogm/internal/common"
	"github.com/blogmhq/blogm/internal/mailservice"
	"github.com/blogmhq/blogm/internal/notifyservice"
	"github.com/blogmhq/blogm/internal/subscriberservice"
	"github.com/blogmhq/blogm/internal/userservice"
)

type application struct {
	config            *Config
	logger            *slog.Logger
	userService       *userservice.UserService
	blogService       *blogservice.BlogService
	subscriberService *subscriberservice.SubscriberService
	notifier          *notifyservice.Publisher
	notifyLifecycle   *notifyservice.Service
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()

	// The broker connects lazily; a RabbitMQ outage at boot degrades the
	// notification pipeline instead of killing the API.
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker := common.NewMessageBroker(URI)

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	mailer := mailservice.NewMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, mailservice.NewTemplate())

	tokens := userservice.NewTokenManager(cfg.JWTSecret, userservice.AccessTokenTime)
	tokenStore := userservice.NewRedisTokenStore(redisClient)

	subscriberService := subscriberservice.NewSubscriberService(db, mailer, logger, cfg.WebsiteURL, cfg.WebsiteName)

	worker := notifyservice.NewWorker(broker, subscriberService, mailer, logger, cfg.WebsiteURL, cfg.WebsiteName)

	app := &application{
		config:            cfg,
		logger:            logger,
		userService:       userservice.NewUserService(db, tokens, tokenStore),
		blogService:       blogservice.NewBlogService(db, cache),
		subscriberService: subscriberService,
		notifier:          notifyservice.NewPublisher(broker, logger, cfg.WebsiteURL),
		notifyLifecycle:   notifyservice.NewService(broker, worker, logger),
	}

	app.notifyLifecycle.Initialize()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
