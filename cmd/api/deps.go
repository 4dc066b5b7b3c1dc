package main

import (
	"context"
	"log"

	"ledgerlink/internal/domain/account"
	"ledgerlink/internal/domain/aggregation"
	"ledgerlink/internal/domain/banklink"
	"ledgerlink/internal/domain/notification"
	"ledgerlink/internal/domain/transfer"
	"ledgerlink/internal/infrastructure/aggregator"
	"ledgerlink/internal/infrastructure/crypto"
	"ledgerlink/internal/infrastructure/firebase"
	"ledgerlink/internal/infrastructure/payments"
	"ledgerlink/internal/infrastructure/postgres"
	"ledgerlink/internal/infrastructure/rediscache"
	httphandlers "ledgerlink/internal/interfaces/http"
	"ledgerlink/internal/shared/auth"
	"ledgerlink/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB    *postgres.DB
	Cache *rediscache.AccountCache

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	UserHandler         *httphandlers.UserHandler
	BankLinkHandler     *httphandlers.BankLinkHandler
	AccountHandler      *httphandlers.AccountHandler
	TransactionHandler  *httphandlers.TransactionHandler
	TransferHandler     *httphandlers.TransferHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT *auth.JWT

	// Sync service (for scheduler)
	AccountSyncService *aggregation.AccountSyncService

	// Repositories (for scheduler job provider)
	UserRepo *postgres.UserRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to database and apply pending migrations
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize encryptor for access tokens at rest
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	bankLinkRepo := postgres.NewBankLinkRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Account-list cache is optional: without Redis every read hits
	// the database.
	var cache *rediscache.AccountCache
	if cfg.Redis.Addr != "" {
		cache, err = rediscache.NewAccountCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.AccountCacheTTL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, account caching disabled: %v", err)
			cache = nil
		} else {
			log.Println("Connected to Redis")
		}
	}

	// External clients
	aggregatorClient := aggregator.NewClient(aggregator.Config{
		ClientID:    cfg.Aggregator.ClientID,
		Secret:      cfg.Aggregator.Secret,
		Environment: cfg.Aggregator.Environment,
	})
	paymentsClient := payments.NewClient(payments.Config{
		Key:         cfg.Payments.Key,
		Secret:      cfg.Payments.Secret,
		Environment: cfg.Payments.Environment,
	})

	// Push messenger is optional: without Firebase credentials the
	// notification service skips pushes.
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcmClient, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, notificationRepo.DeactivateToken)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase messaging: %v", err)
		} else {
			messenger = fcmClient
			log.Println("Firebase messaging initialized")
		}
	}

	// Domain services
	accountService := account.NewService(accountRepo)
	notificationService := notification.NewService(notificationRepo, messenger)

	// The concrete cache satisfies both invalidation interfaces; a nil
	// *AccountCache must stay a nil interface value.
	var linkCache banklink.AccountCacheInvalidator
	var syncCache aggregation.AccountCacheInvalidator
	var handlerCache httphandlers.AccountCache
	if cache != nil {
		linkCache = cache
		syncCache = cache
		handlerCache = cache
	}

	linkService := banklink.NewService(bankLinkRepo, aggregatorClient, paymentsClient, linkCache)
	accountSyncService := aggregation.NewAccountSyncService(aggregatorClient, linkService, accountService, syncCache)
	transactionService := aggregation.NewTransactionService(aggregatorClient, linkService)
	transferService := transfer.NewService(linkService, paymentsClient)

	// Auth
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Handlers
	authHandler := httphandlers.NewAuthHandler(userRepo, paymentsClient, jwt)
	userHandler := httphandlers.NewUserHandler(userRepo)
	bankLinkHandler := httphandlers.NewBankLinkHandler(linkService, userRepo, notificationService)
	accountHandler := httphandlers.NewAccountHandler(accountService, accountSyncService, handlerCache)
	transactionHandler := httphandlers.NewTransactionHandler(transactionService)
	transferHandler := httphandlers.NewTransferHandler(transferService, notificationService)
	notificationHandler := httphandlers.NewNotificationHandler(notificationService)

	return &Dependencies{
		DB:                  db,
		Cache:               cache,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		BankLinkHandler:     bankLinkHandler,
		AccountHandler:      accountHandler,
		TransactionHandler:  transactionHandler,
		TransferHandler:     transferHandler,
		NotificationHandler: notificationHandler,
		JWT:                 jwt,
		AccountSyncService:  accountSyncService,
		UserRepo:            userRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Cache != nil {
		d.Cache.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
