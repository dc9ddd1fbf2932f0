package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/database"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

// Store bundles the repositories of one backend.
type Store struct {
	Backend string
	Sweets  SweetRepository
	Users   UserRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected by DB_DRIVER.
func Open(ctx context.Context) (*Store, error) {
	driver := config.DatabaseDriver()
	timeout := config.DBTimeout()

	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "mongo", "":
		client, db, err := database.ConnectMongo(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			return nil, err
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			logger.Warn("repositories: ensure indexes", "error", err)
		}
		return NewMongoStore(client, db, timeout), nil
	default:
		db, err := database.OpenSQL(driver, config.DatabaseDSN())
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(db, driver, timeout)
		if err != nil {
			_ = database.CloseSQL(db)
			return nil, err
		}
		return store, nil
	}
}

// NewMongoStore wraps an open Mongo database.
func NewMongoStore(client *mongo.Client, db *mongo.Database, timeout time.Duration) *Store {
	return &Store{
		Backend: "mongo",
		Sweets:  NewMongoSweetRepository(db, timeout),
		Users:   NewMongoUserRepository(db, timeout),
		ping:    func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:   client.Disconnect,
	}
}

// NewSQLStore migrates the schema and wraps an open gorm connection.
func NewSQLStore(db *gorm.DB, driver string, timeout time.Duration) (*Store, error) {
	if err := db.AutoMigrate(&models.Sweet{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("repositories: migrate: %w", err)
	}
	return &Store{
		Backend: driver,
		Sweets:  NewSQLSweetRepository(db, timeout),
		Users:   NewSQLUserRepository(db, timeout),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error { return database.CloseSQL(db) },
	}, nil
}

// NewMemoryStore returns an empty process-local store.
func NewMemoryStore() *Store {
	return &Store{
		Backend: "memory",
		Sweets:  NewMemorySweetRepository(),
		Users:   NewMemoryUserRepository(),
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
