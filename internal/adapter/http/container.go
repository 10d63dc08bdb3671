package http

import (
	"context"
	"fmt"

	"todolist/internal/adapter/database/postgres"
	pgrepository "todolist/internal/adapter/database/postgres/repository"
	"todolist/internal/adapter/database/sqlite"
	sqliterepository "todolist/internal/adapter/database/sqlite/repository"
	"todolist/internal/adapter/http/handler"
	"todolist/internal/adapter/http/store"
	"todolist/internal/adapter/storage"
	"todolist/internal/core/port"
	"todolist/internal/core/service"
	"todolist/internal/core/telemetry"
	"todolist/pkg/config"
	"todolist/pkg/logger"
)

// Container is the composition root. It owns the pool handle and closes it
// in Close.
type Container struct {
	TodoRepo    port.TodoRepository
	CommentRepo port.CommentRepository

	TodoService    port.TodoService
	CommentService port.CommentService

	Images *storage.LocalStorage
	Store  *store.Store

	TodoHandler    *handler.TodoHandler
	CommentHandler *handler.CommentHandler
	PageHandler    *handler.PageHandler

	closeDB func()
}

func NewContainer(ctx context.Context, cfg *config.AppConfig, log *logger.Logger, probe port.Telemetry, metrics *telemetry.AppMetrics) (*Container, error) {
	container := &Container{}

	if err := container.openRepositories(ctx, cfg, probe); err != nil {
		return nil, err
	}

	images, err := storage.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.URLPrefix, log.Logger, metrics)

	if err != nil {
		container.Close()
		return nil, err
	}

	todoSvc := service.NewTodoService(container.TodoRepo, probe, log.Logger)
	commentSvc := service.NewCommentService(container.CommentRepo, probe, log.Logger)

	container.Images = images
	container.Store = store.New()
	container.TodoService = todoSvc
	container.CommentService = commentSvc
	container.TodoHandler = handler.NewTodoHandler(todoSvc, log)
	container.CommentHandler = handler.NewCommentHandler(commentSvc)
	container.PageHandler = handler.NewPageHandler(todoSvc, commentSvc, images, container.Store, log)

	return container, nil
}

func (c *Container) openRepositories(ctx context.Context, cfg *config.AppConfig, probe port.Telemetry) error {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, postgres.Config{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
		})

		if err != nil {
			return err
		}

		c.TodoRepo = pgrepository.NewTodoRepository(db, probe)
		c.CommentRepo = pgrepository.NewCommentRepository(db, probe)
		c.closeDB = db.Close

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:       cfg.Database.Path,
			Name:       cfg.ServiceName,
			MaxConns:   cfg.Database.MaxConns,
			LogQueries: cfg.Database.LogQueries,
		})

		if err != nil {
			return err
		}

		c.TodoRepo = sqliterepository.NewTodoRepository(db, probe)
		c.CommentRepo = sqliterepository.NewCommentRepository(db, probe)
		c.closeDB = func() { db.Close() }

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	return nil
}

func (c *Container) Close() {
	if c.closeDB != nil {
		c.closeDB()
	}
}
