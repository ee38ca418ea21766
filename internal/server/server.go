package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/docgen/internal/cache"
	"github.com/emrgen/docgen/internal/compress"
	"github.com/emrgen/docgen/internal/config"
	"github.com/emrgen/docgen/internal/jobs"
	"github.com/emrgen/docgen/internal/mail"
	"github.com/emrgen/docgen/internal/queue"
	"github.com/emrgen/docgen/internal/render"
	"github.com/emrgen/docgen/internal/service"
	"github.com/emrgen/docgen/internal/storage"
	"github.com/emrgen/docgen/internal/store"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// App holds the services built from a config.
type App struct {
	Documents *service.DocumentService
	Templates *service.TemplateService
	Pipeline  *service.Pipeline
	Profiles  *service.ProfileService
	closers   []func()
}

// Close releases the connections opened by NewApp in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// NewApp connects the database, cache, renderer, bucket, mail relay and
// event stream named by cfg.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	db, err := config.GetDb(cfg)
	if err != nil {
		return nil, err
	}
	docStore := store.NewGormStore(db)
	if err := docStore.Migrate(); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		app.closers = append(app.closers, func() { _ = sqlDB.Close() })
	}

	var templateCache cache.TemplateCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = client.Close() })

		encoder, err := compress.New(cfg.Cache.Compression)
		if err != nil {
			return nil, err
		}
		templateCache = cache.NewRedisTemplateCache(client, encoder, cfg.Cache.TTL)
	}

	renderer, err := render.New(render.Options{
		Engine:      cfg.Render.Engine,
		Timeout:     cfg.Render.Timeout,
		Concurrency: int64(cfg.Render.Concurrency),
		ChromePath:  cfg.Render.ChromePath,
	})
	if err != nil {
		return nil, err
	}

	bucket, err := storage.New(ctx, storage.Options{
		Driver:  cfg.Storage.Driver,
		Bucket:  cfg.Storage.Bucket,
		Dir:     cfg.Storage.Dir,
		BaseURL: cfg.Storage.BaseURL,
		Region:  cfg.Storage.Region,
	})
	if err != nil {
		return nil, err
	}
	if c, ok := bucket.(io.Closer); ok {
		app.closers = append(app.closers, func() { _ = c.Close() })
	}

	var sender mail.Sender = mail.LogSender{}
	if cfg.Mail.Host != "" {
		sender = mail.NewSMTPSender(mail.SMTPOptions{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	}

	var publisher queue.Publisher = queue.Nop{}
	if cfg.Kafka.Brokers != "" {
		kafka, err := queue.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, kafka.Close)
		publisher = kafka
	}

	app.Templates = service.NewTemplateService(docStore, templateCache)
	app.Documents = service.NewDocumentService(docStore, publisher)
	app.Pipeline = service.NewPipeline(app.Templates, docStore, renderer, bucket, sender, publisher)
	app.Profiles = service.NewProfileService(docStore, bucket)

	ok = true
	return app, nil
}

// Server serves the HTTP API.
type Server struct {
	cfg *config.Config
}

func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() {
	if err := Start(s.cfg); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

func Start(cfg *config.Config) error {
	ctx := context.Background()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var executor *jobs.TaskExecutor
	if cfg.Jobs.TemplateWarmup != "" {
		executor = jobs.NewTaskExecutor(jobs.NewTemplateWarmupTask(cfg.Jobs.TemplateWarmup, app.Templates))
		if err := executor.Run(); err != nil {
			return err
		}
		defer executor.Stop()
	}

	port := ":" + cfg.HTTP.Port
	listener, err := net.Listen("tcp", port)
	if err != nil {
		return err
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", UserHeader},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:              port,
		Handler:           c.Handler(NewHandler(app.Documents, app.Templates, app.Pipeline, app.Profiles).Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting http server on: ", port)
		if err := restServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("error serving http: %v", err)
		}
		logrus.Infof("http server stopped")
	}()

	logrus.Infof("Press Ctrl+C to stop the server")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Render.Timeout+5*time.Second)
	defer cancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error stopping http server: %v", err)
	}

	wg.Wait()
	return nil
}
