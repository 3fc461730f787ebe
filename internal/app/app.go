package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/derssen/controller-bot/internal/config"
	"github.com/derssen/controller-bot/internal/domain"
	"github.com/derssen/controller-bot/internal/export"
	"github.com/derssen/controller-bot/internal/ledger"
	"github.com/derssen/controller-bot/internal/scheduler"
	"github.com/derssen/controller-bot/internal/store"
	"github.com/derssen/controller-bot/internal/telegram"
	"github.com/derssen/controller-bot/internal/webhook"
)

type App struct {
	cfg   config.Config
	log   *zap.Logger
	bot   *tgbotapi.BotAPI
	clock *domain.Clock

	repo    store.Repo
	httpSrv *http.Server
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	clock, err := domain.NewClock(cfg.BusinessTZ, cfg.DayBoundaryHour)
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, log: log, bot: bot, clock: clock}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting controller-bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("business_tz", a.cfg.BusinessTZ),
		zap.Int("day_boundary_hour", a.cfg.DayBoundaryHour),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	svc := ledger.New(a.repo, a.clock, a.log)
	exporter := export.New(a.repo, a.clock, a.cfg.ExportPath, a.log)
	a.router = telegram.NewRouter(a.bot, a.log, svc, a.repo, exporter, a.cfg)

	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      webhook.NewHandler(svc, a.clock, a.log).Mux(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, err := a.buildJobs(svc, exporter)
	if err != nil {
		return err
	}
	sched := scheduler.New(a.clock.Location(), a.log, jobs)
	go sched.Run(ctx)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil
		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// buildJobs is the single place background work is registered: the
// nightly auto-close, the workbook export, and the weekday report
// reminder sweep.
func (a *App) buildJobs(svc *ledger.Service, exporter *export.Exporter) ([]*scheduler.Job, error) {
	closeH, closeM, err := config.ParseHHMM(a.cfg.AutoCloseAt)
	if err != nil {
		return nil, err
	}
	exportH, exportM, err := config.ParseHHMM(a.cfg.ExportAt)
	if err != nil {
		return nil, err
	}
	remindH, remindM, err := config.ParseHHMM(a.cfg.ReminderAt)
	if err != nil {
		return nil, err
	}

	return []*scheduler.Job{
		{
			Name: "auto_close", Hour: closeH, Minute: closeM,
			Run: func(ctx context.Context) {
				now := a.clock.Now()
				cutoff := time.Date(now.Year(), now.Month(), now.Day(), closeH, closeM, 0, 0, a.clock.Location())
				if _, err := svc.AutoClose(ctx, cutoff); err != nil {
					a.log.Error("auto close failed", zap.Error(err))
				}
			},
		},
		{
			Name: "export", Hour: exportH, Minute: exportM,
			Run: func(ctx context.Context) {
				if err := exporter.Export(ctx); err != nil {
					a.log.Error("scheduled export failed", zap.Error(err))
				}
			},
		},
		{
			Name: "report_reminder", Hour: remindH, Minute: remindM, WeekdaysOnly: true,
			Run:  a.router.SendReportReminders,
		},
	}, nil
}

func (a *App) shutdown() {
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shCtx); err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
}
