package boot

import (
	"artbook/src/booking"
	"artbook/src/catalog"
	"artbook/src/common"
	"artbook/src/config"
	"artbook/src/db"
	"artbook/src/ledger"
	"artbook/src/lib"
	"artbook/src/lib/mailer"
	"artbook/src/models"
	"artbook/src/notify"
	"artbook/src/payment"
	"artbook/src/registrations"
	"artbook/src/remote"
	"artbook/src/store"
	"artbook/src/types"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionMaxAge = 2 * time.Hour

var ErrGatewayNotConfigured = errors.New("STRIPE_SECRET_KEY is required outside local and test environments")

// App holds the wired booking engine.
type App struct {
	Config        *config.Config
	DB            *gorm.DB
	Local         store.Local
	Ledger        *ledger.Ledger
	Registrations *registrations.Store
	Controller    *booking.Controller
	Reconciler    *store.Reconciler
	Push          *notify.PushDispatcher
	Users         *remote.Users
	Dispatcher    notify.Dispatcher
}

// InitDb connects to postgres and migrates the schema. It returns nil when
// the remote backend is disabled or unreachable; the engine then runs on
// the local store alone.
func InitDb(cfg *config.Config) *gorm.DB {
	if !cfg.RemoteEnabled {
		return nil
	}
	gdb := db.GetDb()
	if gdb == nil {
		return nil
	}
	err := gdb.AutoMigrate(
		&models.Subject{},
		&models.Registration{},
		&models.WaitlistEntry{},
		&models.PaymentMethod{},
		&models.User{},
	)
	if err != nil {
		zap.S().Errorf("error migration: %s", err.Error())
	}
	return gdb
}

// InitLocalStore opens the device-local store named by LOCAL_STORE. The
// memory store does not survive a restart and is meant for tests.
func InitLocalStore(cfg *config.Config) (store.Local, error) {
	switch cfg.LocalStore {
	case "redis":
		rd := lib.GetRedisClient()
		if rd == nil {
			return nil, fmt.Errorf("redis is not configured")
		}
		return store.NewRedisStore(rd), nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewBoltStore(cfg.LocalStorePath)
	}
}

func remoteFor[T store.Entity](gdb *gorm.DB) store.Remote[T] {
	if gdb == nil {
		return nil
	}
	return remote.NewTable[T](gdb)
}

func dualPath[T store.Entity](kind string, gdb *gorm.DB, local store.Local, timeout time.Duration) *store.DualPath[T] {
	d := store.NewDualPath[T](kind, remoteFor[T](gdb), local, timeout)
	if n, err := d.Warm(context.Background()); err != nil {
		zap.S().Warnf("[boot] could not warm %s from remote: %s", kind, err.Error())
	} else if n > 0 {
		zap.S().Infof("[boot] warmed %d %s records", n, kind)
	}
	return d
}

// NewGateway returns the Stripe gateway. The in-memory gateway approves
// every charge, so it is only handed out in local and test environments.
func NewGateway(cfg *config.Config) (payment.Gateway, error) {
	if cfg.StripeSecretKey != "" {
		return payment.NewStripeGateway(lib.GetStripeClient()), nil
	}
	switch types.Env(cfg.ApiEnv) {
	case types.Local, types.Test:
		zap.S().Warn("[boot] STRIPE_SECRET_KEY is empty, payments use the in-memory gateway")
		return payment.NewFakeGateway(), nil
	}
	return nil, ErrGatewayNotConfigured
}

// InitSecrets overlays the Secrets Manager secret named by AWS_SECRETS_ID
// onto cfg. Without one, cfg is left as loaded from the environment.
func InitSecrets(ctx context.Context, cfg *config.Config) error {
	if cfg.SecretsID == "" {
		return nil
	}
	client, err := lib.AWSGetSecretsManagerClient()
	if err != nil {
		return err
	}
	return lib.LoadSecrets(ctx, client, cfg)
}

// NewDispatcher builds the notification fan-out: the confirmations queue
// always, the SNS topic when one is configured, push when enabled.
func NewDispatcher(cfg *config.Config) (notify.Dispatcher, *notify.PushDispatcher) {
	out := notify.Fanout{notify.QueueDispatcherFromConfig(cfg)}
	if cfg.NotificationsTopic != "" {
		out = append(out, notify.NewQueueDispatcher(cfg.NotificationsTopic, notify.SNSPublisher{}))
	}
	if !cfg.PushEnabled {
		return out, nil
	}
	rd := lib.GetRedisClient()
	fcm, err := lib.GetFirebaseMessaging(context.Background())
	if rd == nil || err != nil {
		zap.S().Warnf("[boot] push notifications disabled: redis=%t fcm=%v", rd != nil, err)
		return out, nil
	}
	push := notify.NewPushDispatcher(rd, fcm)
	return append(out, push), push
}

// InitApp wires stores, ledger, gateway and dispatcher into a controller.
func InitApp(ctx context.Context, cfg *config.Config, gdb *gorm.DB, gateway payment.Gateway, dispatcher notify.Dispatcher) (*App, error) {
	local, err := InitLocalStore(cfg)
	if err != nil {
		return nil, err
	}
	subjects := dualPath[models.Subject]("subject", gdb, local, cfg.RemoteTimeout)
	regs := dualPath[models.Registration]("registration", gdb, local, cfg.RemoteTimeout)
	waitlist := dualPath[models.WaitlistEntry]("waitlist", gdb, local, cfg.RemoteTimeout)
	methods := dualPath[models.PaymentMethod]("payment_method", gdb, local, cfg.RemoteTimeout)

	l := ledger.New(subjects)
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	if err := InitCatalog(ctx, cfg, l); err != nil {
		zap.S().Errorf("[boot] catalog not loaded: %s", err.Error())
	}

	app := &App{
		Config:        cfg,
		DB:            gdb,
		Local:         local,
		Ledger:        l,
		Registrations: registrations.NewStore(regs),
		Reconciler:    store.NewReconciler(cfg.RemoteTimeout*4, subjects, regs, waitlist, methods),
		Dispatcher:    dispatcher,
	}
	if gdb != nil {
		app.Users = remote.NewUsers(gdb)
	}
	if push, ok := pushOf(dispatcher); ok {
		app.Push = push
	}
	app.Controller = booking.NewController(booking.Deps{
		Ledger:        l,
		Registrations: app.Registrations,
		Waitlist:      registrations.NewWaitlist(waitlist),
		Methods:       payment.NewMethods(methods),
		Gateway:       gateway,
		Notifier:      dispatcher,
	}, booking.Options{
		Slots: booking.SlotPolicy{
			Granularity:   time.Duration(cfg.SlotMinutes) * time.Minute,
			HorizonMonths: cfg.HorizonMonths,
			Location:      cfg.Location(),
			DefaultOpens:  cfg.OpensAt,
			DefaultCloses: cfg.ClosesAt,
		},
		PaymentTimeout: cfg.PaymentTimeout,
	})
	return app, nil
}

func pushOf(d notify.Dispatcher) (*notify.PushDispatcher, bool) {
	switch v := d.(type) {
	case *notify.PushDispatcher:
		return v, true
	case notify.Fanout:
		for _, inner := range v {
			if p, ok := inner.(*notify.PushDispatcher); ok {
				return p, true
			}
		}
	}
	return nil, false
}

// InitCatalog seeds catalog subjects the ledger does not know yet.
func InitCatalog(ctx context.Context, cfg *config.Config, l *ledger.Ledger) error {
	subjects, err := catalog.Load(ctx, cfg)
	if err != nil {
		return err
	}
	n, err := l.Seed(ctx, subjects)
	if err != nil {
		return err
	}
	zap.S().Infof("[boot] seeded %d new subjects from catalog", n)
	return nil
}

// InitScheduler starts the remote reconciliation and stale-session jobs.
func InitScheduler(app *App) {
	sched, err := lib.GetScheduler()
	if err != nil {
		zap.S().Error("An error has occurred. Check logs for info")
		return
	}
	if app.DB != nil {
		if _, err := app.Reconciler.Schedule(sched, app.Config.SyncInterval); err != nil {
			zap.S().Errorf("Error scheduling reconciliation: %s", err.Error())
		}
	}
	_, err = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			if n := app.Controller.Sweep(sessionMaxAge); n > 0 {
				zap.S().Infof("[booking] swept %d idle sessions", n)
			}
		}),
		gocron.WithName("sweep-sessions"),
	)
	if err != nil {
		zap.S().Errorf("Error scheduling session sweep: %s", err.Error())
	}
	zap.S().Infof("Jobs in queue: %d", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		zap.S().Error("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		zap.S().Errorf("An error has occurred while stopping Scheduler: %s", err.Error())
	}
}

// InitConsumers starts the confirmation mail consumer. It needs the users
// table to resolve addresses.
func InitConsumers(ctx context.Context, app *App) {
	if app.Users == nil {
		zap.S().Warn("[boot] no database, confirmation mails are not sent")
		return
	}
	if app.Config.IsLocal() {
		queue := app.Config.WithSuffix(app.Config.ConfirmationsQueue)
		if _, err := lib.KafkaCreateTopics(ctx, queue); err != nil {
			zap.S().Warnf("[boot] could not create topic %s: %s", queue, err.Error())
		}
	}
	c := common.NewConfirmations(app.Users, mailer.NewSender(app.Config), app.Config.MailFrom, app.Config.MailFromName)
	common.ConfirmationsConsumer(ctx, app.Config, c)
}

func Shutdown(app *App) {
	StopScheduler()
	lib.CloseKafka()
	if c, ok := app.Local.(io.Closer); ok {
		if err := c.Close(); err != nil {
			zap.S().Errorf("Error closing local store: %s", err.Error())
		}
	}
}
