package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pocketchat/internal/backup"
	"pocketchat/pkg/activity"
	"pocketchat/pkg/api"
	"pocketchat/pkg/banner"
	"pocketchat/pkg/config"
	"pocketchat/pkg/logger"
	"pocketchat/pkg/models"
	"pocketchat/pkg/notify"
	"pocketchat/pkg/outbox"
	"pocketchat/pkg/receipts"
	"pocketchat/pkg/registry"
	"pocketchat/pkg/send"
	"pocketchat/pkg/state"
	"pocketchat/pkg/store"
	"pocketchat/pkg/utils"
)

func main() {
	// build metadata - set via ldflags during build/release
	var (
		version = "dev"
		commit  = "none"
	)
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// explicit flags win over config/env
	if setFlags["addr"] {
		if h, p, ok := strings.Cut(addrVal, ":"); ok {
			cfg.Client.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Client.Port = pi
			}
		} else {
			cfg.Client.Address = addrVal
		}
	}
	dbPath := cfg.Client.DBPath
	if setFlags["db"] || dbPath == "" {
		dbPath = dbVal
	}

	logger.InitWithLevel(cfg.Logging.Level)

	if err := state.EnsureStateDirs(dbPath); err != nil {
		log.Fatalf("failed to prepare state dirs at %s: %v", dbPath, err)
	}
	if err := store.Open(state.PathsVar.Store); err != nil {
		log.Fatalf("failed to open pebble at %s: %v", state.PathsVar.Store, err)
	}

	// The core is headless; the renderer surface is the log stream.
	reg := registry.New(registry.RendererFunc(func(msg models.Message, chat models.Chat) {
		logger.Info("render", "chat", chat.ID, "msg_id", msg.ID, "role", msg.Role, "status", msg.Status)
	}))

	chats, msgs, err := store.LoadAll()
	if err != nil {
		log.Fatalf("failed to load state: %v", err)
	}
	if len(chats) == 0 && cfg.Client.SeedDemo {
		seedDemo()
		if chats, msgs, err = store.LoadAll(); err != nil {
			log.Fatalf("failed to reload state: %v", err)
		}
	}
	reg.Load(chats, msgs)

	book := receipts.New()
	for _, c := range chats {
		book.LoadChat(c.ID)
	}

	queue := outbox.New(reg)
	if err := queue.Load(); err != nil {
		logger.Warn("outbox_load_failed", "error", err)
	}

	notifier := notify.NewLimited(notify.LogNotifier{}, cfg.Notify.RPS, cfg.Notify.Burst)
	tracker := activity.NewTracker()
	monitor := activity.NewMonitor(tracker, notifier, cfg.Activity.Poll.Duration())
	monitor.Apply(activity.LoadSettingsOr(activity.Settings{
		Enabled:  cfg.Activity.Enabled,
		Interval: int(cfg.Activity.Interval.Duration() / time.Second),
	}))

	// connectivity starts online; flipping back online drains the outbox
	netState := api.NewNetState(true, func() { go queue.Drain() })
	pipeline := send.New(reg, queue, netState, tracker, notifier)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	backup.SetConfig(cfg)
	cancelBackup, err := backup.Start(rootCtx, cfg)
	if err != nil {
		log.Fatalf("failed to start backup scheduler: %v", err)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Info("shutdown", "signal", s.String())
		monitor.Stop()
		cancelBackup()
		cancelRoot()
		if err := store.Close(); err != nil {
			logger.Error("store_close_failed", "error", err)
		}
		os.Exit(0)
	}()

	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	banner.Print(cfg, dbPath, strings.Join(srcs, ", "), verStr)

	srv := &api.Server{
		Reg:      reg,
		Pipeline: pipeline,
		Queue:    queue,
		Book:     book,
		Tracker:  tracker,
		Monitor:  monitor,
		Net:      netState,
	}
	router := srv.Router()
	router.Handle("/metrics", promhttp.Handler())

	if err := http.ListenAndServe(cfg.Addr(), router); err != nil {
		log.Fatal(err)
	}
}

// seedDemo writes two starter chats into a fresh store: a group with
// nicknamed members and a one-to-one assistant chat with a greeting.
func seedDemo() {
	now := time.Now().UTC().UnixNano()
	group := models.Chat{
		ID:      "demo-group",
		Name:    "Weekend Crew",
		IsGroup: true,
		Members: []models.Member{
			{OriginalName: "Alex", Nickname: "Al"},
			{OriginalName: "Sam"},
		},
		CreatedTS: now,
	}
	direct := models.Chat{
		ID:        "demo-assistant",
		Name:      "Assistant",
		CreatedTS: now,
	}
	for _, c := range []models.Chat{group, direct} {
		if err := store.SaveChat(c); err != nil {
			logger.Warn("seed_chat_failed", "chat", c.ID, "error", err)
		}
	}
	greeting := models.Message{
		ID:      utils.NextMessageID(),
		ChatID:  direct.ID,
		Role:    models.RoleAssistant,
		Content: "Hi! I'm here whenever you need me.",
		Type:    models.TypeText,
		TS:      now,
		Status:  models.StatusSent,
	}
	if err := store.PutMessage(greeting); err != nil {
		logger.Warn("seed_message_failed", "chat", direct.ID, "error", err)
	}
	logger.Info("demo_seeded", "chats", 2)
}
