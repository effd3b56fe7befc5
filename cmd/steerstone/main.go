package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/steerstone/server/internal/catalogue"
	"github.com/steerstone/server/internal/config"
	"github.com/steerstone/server/internal/core/event"
	coresys "github.com/steerstone/server/internal/core/system"
	"github.com/steerstone/server/internal/data"
	"github.com/steerstone/server/internal/handler"
	gonet "github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/pathfinder"
	"github.com/steerstone/server/internal/persist"
	"github.com/steerstone/server/internal/room"
	"github.com/steerstone/server/internal/scripting"
	"github.com/steerstone/server/internal/system"
	"github.com/steerstone/server/internal/telemetry"
	"github.com/steerstone/server/internal/world"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; variables may come from the environment directly
	_ = godotenv.Load()

	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("STEERSTONE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("資料庫")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL 連線成功")

	if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("資料庫遷移完成")
	fmt.Println()

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	roomRepo := persist.NewRoomRepo(db)
	itemRepo := persist.NewItemRepo(db)
	catalogueRepo := persist.NewCatalogueRepo(db)

	// 5. Static data, scripts, catalogue
	printSection("資料載入")

	furnTable, err := data.LoadFurnitureTable(filepath.Join(cfg.Server.DataDir, "furniture_list.yaml"))
	if err != nil {
		return fmt.Errorf("load furniture table: %w", err)
	}
	printStat("家具定義", furnTable.Count())

	luaEngine, err := scripting.NewEngine(cfg.Server.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua 腳本載入完成")

	catalogueMgr := catalogue.NewManager(catalogueRepo, furnTable, log)
	if err := catalogueMgr.LoadPages(ctx); err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}
	printStat("目錄頁面", len(catalogueMgr.Pages()))
	printStat("目錄商品", catalogueMgr.OfferCount())

	// 6. Telemetry and path workers
	var tracer trace.Tracer = telemetry.NoopTracer()
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(context.Background(), cfg.Telemetry.ServiceName)
		if err != nil {
			log.Warn("遙測初始化失敗，改為停用", zap.Error(err))
		} else {
			defer func() {
				sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer scancel()
				if err := shutdown(sctx); err != nil {
					log.Warn("遙測關閉失敗", zap.Error(err))
				}
			}()
			tracer = telemetry.Tracer("pathfinder")
			printOK("OpenTelemetry 追蹤啟用")
		}
	}

	finder := pathfinder.New(pathfinder.Options{
		MaxStepHeight: cfg.Room.MaxStepHeight,
		AllowDiagonal: cfg.Room.AllowDiagonal,
		MaxNodes:      cfg.Room.MaxPathNodes,
	})
	pathPool := pathfinder.NewPool(finder, cfg.Room.PathWorkers, cfg.Room.PathQueueSize, tracer, log)

	// 7. World state and handler deps
	enc, err := packet.LookupEncoding(cfg.Network.ClientEncoding)
	if err != nil {
		return fmt.Errorf("client encoding: %w", err)
	}

	worldState := world.NewState()
	rooms := room.NewManager()
	bus := event.NewBus()

	deps := &handler.Deps{
		Accounts:  accountRepo,
		Items:     itemRepo,
		Config:    cfg,
		Log:       log,
		World:     worldState,
		Rooms:     rooms,
		Paths:     pathPool,
		Furniture: furnTable,
		Catalogue: catalogueMgr,
		Scripting: luaEngine,
		Bus:       bus,
		Enc:       enc,
	}

	roomCount, itemCount, err := loadRooms(ctx, roomRepo, itemRepo, deps)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	printStat("房間", roomCount)
	printStat("房間家具", itemCount)
	fmt.Println()

	// 8. Packet registry
	pktReg := packet.NewRegistry(enc, log)
	handler.RegisterAll(pktReg, deps)
	handler.SubscribeBroadcasts(deps)

	// 9. Network server
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, gonet.SessionOptions{
		InQueueSize:      cfg.Network.InQueueSize,
		OutQueueSize:     cfg.Network.OutQueueSize,
		PacketsPerSecond: packetsPerSecond(cfg.RateLimit),
		ReadTimeout:      cfg.Network.ReadTimeout,
		WriteTimeout:     cfg.Network.WriteTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 10. Systems
	store := gonet.NewSessionStore()
	runner := coresys.NewRunner()
	inputSys := system.NewInputSystem(netServer, pktReg, store, cfg.Network.MaxPacketsPerTick,
		func(sess *gonet.Session) { handler.HandleDisconnect(sess, deps) }, log)
	presenceSys := system.NewPresenceSystem(worldState, accountRepo, log,
		int(cfg.Server.ActivityInterval/cfg.Network.TickRate))
	runner.Register(inputSys)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewMovementSystem(rooms, worldState, pathPool, bus, log))
	runner.Register(system.NewOutputSystem(store))
	runner.Register(presenceSys)

	// 11. Path workers run beside the game loop
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return pathPool.Run(gctx)
	})

	// 12. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case <-gctx.Done():
			netServer.Shutdown()
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("path workers: %w", err)
			}
			return nil
		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))
			presenceSys.RefreshAll()
			store.ForEach(func(sess *gonet.Session) {
				handler.HandleDisconnect(sess, deps)
				sess.Close()
			})
			netServer.Shutdown()
			stop()
			if err := g.Wait(); err != nil {
				log.Warn("尋路工作者結束異常", zap.Error(err))
			}
			log.Info("伺服器已停止")
			return nil
		}
	}
}

func packetsPerSecond(cfg config.RateLimitConfig) int {
	if !cfg.Enabled {
		return 0
	}
	return cfg.PacketsPerSecond
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
