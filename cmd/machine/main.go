package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/console"
	"go-kopi-machine/internal/handler"
	"go-kopi-machine/internal/manager"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/repository"
	"go-kopi-machine/internal/store"
	"go-kopi-machine/internal/syncer"
	"go-kopi-machine/internal/ws"
	"go-kopi-machine/pkg/config"
	"go-kopi-machine/pkg/database"
	"go-kopi-machine/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New("kopi-machine", cfg.App.LogLevel, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Remote store: Google Sheets when credentials are configured, an
	// in-memory demo store otherwise.
	var remote store.Store
	if cfg.Sheets.CredentialsFile != "" {
		sheetsStore, err := store.NewSheetsStore(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SheetID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Google Sheets")
		}
		remote = sheetsStore
		log.Info().Str("sheet_id", cfg.Sheets.SheetID).Msg("using Google Sheets remote store")
	} else {
		mem := store.NewMemoryStore()
		seedDemoStore(mem)
		remote = mem
		log.Warn().Msg("no Sheets credentials configured, using in-memory demo store")
	}

	// 3. Mirror the remote tables into the cache.
	machineCache, layout, err := cache.Load(ctx, remote)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load remote tables")
	}
	queue := cache.NewQueue()

	// 4. Machine-local database for the admin credential.
	db, err := database.ConnectLocal(cfg.Machine.LocalDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local database")
	}
	if err := db.AutoMigrate(&model.AdminCredential{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate local database")
	}
	adminRepo := repository.NewAdminCodeRepo(db)

	// 5. WebSocket hub for the monitor feed.
	hub := ws.NewHub(log)
	go hub.Run()

	// 6. Synchronizer. Its goroutine owns the final flush on shutdown.
	sync := syncer.New(machineCache, queue, remote, layout, cfg.Machine.SyncInterval, log)
	syncDone := make(chan struct{})
	go func() {
		sync.Run(ctx)
		close(syncDone)
	}()

	// 7. Web server: payment confirmation pages and the monitor socket.
	app := fiber.New(fiber.Config{
		AppName:               "Kopi Machine v1.0",
		DisableStartupMessage: true,
	})
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	paymentHandler := handler.NewPaymentHandler(machineCache, queue, hub, log)
	app.Get("/pay/search", paymentHandler.Search)
	app.Get("/pay/confirm", paymentHandler.Confirm)
	app.Get("/pay/failure", paymentHandler.Failure)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.Register <- c
		defer func() { hub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	app.Use(paymentHandler.NotFound)

	addr := net.JoinHostPort(cfg.App.Host, cfg.App.Port)
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("web server failed")
		}
	}()

	// The terminal prints QRIS links pointing at this server, so do not
	// take orders until it answers.
	if err := waitForWeb(cfg.App.Port, 10*time.Second); err != nil {
		log.Fatal().Err(err).Msg("web server did not come up")
	}

	// 8. Interactive terminal.
	prompt := console.NewPrompter(os.Stdin, os.Stdout, cfg.Machine.InputTimeout)
	confirmBaseURL := fmt.Sprintf("http://%s", net.JoinHostPort(cfg.App.PublicHost, cfg.App.Port))

	menu := manager.NewMenuManager(machineCache)
	orders := manager.NewOrderManager(machineCache, menu, prompt)
	payment := manager.NewPaymentManager(machineCache, queue, prompt, remote, hub, log, cfg.Machine.QRISTimeout, confirmBaseURL)
	online := manager.NewOnlineOrderManager(machineCache, queue, prompt, remote, layout, hub, log)
	admin := manager.NewAdminManager(machineCache, prompt, adminRepo, remote, layout, hub, log, cfg.Machine.DefaultAdminCode)
	session := manager.NewSessionController(machineCache, queue, prompt, remote, menu, orders, payment, online, admin, hub, log)

	sessionDone := make(chan error, 1)
	go func() { sessionDone <- session.Run(ctx) }()

	// 9. Shut down on interrupt or on an admin shutdown request, flushing
	// the queue before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("interrupt received, shutting down")
	case err := <-sessionDone:
		if errors.Is(err, manager.ErrShutdown) {
			log.Info().Msg("shutdown requested from admin menu")
		} else {
			log.Info().Msg("terminal input closed, shutting down")
		}
	}

	cancel()
	<-syncDone
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("web server forced to shut down")
	}
	log.Info().Msg("machine stopped")
}

// waitForWeb probes the local web port until it accepts connections.
func waitForWeb(port string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	addr := net.JoinHostPort("127.0.0.1", port)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("no response on %s within %s", addr, timeout)
}

// seedDemoStore fills the in-memory store with the demo tables used when
// no Sheets credentials are configured.
func seedDemoStore(mem *store.MemoryStore) {
	mem.SeedTable(store.TableCoffee,
		[]string{store.ColCoffeeName, store.ColCoffeePrice, store.ColStock},
		[]string{"Espresso", "15000", "10"},
		[]string{"Latte", "20000", "10"},
		[]string{"Cappuccino", "22000", "8"},
		[]string{"Americano", "18000", "12"},
	)
	mem.SeedTable(store.TableAdditives,
		[]string{store.ColAdditiveName, store.ColStock},
		[]string{model.AdditiveSugar, "100"},
		[]string{model.AdditiveCreamer, "100"},
		[]string{model.AdditiveMilk, "100"},
		[]string{model.AdditiveChocolate, "100"},
	)
	mem.SeedTable(store.TableReferences,
		[]string{store.ColRefID, store.ColRefAmount, store.ColRefMethod, store.ColRefTime, store.ColStatus},
	)
	mem.SeedTable(store.TableSales,
		[]string{store.ColCoffeeName, store.ColOrderTemp, "Composition", store.ColOrderQuantity, "Total Price", store.ColRefMethod},
	)
	mem.SeedTable(store.TableOnlineOrders,
		[]string{store.ColOrderCode, store.ColCoffeeName, store.ColOrderQuantity, store.ColOrderTemp,
			model.AdditiveSugar, model.AdditiveCreamer, model.AdditiveMilk, model.AdditiveChocolate, store.ColStatus},
		[]string{"DEMO-1", "Latte", "2", "Hot", "1", "0", "1", "0", "Pending"},
	)
}
