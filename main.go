package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	router "busbooking/internal/http"
	"busbooking/internal/http/handlers"
	"busbooking/internal/jobs"
	"busbooking/internal/notify"
	"busbooking/internal/repositories"
	"busbooking/internal/repositories/memstore"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

type stores struct {
	trips    services.TripStore
	bookings services.BookingStore
	payments services.PaymentStore
	users    services.UserStore
	db       *sql.DB
}

func openStores(ctx context.Context, env intconfig.Env) (stores, error) {
	if env.StoreDriver == intconfig.StoreMemory {
		log.Println("[MAIN] action=store msg=using in-memory store, data is not persisted")
		m := memstore.New()
		return stores{trips: m, bookings: m, payments: m, users: m}, nil
	}
	conn, err := intconfig.OpenDB(ctx, env.DBDSN)
	if err != nil {
		return stores{}, err
	}
	if err := intdb.EnsureSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return stores{}, err
	}
	return stores{
		trips:    repositories.TripRepository{DB: conn},
		bookings: repositories.BookingRepository{DB: conn},
		payments: repositories.PaymentRepository{DB: conn},
		users:    repositories.UserRepository{DB: conn},
		db:       conn,
	}, nil
}

func newDispatcher(env intconfig.Env) *notify.Dispatcher {
	client := &http.Client{Timeout: 10 * time.Second}
	senders := map[notify.Channel]notify.Sender{
		notify.ChannelEmail: notify.LogSender{},
		notify.ChannelSMS:   notify.LogSender{},
	}
	if env.EmailWebhook != "" {
		senders[notify.ChannelEmail] = notify.WebhookSender{URL: env.EmailWebhook, Client: client}
	}
	if env.SMSWebhook != "" {
		senders[notify.ChannelSMS] = notify.WebhookSender{URL: env.SMSWebhook, Client: client}
	}
	return notify.NewDispatcher(15*time.Second, senders)
}

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	if env.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx := context.Background()
	st, err := openStores(ctx, env)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	if st.db != nil {
		defer st.db.Close()
	}

	dispatcher := newDispatcher(env)

	var otp services.OTPVerifier = services.AcceptAllOTP{}
	if env.OTPCode != "" {
		otp = services.StaticOTP{Code: env.OTPCode}
	}

	auth := services.AuthService{Users: st.users, Secret: []byte(env.JWTSecret), TokenTTL: env.TokenTTL}
	if err := auth.EnsureAdmin(ctx, env.AdminEmail, env.AdminPassword); err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	}

	inventory := services.InventoryService{Trips: st.trips}
	hd := handlers.Handler{
		Auth:      auth,
		Inventory: inventory,
		Bookings: services.BookingService{
			Inventory: inventory,
			Bookings:  st.bookings,
			Users:     st.users,
			OTP:       otp,
			Notifier:  dispatcher,
		},
		Payments: services.PaymentService{
			Bookings: st.bookings,
			Payments: st.payments,
			Gateway:  services.MockGateway{},
			Notifier: dispatcher,
		},
		Trips: services.TripService{
			Trips:    st.trips,
			Bookings: st.bookings,
			Users:    st.users,
			Notifier: dispatcher,
		},
		Docs: services.DocsService{Bookings: st.bookings, Trips: st.trips, Payments: st.payments},
	}
	if st.db != nil {
		hd.DB = st.db
	}

	sweeper, err := jobs.Schedule(env.ReclaimSchedule, jobs.ReclaimJob{Inventory: inventory, TTL: env.HoldTTL})
	if err != nil {
		log.Fatalf("failed to schedule reclaim job: %v", err)
	}
	sweeper.Start()

	r := router.NewRouter(env, hd)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	<-sweeper.Stop().Done()
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Printf("pending notifications dropped: %v", err)
	}

	log.Println("Server stopped cleanly.")
}
