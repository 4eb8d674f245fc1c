package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"vibin_client/config"
	"vibin_client/controllers"
	"vibin_client/models"
	"vibin_client/services"
	"vibin_client/socket"
	"vibin_client/utils"
)

func main() {
	mode := flag.String("mode", "feed", "feed, connections or chat")
	viewer := flag.String("viewer", "", "viewer id to store in the session")
	matchID := flag.String("match", "", "match id to open in chat mode")
	peerID := flag.String("peer", "", "other user in chat mode")
	swipes := flag.Int("swipes", 5, "cards to like in feed mode")
	text := flag.String("text", "", "message to send in chat mode")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using environment")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Resolve the viewer
	sessions := &services.SessionService{Store: newSessionStore(ctx, cfg), DeviceKey: deviceKey()}
	if *viewer != "" || cfg.AccessToken != "" {
		session, err := sessions.Load(ctx)
		if err != nil {
			log.Printf("❌ Failed to load stored session: %v", err)
		}
		if *viewer != "" {
			session.ViewerID = *viewer
		}
		if cfg.AccessToken != "" {
			session.AccessToken = cfg.AccessToken
		}
		if err := sessions.Save(ctx, session); err != nil {
			log.Printf("⚠️ Could not persist session: %v", err)
		}
	}
	viewerID, err := sessions.ViewerID(ctx)
	if err != nil {
		log.Fatalf("❌ No viewer: %v", err)
	}
	log.Printf("✅ Signed in as %s", viewerID)

	api := services.NewAPIService(cfg.APIURL, cfg.AccessToken, cfg.RequestTimeout)
	notifier := utils.LogNotifier{}

	switch *mode {
	case "feed":
		runFeed(ctx, cfg, api, notifier, viewerID, *swipes)
	case "connections":
		runConnections(ctx, cfg, api, notifier, viewerID)
	case "chat":
		runChat(ctx, cfg, api, notifier, viewerID, *matchID, *peerID, *text)
	default:
		log.Fatalf("❌ Unknown mode %q", *mode)
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) services.KVStore {
	if cfg.AWSRegion == "" {
		return services.NewMemoryKVStore()
	}
	log.Println("Initializing DynamoDB client...")
	client, err := services.InitializeDynamoDBClient(ctx, cfg.AWSRegion)
	if err != nil {
		log.Printf("⚠️ DynamoDB unavailable, keeping session in memory: %v", err)
		return services.NewMemoryKVStore()
	}
	log.Println("DynamoDB client initialized.")
	return &services.DynamoKVStore{Dynamo: &services.DynamoService{Client: client}, Table: cfg.SessionTable}
}

func deviceKey() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "default"
	}
	return host
}

func runFeed(ctx context.Context, cfg *config.Config, api *services.APIService, notifier utils.Notifier, viewerID string, swipes int) {
	var photos controllers.PhotoResolver
	if cfg.PhotoBucket != "" && cfg.AWSRegion != "" {
		ps, err := services.NewPhotoService(ctx, cfg.AWSRegion, cfg.PhotoBucket)
		if err != nil {
			log.Printf("⚠️ Photo URLs disabled: %v", err)
		} else {
			photos = ps
		}
	}

	feed := controllers.NewFeedController(api, photos, notifier, cfg.PageSize)
	gesture := controllers.DefaultGestureConfig()
	gesture.Threshold = cfg.SwipeThreshold
	deck := controllers.NewDiscoverController(ctx, viewerID, feed, api, notifier, gesture)

	if err := deck.Start(); err != nil {
		return
	}
	for i := 0; i < swipes && ctx.Err() == nil; i++ {
		dec, err := deck.Decide(models.DecisionLike)
		if err != nil {
			log.Printf("❌ Decision failed: %v", err)
			break
		}
		if dec == nil {
			log.Printf("ℹ️ No more candidates (%s)", feed.Status())
			break
		}
		deck.Wait()
	}
	deck.Wait()
	log.Printf("✅ Feed done: %d cards left, status %s", len(feed.Queue()), feed.Status())
}

func runConnections(ctx context.Context, cfg *config.Config, api *services.APIService, notifier utils.Notifier, viewerID string) {
	conns := controllers.NewConnectionsController(api, notifier, cfg.PageSize)
	load := func() {
		if err := conns.Load(ctx, viewerID); err != nil {
			return
		}
		for _, r := range conns.Records() {
			log.Printf("  %-8s %-24s %s match=%t", r.Kind, r.ID, r.SortDate.Format(time.RFC3339), r.IsMutualMatch)
		}
	}
	load()

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create scheduler: %v", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(cfg.ConnectionsRefresh),
		gocron.NewTask(load),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Fatalf("❌ Failed to schedule refresh: %v", err)
	}
	sched.Start()
	log.Printf("🔄 Refreshing connections every %s", cfg.ConnectionsRefresh)

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		log.Printf("⚠️ Scheduler shutdown: %v", err)
	}
}

func runChat(ctx context.Context, cfg *config.Config, api *services.APIService, notifier utils.Notifier, viewerID, matchID, peerID, text string) {
	if matchID == "" {
		log.Fatal("❌ -match is required in chat mode")
	}
	dial := func(ctx context.Context) (controllers.Channel, error) {
		c, err := socket.Dial(ctx, cfg.SocketURL, cfg.AccessToken)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	chat := controllers.NewChatSession(viewerID, matchID, peerID, dial, api, notifier)
	if err := chat.Join(ctx); err != nil {
		return
	}
	defer chat.Close()

	select {
	case <-chat.Ready():
	case <-ctx.Done():
		return
	case <-time.After(cfg.RequestTimeout):
		log.Printf("❌ Timed out joining chat %s", matchID)
		return
	}
	for _, m := range chat.Messages() {
		log.Printf("  [%s] %s: %s", m.CreatedAt.Format(time.Kitchen), m.SenderID, m.Text)
	}

	if text != "" {
		if err := chat.Send(ctx, text); err != nil {
			log.Printf("❌ Failed to send message: %v", err)
		}
	}
	<-ctx.Done()
}
