package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"price-tracker/bedrock"
	"price-tracker/blob"
	"price-tracker/config"
	"price-tracker/database"
	"price-tracker/handlers"
	"price-tracker/identity"
	"price-tracker/llm"
	"price-tracker/logging"
	"price-tracker/metrics"
	"price-tracker/middleware"
	"price-tracker/ocr"
	"price-tracker/service"
	"price-tracker/stubllm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	metrics.Register()

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	store, closeStore, err := newProductStore(ctx, cfg, awsCfg)
	if err != nil {
		log.Fatalf("Failed to initialize product store: %v", err)
	}
	defer closeStore()

	cognito := identity.NewCognito(cognitoidentityprovider.NewFromConfig(awsCfg), cfg.CognitoClientID)
	var validator identity.TokenValidator = identity.NewCognitoValidator(cognito)
	if cfg.AuthMode == config.AuthJWT {
		validator = identity.NewJWTValidator(cfg.JWTSecret)
	}

	h := handlers.NewHandlers(
		service.NewProductService(store),
		newReceiptService(cfg, awsCfg),
		service.NewAuthService(cognito),
		cfg.MaxUploadBytes,
	)

	router, err := newRouter(cfg, h, validator)
	if err != nil {
		log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting HTTP server on port %s (store=%s auth=%s ocr=%s llm=%s)",
			cfg.Port, cfg.StoreBackend, cfg.AuthMode, cfg.OCRBackend, cfg.LLMBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("Server exited")
}

// newRouter wires the middleware chain and routes. promhttp compresses
// /metrics itself, so the gzip middleware skips it.
func newRouter(cfg *config.Config, h *handlers.Handlers, validator identity.TokenValidator) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	router.Use(
		middleware.RequestLogger(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.SecurityHeaders(),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.RegisterRoutes(router, middleware.Auth(validator))
	return router, nil
}

func newProductStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (database.ProductStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreMySQL:
		connectCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		db, err := database.OpenMySQL(connectCtx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		store := database.NewMySQLStore(db)
		if err := store.InitializeSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case config.StoreMemory:
		log.Warn("Using in-memory product store; data is lost on restart")
		return database.NewMemoryStore(), func() {}, nil
	default:
		return database.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.ProductsTableName), func() {}, nil
	}
}

func newReceiptService(cfg *config.Config, awsCfg aws.Config) *service.ReceiptService {
	var ocrClient ocr.Client = ocr.NewTextractClient(textract.NewFromConfig(awsCfg))
	if cfg.OCRBackend == config.BackendStub {
		ocrClient = ocr.NewStubClient()
	}

	var llmClient llm.Client = bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID, cfg.BedrockMaxTokens)
	if cfg.LLMBackend == config.BackendStub {
		llmClient = stubllm.NewClient()
	}

	var blobs blob.Store
	if cfg.StoreReceipts {
		blobs = blob.NewS3Store(s3.NewFromConfig(awsCfg), cfg.ReceiptsBucket)
	}

	return service.NewReceiptService(ocrClient, llm.NewExtractor(llmClient), blobs, cfg.AllowedImageTypes, cfg.MaxUploadBytes)
}
