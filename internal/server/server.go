package server

import (
	"strings"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/internal/config"
	"github.com/Hoblayerta/LENSNOMICS/internal/handler"
	"github.com/Hoblayerta/LENSNOMICS/internal/middleware"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/internal/service"
	"github.com/Hoblayerta/LENSNOMICS/pkg/chain"
	"github.com/Hoblayerta/LENSNOMICS/pkg/lens"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	postRepo := repository.NewPostRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Token contract collaborator: real chain when configured, the
	// in-memory stand-in otherwise.
	var tokens chain.TokenService
	if cfg.ChainEnabled {
		client, err := chain.NewERC20Client(chain.ERC20Config{
			RPCURL:         cfg.EthRPCURL,
			OperatorKeyHex: cfg.EthOperatorKey,
			FactoryAddress: cfg.TokenFactoryAddress,
			ChainID:        cfg.EthChainID,
			CallTimeout:    cfg.ChainCallTimeout,
		})
		if err != nil {
			logger.Sugar.Fatalw("chain client init failed", "error", err)
		}
		tokens = client
	} else {
		tokens = chain.NewOffchain()
		logger.Sugar.Infow("chain disabled, using off-chain token ledger")
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := service.NewSearchService(meiliClient)

	directory := lens.NewDirectory(cfg.LensAPIURL)
	limiter := service.NewRateLimiter(redisClient, cfg)

	// Services
	notificationSvc := service.NewNotificationService(notificationRepo)
	rewardSvc := service.NewRewardService(ledgerRepo, tokens, notificationSvc)
	achievementSvc := service.NewAchievementService(achievementRepo, userRepo, postRepo, rewardSvc, notificationSvc)
	authSvc := service.NewAuthService(userRepo, redisClient, directory, cfg.JWTSecret)
	postSvc := service.NewPostService(postRepo, userRepo, communityRepo, ledgerRepo, rewardSvc, achievementSvc, searchSvc, limiter)
	communitySvc := service.NewCommunityService(communityRepo, userRepo, tokens, achievementSvc)
	challengeSvc := service.NewChallengeService(challengeRepo, userRepo, rewardSvc, notificationSvc)
	leaderboardSvc := service.NewLeaderboardService(userRepo, achievementRepo, redisClient)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	postHandler := handler.NewPostHandler(postSvc)
	communityHandler := handler.NewCommunityHandler(communitySvc)
	challengeHandler := handler.NewChallengeHandler(challengeSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, userRepo)
	tokenHandler := handler.NewTokenHandler(ledgerRepo, userRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, cfg)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/nonce", authHandler.Nonce)
		auth.POST("/verify", authHandler.Verify)
	}

	// Read paths take optional auth so gated content can account for
	// the viewer's holdings.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/posts", postHandler.ListPosts)
		public.GET("/posts/search", postHandler.SearchPosts)
		public.GET("/posts/:id", postHandler.GetPost)
		public.GET("/posts/:id/comments", postHandler.ListComments)
		public.GET("/communities", communityHandler.List)
		public.GET("/communities/:id", communityHandler.Get)
		public.GET("/challenges", challengeHandler.List)
		public.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		public.GET("/users/:address/progress", leaderboardHandler.GetUserProgress)
		public.GET("/users/:address/balance", tokenHandler.GetBalance)
		public.GET("/users/:address/transactions", tokenHandler.GetTransactions)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/me/progress", leaderboardHandler.GetMyProgress)

		protected.POST("/posts", postHandler.CreatePost)
		protected.POST("/posts/:id/comments", postHandler.CreateComment)
		protected.POST("/posts/:id/vote", postHandler.CastVote)
		protected.POST("/posts/:id/like", postHandler.LikePost)

		protected.POST("/communities", communityHandler.Create)
		protected.POST("/communities/:id/join", communityHandler.Join)

		protected.PUT("/challenges/:id/progress", challengeHandler.UpdateProgress)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
