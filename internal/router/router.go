package router

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/trailback/backend/internal/handlers"
	"github.com/trailback/backend/internal/middleware"
	"github.com/trailback/backend/internal/notify"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/internal/validators"
	"github.com/trailback/backend/pkg/config"
	"github.com/trailback/backend/pkg/models"
	"github.com/trailback/backend/pkg/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repositories groups the stores the handlers depend on.
type Repositories struct {
	Profiles    repositories.ProfileRepository
	Friendships repositories.FriendshipRepository
	Shares      repositories.ShareRepository
	Memories    repositories.MemoryRepository
	Photos      repositories.PhotoRepository
}

// Dependencies is everything SetupRoutes wires into the handlers.
type Dependencies struct {
	Config       *config.Config
	Repositories Repositories
	Verifier     middleware.TokenVerifier
	Store        storage.ObjectStore
	Events       notify.Publisher
	Logger       zerolog.Logger
}

// Migrate creates the PostgreSQL tables and the MongoDB indexes.
func Migrate(ctx context.Context, pgdb *gorm.DB, mdb *mongo.Database) error {
	if err := pgdb.AutoMigrate(
		&models.Profile{},
		&models.Friendship{},
		&models.MemoryShare{},
	); err != nil {
		return fmt.Errorf("auto migrating postgres models: %w", err)
	}
	if err := repositories.NewMongoMemoryRepository(mdb).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("creating memory indexes: %w", err)
	}
	if err := repositories.NewMongoPhotoRepository(mdb).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("creating photo indexes: %w", err)
	}
	return nil
}

// NewRepositories builds the PostgreSQL and MongoDB backed repositories.
func NewRepositories(pgdb *gorm.DB, mdb *mongo.Database) Repositories {
	return Repositories{
		Profiles:    repositories.NewPostgresProfileRepository(pgdb),
		Friendships: repositories.NewPostgresFriendshipRepository(pgdb),
		Shares:      repositories.NewPostgresShareRepository(pgdb),
		Memories:    repositories.NewMongoMemoryRepository(mdb),
		Photos:      repositories.NewMongoPhotoRepository(mdb),
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Dependencies) {
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(d.Logger)

	e.GET("/", handlers.Root)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/favicon.ico", handlers.Favicon)

	repos := d.Repositories
	if d.Verifier != nil {
		authHandler := handlers.NewAuthHandler(repos.Profiles, d.Verifier)
		authHandler.RegisterAuthRoutes(e.Group("/auth"))
	}

	api := e.Group("")
	if d.Config.AuthRequired {
		api.Use(middleware.FirebaseAuthMiddleware(d.Verifier))
		d.Logger.Info().Msg("Firebase authentication required on API routes")
	}

	handlers.NewMemoryHandler(repos.Memories, repos.Photos, repos.Shares, d.Store, d.Config.PhotosBucket, d.Logger.With().Str("component", "memories").Logger()).
		RegisterMemoryRoutes(api)
	handlers.NewPhotoHandler(repos.Photos, repos.Memories, repos.Shares, d.Store, d.Config.PhotosBucket, d.Logger.With().Str("component", "photos").Logger()).
		RegisterPhotoRoutes(api)
	handlers.NewShareHandler(repos.Shares, repos.Memories, repos.Friendships, d.Events, d.Logger.With().Str("component", "shares").Logger()).
		RegisterShareRoutes(api)
	handlers.NewFriendshipHandler(repos.Friendships, repos.Profiles, d.Events, d.Logger.With().Str("component", "friends").Logger()).
		RegisterFriendshipRoutes(api)
	handlers.NewUserHandler(repos.Profiles, d.Store, d.Config.AvatarsBucket, d.Logger.With().Str("component", "users").Logger()).
		RegisterProfileRoutes(api)

	d.Logger.Info().Int("routes", len(e.Routes())).Msg("All routes configured")
}
