package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager
	cacheScope   *cacheScope

	// Repository instances
	course         repositories.CourseRepository
	module         repositories.ModuleRepository
	testSet        repositories.TestSetRepository
	progress       repositories.ProgressRepository
	result         repositories.ResultRepository
	certificate    repositories.CertificateRepository
	assessmentTest repositories.AssessmentTestRepository
	user           repositories.UserRepository
	identity       repositories.IdentityRepository
	dashboard      repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB            *gorm.DB
	RedisClient   *redis.Client
	CasdoorConfig casdoor.CasdoorConfig
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := newRepositoryOn(config.DB, config.RedisClient, cacheManager, newCacheScope(cacheManager))

	// Identity lookups go to Casdoor, never to the transaction
	repo.identity = casdoor.NewUserDirectory(config.CasdoorConfig, cacheManager)

	return repo
}

func newRepositoryOn(db *gorm.DB, redisClient *redis.Client, cm *cache.CacheManager, scope *cacheScope) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:             db,
		redisClient:    redisClient,
		cacheManager:   cm,
		cacheScope:     scope,
		course:         &coursePostgreSQL{db: db, cache: scope},
		module:         NewModulePostgreSQL(db),
		testSet:        &testSetPostgreSQL{db: db, cache: scope},
		progress:       NewProgressPostgreSQL(db),
		result:         NewResultPostgreSQL(db),
		certificate:    NewCertificatePostgreSQL(db),
		assessmentTest: NewAssessmentTestPostgreSQL(db),
		user:           NewUserPostgreSQL(db),
		dashboard:      NewDashboardRepository(db),
	}
}

func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

func (r *PostgreSQLRepository) Module() repositories.ModuleRepository {
	return r.module
}

func (r *PostgreSQLRepository) TestSet() repositories.TestSetRepository {
	return r.testSet
}

func (r *PostgreSQLRepository) Progress() repositories.ProgressRepository {
	return r.progress
}

func (r *PostgreSQLRepository) Result() repositories.ResultRepository {
	return r.result
}

func (r *PostgreSQLRepository) Certificate() repositories.CertificateRepository {
	return r.certificate
}

func (r *PostgreSQLRepository) AssessmentTest() repositories.AssessmentTestRepository {
	return r.assessmentTest
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Identity() repositories.IdentityRepository {
	return r.identity
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

// WithTransaction executes a function within a database transaction.
// Cache invalidations issued inside fn run only once the transaction commits.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	// Nested transactions queue on the outermost one
	scope := r.cacheScope
	if !scope.inTx {
		scope = newTxCacheScope(r.cacheManager)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := newRepositoryOn(tx, r.redisClient, r.cacheManager, scope)

		// Identity directory is external
		txRepo.identity = r.identity

		return fn(txRepo)
	})
	if err != nil {
		return err
	}
	if scope != r.cacheScope {
		scope.flush(ctx)
	}
	return nil
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}
	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

// Initialize verifies connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if err := rm.config.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
