package repositories

import "context"

// Repository aggregates every repository used by the services
type Repository interface {
	// Course domain
	Course() CourseRepository
	Module() ModuleRepository

	// Question bank
	TestSet() TestSetRepository

	// Per-user state
	Progress() ProgressRepository
	Result() ResultRepository
	Certificate() CertificateRepository

	// Global sorting test
	AssessmentTest() AssessmentTestRepository

	// Local user profiles and the external identity directory
	User() UserRepository
	Identity() IdentityRepository

	// Admin analytics
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
