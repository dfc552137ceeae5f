package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Optional admin surfaces
	EnableExports   bool
	EnableDashboard bool

	// Budget for HealthCheck and Shutdown when the caller passes no deadline
	DefaultTimeout time.Duration
}

func DefaultServiceManagerConfig() ServiceManagerConfig {
	return ServiceManagerConfig{
		EnableExports:   true,
		EnableDashboard: true,
		DefaultTimeout:  10 * time.Second,
	}
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   *Dependencies
	logger *slog.Logger
	config ServiceManagerConfig

	// Service instances
	courseService         CourseService
	progressService       ProgressService
	courseTestService     CourseTestService
	certificateService    CertificateService
	assessmentTestService AssessmentTestService
	testSetService        TestSetService
	exportService         ExportService
	profileService        ProfileService
	dashboardService      DashboardService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps *Dependencies, config ServiceManagerConfig) ServiceManager {
	deps = deps.withDefaults()
	return &serviceManager{
		deps:   deps,
		logger: deps.Logger,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps *Dependencies) ServiceManager {
	return NewServiceManager(deps, DefaultServiceManagerConfig())
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) initializeServices() error {
	if sm.deps.Repo == nil {
		return errors.New("repository is required")
	}
	if sm.deps.Store == nil {
		return errors.New("artifact store is required")
	}

	sm.courseService = NewCourseService(sm.deps)
	sm.logger.Info("Course service initialized")

	sm.progressService = NewProgressService(sm.deps)
	sm.logger.Info("Progress service initialized")

	sm.certificateService = NewCertificateService(sm.deps)
	sm.logger.Info("Certificate service initialized")

	if sm.deps.Sessions == nil {
		sm.logger.Warn("No question session store, submissions are scored against the whole bank")
	}
	sm.courseTestService = NewCourseTestService(sm.deps, sm.certificateService)
	sm.logger.Info("Course test service initialized")

	sm.assessmentTestService = NewAssessmentTestService(sm.deps)
	sm.logger.Info("Assessment test service initialized")

	sm.testSetService = NewTestSetService(sm.deps)
	sm.logger.Info("Test set service initialized")

	sm.profileService = NewProfileService(sm.deps, sm.progressService)
	sm.logger.Info("Profile service initialized")

	if sm.config.EnableExports {
		sm.exportService = NewExportService(sm.deps)
		sm.logger.Info("Export service initialized")
	}

	if sm.config.EnableDashboard {
		sm.dashboardService = NewDashboardService(sm.deps)
		sm.logger.Info("Dashboard service initialized")
	}

	return nil
}

// ===== SERVICE GETTERS =====

// ready panics when a getter is reached before Initialize; callers must hold mu.RLock
func (sm *serviceManager) ready(name string, svc interface{}) {
	if !sm.initialized {
		panic("service manager not initialized")
	}
	if svc == nil {
		panic(name + " service not enabled or not initialized")
	}
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("course", sm.courseService)
	return sm.courseService
}

func (sm *serviceManager) Progress() ProgressService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("progress", sm.progressService)
	return sm.progressService
}

func (sm *serviceManager) CourseTest() CourseTestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("course test", sm.courseTestService)
	return sm.courseTestService
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("certificate", sm.certificateService)
	return sm.certificateService
}

func (sm *serviceManager) AssessmentTest() AssessmentTestService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("assessment test", sm.assessmentTestService)
	return sm.assessmentTestService
}

func (sm *serviceManager) TestSet() TestSetService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("test set", sm.testSetService)
	return sm.testSetService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("export", sm.exportService)
	return sm.exportService
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("profile", sm.profileService)
	return sm.profileService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.ready("dashboard", sm.dashboardService)
	return sm.dashboardService
}

// ===== HEALTH AND LIFECYCLE =====

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	ctx, cancel := sm.withTimeout(ctx)
	defer cancel()

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

// Shutdown closes the event publisher. The repository is owned by the caller.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.deps.Events != nil {
		if err := sm.deps.Events.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")
	return nil
}

// withTimeout applies DefaultTimeout when the parent has no deadline
func (sm *serviceManager) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok || sm.config.DefaultTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
