package services

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/certificate"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/events"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/repositories"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/storage"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/validator"
)

// Shuffler permutes n elements through swap
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// lockedRand makes a *rand.Rand safe for concurrent requests
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewShuffler(seed uint64) Shuffler {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// SessionStore remembers which questions were served to a user for a course
type SessionStore interface {
	Save(ctx context.Context, userID string, courseID uint, questionIDs []uint, startedAt time.Time, ttl time.Duration) error
	Load(ctx context.Context, userID string, courseID uint) ([]uint, bool, error)
	Clear(ctx context.Context, userID string, courseID uint)
}

var _ SessionStore = (*cache.QuestionSessionStore)(nil)

// CertificateRenderer draws a certificate PDF
type CertificateRenderer interface {
	Render(d certificate.Data) ([]byte, error)
}

// Dependencies is shared by every service
type Dependencies struct {
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator
	Events    events.EventPublisher
	Store     storage.ArtifactStore
	Renderer  CertificateRenderer
	Sessions  SessionStore
	Shuffler  Shuffler
	Clock     func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Clock != nil {
		return d.Clock().UTC()
	}
	return time.Now().UTC()
}

func (d *Dependencies) withDefaults() *Dependencies {
	out := *d
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Validator == nil {
		out.Validator = validator.New()
	}
	if out.Shuffler == nil {
		out.Shuffler = NewShuffler(uint64(time.Now().UnixNano()))
	}
	if out.Renderer == nil {
		out.Renderer = certificate.NewRenderer()
	}
	return &out
}

// publish sends an event after the surrounding transaction has committed.
// Failures are logged and never reach the caller.
func (d *Dependencies) publish(ctx context.Context, event *events.Event) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Publish(ctx, event); err != nil {
		d.Logger.Warn("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}
