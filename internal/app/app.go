package app

import (
	"context"
	"time"

	"github.com/vyomfadia/contract-me/internal/notify"
	"github.com/vyomfadia/contract-me/internal/store"
	"github.com/vyomfadia/contract-me/pkg/ai"
	"github.com/vyomfadia/contract-me/pkg/domain"
	"github.com/vyomfadia/contract-me/pkg/voice"
)

// VoiceCaller places outbound phone calls to contractors.
type VoiceCaller interface {
	PlaceOfferCall(ctx context.Context, params voice.OfferParams) (voice.Call, error)
	PlaceNotificationCall(ctx context.Context, params voice.NotificationParams) (voice.Call, error)
}

// Notifier enqueues customer notifications for asynchronous delivery.
type Notifier interface {
	Enqueue(ctx context.Context, n notify.Notification) (notify.Notification, error)
}

// EnrichPublisher hands an issue off to the enrichment worker.
type EnrichPublisher interface {
	PublishEnrichment(ctx context.Context, issueID string) error
}

// Config carries the tunables of the scheduling and dispatch engine.
// Zero values are replaced with the defaults below in New.
type Config struct {
	// MaxOffers caps how many contractors receive an offer call per job.
	MaxOffers int
	// OfferStagger is the delay between consecutive offer calls.
	OfferStagger time.Duration
	// CandidateSlotDuration is the fixed window the slot finder checks
	// against existing bookings.
	CandidateSlotDuration time.Duration
	// DefaultPriority applies when an issue carries no recognized priority.
	DefaultPriority domain.Priority
	// DefaultAppointmentMinutes applies when enrichment produced no usable
	// time estimate.
	DefaultAppointmentMinutes int
	// MinAppointmentMinutes and MaxAppointmentMinutes clamp the estimate.
	MinAppointmentMinutes int
	MaxAppointmentMinutes int
}

const (
	defaultMaxOffers             = 5
	defaultOfferStagger          = 30 * time.Second
	defaultCandidateSlotDuration = 120 * time.Minute
	defaultAppointmentMinutes    = 120
	defaultMinAppointmentMinutes = 60
	defaultMaxAppointmentMinutes = 480
)

func (c Config) withDefaults() Config {
	if c.MaxOffers <= 0 {
		c.MaxOffers = defaultMaxOffers
	}
	if c.OfferStagger <= 0 {
		c.OfferStagger = defaultOfferStagger
	}
	if c.CandidateSlotDuration <= 0 {
		c.CandidateSlotDuration = defaultCandidateSlotDuration
	}
	if c.DefaultPriority == "" {
		c.DefaultPriority = domain.PriorityNormal
	}
	if c.DefaultAppointmentMinutes <= 0 {
		c.DefaultAppointmentMinutes = defaultAppointmentMinutes
	}
	if c.MinAppointmentMinutes <= 0 {
		c.MinAppointmentMinutes = defaultMinAppointmentMinutes
	}
	if c.MaxAppointmentMinutes <= 0 {
		c.MaxAppointmentMinutes = defaultMaxAppointmentMinutes
	}
	return c
}

// Deps groups the collaborators an App needs. Voice, Notifier, EnrichQueue
// and Enricher may be nil in deployments that disable the matching feature.
type Deps struct {
	Store       store.Store
	Enricher    ai.Enricher
	Voice       VoiceCaller
	Notifier    Notifier
	EnrichQueue EnrichPublisher
	Now         func() time.Time
}

// App implements the scheduling, matching and claiming operations on top of
// the store. All methods are safe for concurrent use when the underlying
// store is.
type App struct {
	store       store.Store
	enricher    ai.Enricher
	voice       VoiceCaller
	notifier    Notifier
	enrichQueue EnrichPublisher
	now         func() time.Time
	cfg         Config
}

func New(deps Deps, cfg Config) *App {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		store:       deps.Store,
		enricher:    deps.Enricher,
		voice:       deps.Voice,
		notifier:    deps.Notifier,
		enrichQueue: deps.EnrichQueue,
		now:         now,
		cfg:         cfg.withDefaults(),
	}
}

// GetUser looks up a user by id.
func (a *App) GetUser(id string) (domain.User, bool, error) {
	return a.store.GetUserByID(id)
}
