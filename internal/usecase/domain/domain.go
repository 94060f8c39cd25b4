package domain

import (
	"context"
	"time"

	"wake-up-challenge/internal/aggregation"
	"wake-up-challenge/internal/push"
	"wake-up-challenge/internal/repository"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// NotificationOptions holds the wake-up push payload and batching.
type NotificationOptions struct {
	Title     string
	Body      string
	BatchSize int
}

// Options carries the collaborators of the usecase layer.
type Options struct {
	Timeout      time.Duration
	Engine       *aggregation.Engine
	Location     *time.Location
	Clock        func() time.Time
	Sender       push.Sender
	MaxTeamSize  int
	Notification NotificationOptions
}

// Usecase struct implements all usecase interfaces.
type Usecase struct {
	ctx         context.Context
	log         *zap.SugaredLogger
	repo        repository.Repository
	timeout     time.Duration
	engine      *aggregation.Engine
	loc         *time.Location
	now         func() time.Time
	sender      push.Sender
	maxTeamSize int
	notify      NotificationOptions
	policy      *bluemonday.Policy
}

// New constructs a new usecase layer with its dependencies.
func New(
	log *zap.SugaredLogger,
	ctx context.Context,
	repo repository.Repository,
	opts Options,
) *Usecase {
	if opts.Engine == nil {
		opts.Engine = aggregation.New(aggregation.DefaultRules(), aggregation.DefaultCatalogue())
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Sender == nil {
		opts.Sender = push.NewLogSender(log)
	}
	if opts.MaxTeamSize <= 0 {
		opts.MaxTeamSize = 50
	}
	if opts.Notification.BatchSize <= 0 || opts.Notification.BatchSize > push.MaxBatch {
		opts.Notification.BatchSize = push.MaxBatch
	}
	return &Usecase{
		ctx:         ctx,
		log:         log.Named("usecase"),
		repo:        repo,
		timeout:     opts.Timeout,
		engine:      opts.Engine,
		loc:         opts.Location,
		now:         opts.Clock,
		sender:      opts.Sender,
		maxTeamSize: opts.MaxTeamSize,
		notify:      opts.Notification,
		policy:      bluemonday.StrictPolicy(),
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
