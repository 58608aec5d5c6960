package otpAuth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/otpAuth/internal/mailq"
	"github.com/MrEthical07/otpAuth/internal/otp"
	"github.com/MrEthical07/otpAuth/internal/rate"
	"github.com/MrEthical07/otpAuth/jwt"
	"github.com/MrEthical07/otpAuth/password"
	"github.com/redis/go-redis/v9"
)

const timingEqualizerPassword = "otpauth-timing-equalizer"

// Builder assembles an [Engine]. A Builder can be built once.
type Builder struct {
	config   Config
	redis    redis.UniversalClient
	store    UserStore
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig replaces the whole configuration; the secret is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis backs the rate gate with Redis so that all replicas share one
// window per client. Without it the gate is process-local.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the required user-record store.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.store = store
	return b
}

// WithNotifier sets the mail transport. Without one, notifications are
// logged at debug level and discarded.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides time.Now for OTP expiry, token timestamps and the
// in-memory rate gate.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the hashing latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build validates the configuration and wires every component. A missing
// JWT secret or user store is a startup error.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("user store required")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	hasher, err := password.NewArgon2(cfg.hasherConfig())
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret: cfg.JWT.Secret,
		TTL:    cfg.JWT.TTL,
		Issuer: cfg.JWT.Issuer,
		Leeway: cfg.JWT.Leeway,
		Now:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	dummyHash, err := hasher.Hash(timingEqualizerPassword)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	e := &Engine{
		config:    cfg,
		store:     b.store,
		notifier:  b.notifier,
		hasher:    hasher,
		tokens:    tokens,
		codes:     otp.NewGenerator(nil),
		metrics:   NewMetrics(cfg.Metrics),
		logger:    logger,
		now:       now,
		dummyHash: dummyHash,
	}

	if cfg.RateLimit.Enabled {
		rules := rate.Rules{
			rate.ClassOTPSend:   rate.Rule(cfg.RateLimit.OTPSend),
			rate.ClassOTPVerify: rate.Rule(cfg.RateLimit.OTPVerify),
			rate.ClassLogin:     rate.Rule(cfg.RateLimit.Login),
		}
		if b.redis != nil {
			e.gate = rate.NewRedisGate(b.redis, rules, cfg.RateLimit.KeyPrefix)
		} else {
			e.gate = rate.NewMemoryGate(rules, now)
		}
	}

	if b.notifier != nil {
		notifier := b.notifier
		e.mail = mailq.New(mailq.Config{
			BufferSize:  cfg.Mail.BufferSize,
			DropIfFull:  cfg.Mail.DropIfFull,
			SendTimeout: cfg.Mail.SendTimeout,
			OnError: func(msg mailq.Message, err error) {
				e.metricInc(MetricMailFailed)
				e.logger.Warn("notification delivery failed", "subject", msg.Subject, "err", err)
			},
			OnSent: func(mailq.Message) {
				e.metricInc(MetricMailSent)
			},
		}, func(ctx context.Context, msg mailq.Message) error {
			return notifier.Send(ctx, msg.To, msg.Subject, msg.Body)
		})
	}

	b.built = true
	return e, nil
}
