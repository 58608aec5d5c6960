package otpAuth

import (
	"errors"
	"time"

	"github.com/MrEthical07/otpAuth/password"
)

// Config is the complete engine configuration. Start from [DefaultConfig]
// and override fields; [Builder.Build] calls [Config.Validate].
type Config struct {
	JWT       JWTConfig
	Password  PasswordConfig
	OTP       OTPConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures session token signing. Secret has no default: an
// engine cannot be built without one.
type JWTConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds the argon2id work factor and the strength policy.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MinStrength is the lowest accepted tier for new passwords.
	MinStrength password.Strength
	// EnforceOnReset applies MinStrength to ResetPassword as well as Register.
	EnforceOnReset bool
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig shapes issued codes.
type OTPConfig struct {
	Digits int
	TTL    time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateRule is the capacity of one rate class.
type RateRule struct {
	Limit  int
	Window time.Duration
}

// RateLimitConfig configures the per-class request gate.
type RateLimitConfig struct {
	Enabled   bool
	KeyPrefix string
	OTPSend   RateRule
	OTPVerify RateRule
	Login     RateRule
}

// Rule returns the rule for class.
func (c RateLimitConfig) Rule(class RateClass) (RateRule, bool) {
	switch class {
	case RateOTPSend:
		return c.OTPSend, true
	case RateOTPVerify:
		return c.OTPVerify, true
	case RateLogin:
		return c.Login, true
	default:
		return RateRule{}, false
	}
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig configures asynchronous notification delivery.
type MailConfig struct {
	AppName     string
	BufferSize  int
	DropIfFull  bool
	SendTimeout time.Duration
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns production defaults. JWT.Secret is left empty.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			TTL:    7 * 24 * time.Hour,
			Issuer: "otpauth",
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			MinStrength:    password.Medium,
			EnforceOnReset: true,
		},
		OTP: OTPConfig{
			Digits: 6,
			TTL:    10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			KeyPrefix: "otpauth:rl",
			OTPSend:   RateRule{Limit: 3, Window: 10 * time.Minute},
			OTPVerify: RateRule{Limit: 5, Window: 10 * time.Minute},
			Login:     RateRule{Limit: 10, Window: 15 * time.Minute},
		},
		Mail: MailConfig{
			AppName:     "otpAuth",
			BufferSize:  256,
			DropIfFull:  true,
			SendTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT Secret is required")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT TTL must be > 0")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	if err := c.hasherConfig().Validate(); err != nil {
		return err
	}
	if c.Password.MinStrength < password.TooWeak || c.Password.MinStrength > password.Strong {
		return errors.New("Password MinStrength is invalid")
	}

	if c.OTP.Digits < 6 || c.OTP.Digits > 10 {
		return errors.New("OTP Digits must be between 6 and 10")
	}
	if c.OTP.TTL <= 0 || c.OTP.TTL > time.Hour {
		return errors.New("OTP TTL must be between 0 and 1h")
	}

	if c.RateLimit.Enabled {
		for _, class := range []RateClass{RateOTPSend, RateOTPVerify, RateLogin} {
			rule, _ := c.RateLimit.Rule(class)
			if rule.Limit <= 0 || rule.Window <= 0 {
				return errors.New("RateLimit " + string(class) + " limit and window must be > 0")
			}
		}
	}

	if c.Mail.BufferSize <= 0 {
		return errors.New("Mail BufferSize must be > 0")
	}
	if c.Mail.SendTimeout <= 0 {
		return errors.New("Mail SendTimeout must be > 0")
	}

	return nil
}

func (c *Config) hasherConfig() password.Config {
	return password.Config{
		Memory:      c.Password.Memory,
		Time:        c.Password.Time,
		Parallelism: c.Password.Parallelism,
		SaltLength:  c.Password.SaltLength,
		KeyLength:   c.Password.KeyLength,
	}
}
