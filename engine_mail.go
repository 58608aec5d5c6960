package otpAuth

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/otpAuth/internal/mailq"
)

// sendMail queues msg. Delivery outcome is only logged and counted.
func (e *Engine) sendMail(ctx context.Context, msg mailq.Message) {
	if e.mail == nil {
		e.logger.DebugContext(ctx, "no notifier configured, mail discarded", "subject", msg.Subject)
		return
	}
	if !e.mail.Enqueue(ctx, msg) {
		e.metricInc(MetricMailDropped)
		e.logger.WarnContext(ctx, "notification dropped", "subject", msg.Subject)
	}
}

func welcomeMessage(app string, u UserRecord) mailq.Message {
	return mailq.Message{
		To:      u.Email,
		Subject: "Welcome to " + app,
		Body: fmt.Sprintf(
			"Hi %s,\n\nWelcome to %s. Your account has been created with the email address %s.\n",
			u.Name, app, u.Email,
		),
	}
}

func verifyOTPMessage(app string, u UserRecord, code string, ttl time.Duration) mailq.Message {
	return mailq.Message{
		To:      u.Email,
		Subject: app + " account verification code",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour verification code is %s. Enter it to verify your account. It expires in %s.\n",
			u.Name, code, humanDuration(ttl),
		),
	}
}

func resetOTPMessage(app string, u UserRecord, code string, ttl time.Duration) mailq.Message {
	return mailq.Message{
		To:      u.Email,
		Subject: app + " password reset code",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour password reset code is %s. Use it to choose a new password. It expires in %s.\n\nIf you did not ask for a reset, ignore this email.\n",
			u.Name, code, humanDuration(ttl),
		),
	}
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
