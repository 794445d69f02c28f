package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"golang.org/x/time/rate"
)

// Limiter é o balde de tokens de cota de uma plataforma. Quando a espera por
// um token passaria do prazo do contexto, a chamada falha como RateLimited em
// vez de estourar o timeout.
type Limiter struct {
	platform string
	limiter  *rate.Limiter
}

func NewLimiter(platform string, requestsPerSecond float64, burst int) *Limiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		platform: platform,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil && ctx.Err() != context.DeadlineExceeded {
			return ctx.Err()
		}
		return domain.NewRateLimited(l.platform, err)
	}
	return nil
}

// Penalize consome a cota disponível, usado quando a própria plataforma
// responde com limite de taxa.
func (l *Limiter) Penalize() {
	if l == nil {
		return
	}
	_ = l.limiter.ReserveN(time.Now(), l.limiter.Burst())
}

func (l *Limiter) String() string {
	if l == nil {
		return "no limiter"
	}
	return fmt.Sprintf("%s limiter (%.2f rps, burst %d)", l.platform, float64(l.limiter.Limit()), l.limiter.Burst())
}
