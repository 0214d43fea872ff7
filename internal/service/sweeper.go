package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"coupon-api/internal/repository"
)

// ExpirationSweeper es la tarea de fondo que retira cupones vencidos.
// Cada ciclo recorre todos los cupones y retira los que vencieron junto
// con sus compras. No guarda cursor: un ciclo interrumpido se retoma
// completo en el tick siguiente porque Retract es idempotente visto desde
// aca.
type ExpirationSweeper struct {
	logger    *zap.Logger
	coupons   repository.CouponRepository
	lifecycle *CouponLifecycle
	interval  time.Duration
	now       func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewExpirationSweeper(logger *zap.Logger, coupons repository.CouponRepository, lifecycle *CouponLifecycle, interval time.Duration) *ExpirationSweeper {
	if interval <= 0 {
		interval = time.Second
	}
	return &ExpirationSweeper{
		logger:    logger,
		coupons:   coupons,
		lifecycle: lifecycle,
		interval:  interval,
		now:       time.Now,
	}
}

// Start lanza el loop de barrido en segundo plano.
func (s *ExpirationSweeper) Start() {
	s.mu.Lock()
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop = stop
	s.done = done
	s.mu.Unlock()
	s.logger.Info("expiration sweeper started", zap.Duration("interval", s.interval))
	go s.run(stop, done)
}

func (s *ExpirationSweeper) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.SweepOnce(context.Background())
		}
	}
}

// SweepOnce ejecuta un ciclo de barrido completo. Un retiro que pierde la
// carrera contra un borrado concurrente no corta el ciclo.
func (s *ExpirationSweeper) SweepOnce(ctx context.Context) {
	coupons, err := s.coupons.FindAll(ctx)
	if err != nil {
		s.logger.Warn("sweep list coupons failed", zap.Error(err))
		return
	}

	now := s.now()
	for _, coupon := range coupons {
		if !coupon.Expired(now) {
			continue
		}
		err := s.lifecycle.Retract(ctx, coupon.ID)
		switch {
		case err == nil:
			s.logger.Info("expired coupon swept",
				zap.String("coupon_id", coupon.ID),
				zap.Time("end_date", coupon.EndDate),
			)
		case errors.Is(err, ErrCouponNotFound):
			// Alguien lo retiro entre la lectura y el lock.
		default:
			s.logger.Warn("sweep retract failed", zap.String("coupon_id", coupon.ID), zap.Error(err))
		}
	}
}

// Stop pide el corte cooperativo y espera a que termine el ciclo en
// vuelo. Llamadas repetidas, o sin Start previo, son no-op.
func (s *ExpirationSweeper) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.logger.Info("expiration sweeper stopped")
}
