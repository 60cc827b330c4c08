// Package retry reintenta una operación falible con backoff exponencial acotado.
//
// El retardo entre el intento n y el n+1 es BaseDelay * 2^(n-1) (sin jitter):
// con los valores por defecto 1s, 2s, 4s... hasta agotar MaxAttempts.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Config parámetros del reintento. Se construye una vez y no se modifica.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultConfig devuelve 3 intentos con retardo base de 1 s.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

type options struct {
	cfg     Config
	logger  *zerolog.Logger
	onRetry func(attempt int, err error, delay time.Duration)
	op      string
}

// Option modifica una llamada a Do.
type Option func(*options)

// WithConfig reemplaza MaxAttempts y BaseDelay. Valores <= 0 conservan el default.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.MaxAttempts > 0 {
			o.cfg.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.BaseDelay > 0 {
			o.cfg.BaseDelay = cfg.BaseDelay
		}
	}
}

// WithMaxAttempts fija el número total de invocaciones.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.MaxAttempts = n
		}
	}
}

// WithBaseDelay fija el retardo antes del segundo intento.
func WithBaseDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cfg.BaseDelay = d
		}
	}
}

// WithLogger usa l para las advertencias de reintento en lugar del logger global.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithOperation nombra la operación en los logs.
func WithOperation(name string) Option {
	return func(o *options) { o.op = name }
}

// OnRetry registra un hook invocado tras cada intento fallido que será reintentado.
func OnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(o *options) { o.onRetry = fn }
}

// Permanent marca err como no reintentable: Do lo devuelve sin esperar.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do invoca op hasta que tenga éxito o se agoten los intentos. Devuelve el
// resultado del primer éxito o el error del último intento. La cancelación de
// ctx interrumpe la espera y devuelve ctx.Err().
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	o := options{cfg: DefaultConfig()}
	for _, fn := range opts {
		fn(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = &log.Logger
	}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		return op(ctx)
	}
	notify := func(err error, delay time.Duration) {
		logger.Warn().
			Err(err).
			Str("op", o.op).
			Int("attempt", attempt).
			Int("max_attempts", o.cfg.MaxAttempts).
			Dur("delay", delay).
			Msgf("intento %d falló, reintentando en %s", attempt, delay)
		if o.onRetry != nil {
			o.onRetry(attempt, err, delay)
		}
	}

	res, err := backoff.RetryNotifyWithData(operation, newBackOff(ctx, o.cfg), notify)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return res, perm.Err
	}
	return res, err
}

// Run es Do para operaciones sin resultado.
func Run(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

// Delay devuelve el retardo que sigue al intento n (1-based): base * 2^(n-1).
func Delay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
}

func newBackOff(ctx context.Context, cfg Config) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = Delay(cfg.BaseDelay, cfg.MaxAttempts)
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := uint64(0)
	if cfg.MaxAttempts > 1 {
		retries = uint64(cfg.MaxAttempts - 1)
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, retries), ctx)
}
