package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"team-directory/internal/core/apperr"
	"team-directory/internal/core/clock"
)

// Config 重试参数：最多执行 MaxRetries+1 次
type Config struct {
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		BackoffMultiplier: 2,
	}
}

func (c Config) normalize() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = DefaultConfig().BackoffMultiplier
	}
	return c
}

// Backoff 第 retryIndex 次重试（从 0 开始）之前的等待时长
func Backoff(c Config, retryIndex int) time.Duration {
	c = c.normalize()
	d := float64(c.InitialDelay) * math.Pow(c.BackoffMultiplier, float64(retryIndex))
	if d >= math.MaxInt64 || math.IsInf(d, 0) || math.IsNaN(d) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Outcome 单次 Do 调用的结果，不跨调用复用
type Outcome[T any] struct {
	Success  bool
	Data     T
	Err      error
	Attempts int
}

type Executor struct {
	cfg       Config
	clock     clock.Clock
	log       *zap.Logger
	retryable func(error) bool
}

type Option func(*Executor)

func WithConfig(c Config) Option               { return func(e *Executor) { e.cfg = c } }
func WithClock(c clock.Clock) Option           { return func(e *Executor) { e.clock = c } }
func WithLogger(l *zap.Logger) Option          { return func(e *Executor) { e.log = l } }
func WithClassifier(f func(error) bool) Option { return func(e *Executor) { e.retryable = f } }

func New(opts ...Option) *Executor {
	e := &Executor{cfg: DefaultConfig()}
	for _, o := range opts {
		o(e)
	}
	if e.clock == nil {
		e.clock = clock.Real{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.retryable == nil {
		e.retryable = apperr.IsRetryable
	}
	e.cfg = e.cfg.normalize()
	return e
}

func (e *Executor) Config() Config { return e.cfg }

// Do 使用执行器默认配置
func Do[T any](ctx context.Context, e *Executor, name string, op func(context.Context) (T, error)) Outcome[T] {
	return DoWithConfig(ctx, e, name, e.cfg, op)
}

// DoWithConfig 按指数退避重试 op；不可重试的错误立即返回，最后一次失败后不再等待
func DoWithConfig[T any](ctx context.Context, e *Executor, name string, cfg Config, op func(context.Context) (T, error)) Outcome[T] {
	cfg = cfg.normalize()
	total := cfg.MaxRetries + 1
	log := e.log.With(zap.String("op", name))

	var (
		out     Outcome[T]
		lastErr error
	)
	for attempt := 0; attempt < total; attempt++ {
		out.Attempts++
		attemptsTotal.WithLabelValues(name).Inc()

		data, err := call(ctx, op)
		if err == nil {
			outcomesTotal.WithLabelValues(name, "success").Inc()
			out.Success, out.Data = true, data
			return out
		}
		lastErr = err

		if !e.retryable(err) {
			log.Info("retry: non-retryable failure",
				zap.Int("attempt", out.Attempts), zap.Error(err))
			outcomesTotal.WithLabelValues(name, "terminal").Inc()
			out.Err = err
			return out
		}

		if attempt == total-1 {
			break
		}
		wait := Backoff(cfg, attempt)
		log.Warn("retry: retryable failure",
			zap.Int("attempt", out.Attempts),
			zap.Int("max_attempts", total),
			zap.Duration("backoff", wait),
			zap.Error(err))
		if serr := e.clock.Sleep(ctx, wait); serr != nil {
			outcomesTotal.WithLabelValues(name, "canceled").Inc()
			out.Err = fmt.Errorf("retry cancelled during backoff after %d attempts: %w", out.Attempts, serr)
			return out
		}
	}

	log.Error("retry: all retries exhausted",
		zap.Int("attempts", out.Attempts), zap.Error(lastErr))
	outcomesTotal.WithLabelValues(name, "exhausted").Inc()
	out.Err = lastErr
	return out
}

// call 把 op 里的 panic 转成不可重试的内部错误
func call[T any](ctx context.Context, op func(context.Context) (T, error)) (data T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperr.Internal(fmt.Sprintf("operation panicked: %v", rec), nil)
		}
	}()
	return op(ctx)
}
