// Package scheduler はcron式で定期ジョブを実行します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job は定期実行される処理です。ctx にはジョブごとのタイムアウトが設定されます。
type Job func(ctx context.Context) error

// Scheduler は登録されたジョブを秒精度のcron式で実行します。
// 同一ジョブの実行が重なった場合は後続をスキップします。
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// New は Scheduler を生成します。ctx がキャンセルされると実行中のジョブにも伝播します。
func New(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		ctx: ctx,
	}
}

// Register はジョブを登録します。
func (s *Scheduler) Register(name, spec string, timeout time.Duration, job Job) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.run(name, timeout, job)
	}))
	if _, err := s.cron.AddJob(spec, wrapped); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	slog.Info("scheduled job registered", "job", name, "spec", spec)
	return nil
}

// RunNow はジョブを即時に同期実行します（起動時実行や手動トリガー用）。
func (s *Scheduler) RunNow(name string, timeout time.Duration, job Job) {
	s.run(name, timeout, job)
}

func (s *Scheduler) run(name string, timeout time.Duration, job Job) {
	if s.ctx.Err() != nil {
		return
	}
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		slog.Error("scheduled job failed", "job", name, "error", err, "elapsed", time.Since(start))
		return
	}
	slog.Info("scheduled job finished", "job", name, "elapsed", time.Since(start))
}

// Start はスケジューラを開始します。
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop は新規実行を止め、実行中のジョブの完了を待ちます。
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}
