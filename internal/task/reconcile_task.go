package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"teamwear_shop/internal/api/dto"
)

// Reconciler 待支付订单对账
type Reconciler interface {
	ReconcilePending(ctx context.Context) (*dto.ReconcileResp, error)
}

// DefaultReconcileSpec 每 10 分钟执行一次（秒级 cron）
const DefaultReconcileSpec = "0 */10 * * * *"

// ReconcileTask 定时补偿丢失的支付通知
type ReconcileTask struct {
	reconciler Reconciler
	cron       *cron.Cron
	spec       string
	timeout    time.Duration
	log        *zap.Logger

	// 同一时刻只跑一轮
	running sync.Mutex
}

func NewReconcileTask(reconciler Reconciler, spec string, log *zap.Logger) *ReconcileTask {
	if spec == "" {
		spec = DefaultReconcileSpec
	}
	return &ReconcileTask{
		reconciler: reconciler,
		cron:       cron.New(cron.WithSeconds()), // 支持秒级控制
		spec:       spec,
		timeout:    5 * time.Minute,
		log:        log.Named("reconcile"),
	}
}

// Start 注册并启动定时任务
func (t *ReconcileTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, t.run); err != nil {
		return err
	}
	t.cron.Start()
	t.log.Info("对账任务已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止调度，并等待正在执行的一轮结束
func (t *ReconcileTask) Stop() {
	<-t.cron.Stop().Done()
	t.log.Info("对账任务已停止")
}

// RunOnce 立即执行一轮，上一轮未结束时跳过
func (t *ReconcileTask) RunOnce(ctx context.Context) (*dto.ReconcileResp, bool, error) {
	if !t.running.TryLock() {
		return nil, false, nil
	}
	defer t.running.Unlock()

	result, err := t.reconciler.ReconcilePending(ctx)
	return result, true, err
}

func (t *ReconcileTask) run() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	result, ran, err := t.RunOnce(ctx)
	switch {
	case !ran:
		t.log.Warn("上一轮对账尚未结束，跳过")
	case err != nil:
		t.log.Error("对账失败", zap.Error(err))
	default:
		t.log.Debug("本轮对账完成", zap.Int("checked", result.Checked), zap.Int("updated", result.Updated))
	}
}
