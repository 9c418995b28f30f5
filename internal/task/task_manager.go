package task

import (
	"go.uber.org/zap"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
type TaskManager struct {
	reconcileTask *ReconcileTask
	log           *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	// Reconciler 为 nil 时（支付未配置）不启动对账任务
	Reconciler Reconciler
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	ReconcileEnabled bool
	ReconcileSpec    string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		ReconcileEnabled: true,
		ReconcileSpec:    DefaultReconcileSpec,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig, log *zap.Logger) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{log: log}
	if cfg.ReconcileEnabled && deps.Reconciler != nil {
		tm.reconcileTask = NewReconcileTask(deps.Reconciler, cfg.ReconcileSpec, log)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	if tm.reconcileTask != nil {
		if err := tm.reconcileTask.Start(); err != nil {
			return err
		}
	}
	tm.log.Info("后台任务已启动", zap.Any("tasks", tm.Status()))
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.reconcileTask != nil {
		tm.reconcileTask.Stop()
	}
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"reconcile": tm.reconcileTask != nil,
	}
}
