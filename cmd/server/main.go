package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"teamwear_shop/internal/app"
	"teamwear_shop/internal/config"
	"teamwear_shop/internal/middleware"
	"teamwear_shop/internal/router"
	"teamwear_shop/internal/task"
	"teamwear_shop/pkg/logger"
)

// @title Teamwear Shop API
// @version 1.0
// @description 定制运动服商店：商品目录、俱乐部、结账与订单后台
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. 初始化依赖
	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("初始化失败", zap.Error(err))
	}
	defer deps.Close()

	// 2. 启动定时任务
	tasks := task.NewTaskManager(&task.TaskManagerDeps{
		Reconciler: reconciler(deps),
	}, &task.TaskManagerConfig{
		ReconcileEnabled: true,
		ReconcileSpec:    cfg.Tasks.ReconcileCron,
	}, log)
	if err := tasks.Start(); err != nil {
		log.Fatal("定时任务启动失败", zap.Error(err))
	}
	defer tasks.Stop()

	// 3. 初始化路由
	checkoutLimiter := middleware.NewIPRateLimiter(20, 5)
	go sweepLimiter(ctx, checkoutLimiter)

	r := router.SetupRouter(deps.Controllers, router.Options{
		Log:             log,
		UploadDir:       deps.UploadDir(),
		CheckoutLimiter: checkoutLimiter,
		Cooldown:        &middleware.CooldownLimiter{},
	})

	// 4. 启动服务
	startServer(ctx, r, cfg.Port, log)
}

// reconciler 支付未配置时不启动对账
func reconciler(deps *app.Dependencies) task.Reconciler {
	if deps.Config.MercadoPago.AccessToken == "" {
		return nil
	}
	return deps.Services.Payment
}

// sweepLimiter 定期清理空闲的限流条目
func sweepLimiter(ctx context.Context, l *middleware.IPRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(ctx context.Context, r *gin.Engine, port string, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		log.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("服务启动失败", zap.Error(err))
			os.Exit(1)
		}
	}()

	// 等待退出信号
	<-ctx.Done()
	log.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("服务强制关闭", zap.Error(err))
	}
	log.Info("服务已退出")
}
