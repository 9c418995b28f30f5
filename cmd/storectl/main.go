package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"teamwear_shop/internal/app"
	"teamwear_shop/internal/config"
	"teamwear_shop/internal/service"
	"teamwear_shop/pkg/logger"
)

// storectl 运维命令行：迁移、创建管理员、手动对账
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:  "storectl",
		Usage: "teamwear shop 运维工具",
		Commands: []*cli.Command{
			migrateCommand(),
			createAdminCommand(),
			reconcileCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "自动迁移全部数据表",
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Println("migrate: ok")
			return nil
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "创建后台管理员",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
			&cli.StringFlag{Name: "name"},
		},
		Action: func(c *cli.Context) error {
			return withDeps(c.Context, func(deps *app.Dependencies) error {
				user, err := deps.Services.Auth.CreateAdmin(c.Context, c.String("email"), c.String("password"), c.String("name"))
				if err != nil {
					return err
				}
				fmt.Printf("admin created: id=%d email=%s\n", user.ID, user.Email)
				return nil
			})
		},
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "立即对账一次待支付订单",
		Action: func(c *cli.Context) error {
			return withDeps(c.Context, func(deps *app.Dependencies) error {
				result, err := deps.Services.Payment.ReconcilePending(c.Context)
				if err != nil {
					if errors.Is(err, service.ErrPaymentNotConfigured) {
						return errors.New("MERCADOPAGO_ACCESS_TOKEN 未配置")
					}
					return err
				}
				fmt.Printf("reconcile: checked=%d updated=%d\n", result.Checked, result.Updated)
				return nil
			})
		},
	}
}

func withDeps(ctx context.Context, fn func(*app.Dependencies) error) error {
	cfg := config.Load()
	log := logger.New(cfg.IsDevelopment())

	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("初始化失败", zap.Error(err))
		return err
	}
	defer deps.Close()

	return fn(deps)
}
