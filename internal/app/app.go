package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamwear_shop/internal/config"
	"teamwear_shop/internal/controller"
	"teamwear_shop/internal/event"
	"teamwear_shop/internal/middleware"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
	"teamwear_shop/internal/router"
	"teamwear_shop/internal/service"
	"teamwear_shop/pkg/database"
	"teamwear_shop/pkg/georef"
	"teamwear_shop/pkg/mailer"
	"teamwear_shop/pkg/mercadopago"
	"teamwear_shop/pkg/redisx"
	"teamwear_shop/pkg/utils"
)

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Redis       *redis.Client // 未配置时为 nil
	Publisher   event.Publisher
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers

	// kafka 发布器需要在退出时排空
	kafka *event.KafkaPublisher
}

// Repositories 仓库集合
type Repositories struct {
	Admin    repository.AdminUserRepository
	Product  repository.ProductRepository
	Category repository.CategoryRepository
	Club     repository.ClubRepository
	Link     repository.ClubProductRepository
	Carousel repository.CarouselRepository
	Order    repository.OrderRepository
}

// Services 服务集合
type Services struct {
	Auth     *service.AuthService
	Product  *service.ProductService
	Category *service.CategoryService
	Club     *service.ClubService
	Carousel *service.CarouselService
	Upload   *service.UploadService
	Notify   *service.NotifyService
	Checkout *service.CheckoutService
	Payment  *service.PaymentService
	Order    *service.OrderService
	Geo      *service.GeoService
}

// ==================== 初始化函数 ====================

// OpenDatabase 连接数据库并自动迁移
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.InitDB(cfg.Database.URL, cfg.IsDevelopment(), model.AllModels()...)
}

// Build 初始化所有依赖
// ctx 用于后台组件（kafka 发布循环）的生命周期
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTTL,
		Issuer:          "teamwear-shop",
	})

	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config: cfg,
		Log:    log,
		DB:     db,
		Repos:  initRepositories(db),
	}

	deps.Redis = initRedis(ctx, cfg, log)
	deps.Publisher = deps.initPublisher(ctx)

	services, err := deps.initServices()
	if err != nil {
		return nil, err
	}
	deps.Services = services
	deps.Controllers = initControllers(services, log)

	return deps, nil
}

// Close 释放外部连接
func (d *Dependencies) Close() {
	if d.kafka != nil {
		d.kafka.Close()
		d.kafka.WaitClosed()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = d.Log.Sync()
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Admin:    repository.NewAdminUserRepository(db),
		Product:  repository.NewProductRepository(db),
		Category: repository.NewCategoryRepository(db),
		Club:     repository.NewClubRepository(db),
		Link:     repository.NewClubProductRepository(db),
		Carousel: repository.NewCarouselRepository(db),
		Order:    repository.NewOrderRepository(db),
	}
}

// initRedis 可选组件，连不上时退回内存缓存
func initRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rdb := redisx.New(cfg.Redis.Addr)
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Warn("redis 不可用，使用内存缓存", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func (d *Dependencies) initPublisher(ctx context.Context) event.Publisher {
	if len(d.Config.Kafka.Brokers) == 0 {
		return event.NoopPublisher{}
	}
	p := event.NewKafkaPublisher(d.Config.Kafka.Brokers, d.Config.Kafka.OrderTopic, 256, d.Log)
	p.Start(ctx)
	d.kafka = p
	return p
}

func (d *Dependencies) initServices() (*Services, error) {
	cfg, repos, log := d.Config, d.Repos, d.Log
	debug := cfg.IsDevelopment()

	// 支付未配置时 gateway 为 nil，结账接口返回明确错误
	var gateway mercadopago.Gateway
	if cfg.MercadoPago.AccessToken != "" {
		gateway = mercadopago.NewClient(cfg.MercadoPago.BaseURL, cfg.MercadoPago.AccessToken, debug)
	} else {
		log.Warn("MERCADOPAGO_ACCESS_TOKEN 未配置，结账不可用")
	}

	provider, err := service.NewStorageProvider(cfg.Storage, cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}

	sender := mailer.NewResendSender("", cfg.Mail.ResendAPIKey, cfg.Mail.From, debug)
	notify := service.NewNotifyService(sender, repos.Club, repos.Link, cfg.PublicBaseURL, log.Named("notify"))

	var geoCache service.GeoCache
	if d.Redis != nil {
		geoCache = service.NewRedisGeoCache(redisx.NewStaleCache(d.Redis, cfg.Georef.CacheTTL))
	} else {
		geoCache = service.NewMemoryGeoCache(utils.NewTTLCache(cfg.Georef.CacheTTL))
	}

	return &Services{
		Auth:     service.NewAuthService(repos.Admin),
		Product:  service.NewProductService(repos.Product, repos.Club, repos.Link),
		Category: service.NewCategoryService(repos.Category),
		Club:     service.NewClubService(repos.Club, repos.Product, repos.Link),
		Carousel: service.NewCarouselService(repos.Carousel),
		Upload:   service.NewUploadService(provider),
		Notify:   notify,
		Checkout: service.NewCheckoutService(gateway, repos.Product, repos.Club, repos.Order, cfg.PublicBaseURL, log.Named("checkout")),
		Payment: service.NewPaymentService(gateway, repos.Order, notify, d.Publisher,
			cfg.MercadoPago.WebhookSecret, log.Named("payment")),
		Order: service.NewOrderService(repos.Order, notify, d.Publisher, log.Named("order")),
		Geo:   service.NewGeoService(georef.NewClient(cfg.Georef.BaseURL, debug), geoCache, log.Named("geo")),
	}, nil
}

// initControllers 初始化所有控制器
func initControllers(svc *Services, log *zap.Logger) *router.Controllers {
	return &router.Controllers{
		Auth:     controller.NewAuthController(svc.Auth, log),
		Product:  controller.NewProductController(svc.Product, log),
		Category: controller.NewCategoryController(svc.Category, log),
		Club:     controller.NewClubController(svc.Club, log),
		Carousel: controller.NewCarouselController(svc.Carousel, log),
		Upload:   controller.NewUploadController(svc.Upload, log),
		Checkout: controller.NewCheckoutController(svc.Checkout, svc.Payment, log),
		Order:    controller.NewOrderController(svc.Order, svc.Payment, log),
		Geo:      controller.NewGeoController(svc.Geo, log),
	}
}

// UploadDir 本地存储时需要静态托管的目录
func (d *Dependencies) UploadDir() string {
	if d.Config.Storage.Provider == "" || d.Config.Storage.Provider == "local" {
		return d.Config.Storage.LocalDir
	}
	return ""
}
