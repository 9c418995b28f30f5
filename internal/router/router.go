package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"teamwear_shop/internal/controller"
	"teamwear_shop/internal/middleware"

	_ "teamwear_shop/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Auth     *controller.AuthController
	Product  *controller.ProductController
	Category *controller.CategoryController
	Club     *controller.ClubController
	Carousel *controller.CarouselController
	Upload   *controller.UploadController
	Checkout *controller.CheckoutController
	Order    *controller.OrderController
	Geo      *controller.GeoController
}

// Options 路由选项
type Options struct {
	Log *zap.Logger

	// UploadDir 非空时以 /uploads 提供本地存储的文件
	UploadDir string

	// CheckoutLimiter 结账接口按 IP 限流，nil 不限流
	CheckoutLimiter *middleware.IPRateLimiter

	// Cooldown 手动对账的冷却控制
	Cooldown *middleware.CooldownLimiter
}

// ReconcileCooldown 手动对账的全局冷却时间
const ReconcileCooldown = time.Minute

// SetupRouter 创建 gin 引擎并注册所有路由
func SetupRouter(ctrls *Controllers, opts Options) *gin.Engine {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Cooldown == nil {
		opts.Cooldown = &middleware.CooldownLimiter{}
	}

	r := gin.New()
	r.Use(middleware.Recovery(opts.Log), middleware.RequestLogger(opts.Log))

	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	api := r.Group("/api")
	registerAuth(api, ctrls.Auth)
	registerCatalog(api, ctrls)
	registerCheckout(api, ctrls.Checkout, opts.CheckoutLimiter)
	registerOrders(api, ctrls.Order, opts.Cooldown)

	// upload 上传
	upload := api.Group("/upload", middleware.JWTAuth(), middleware.AuditContext())
	{
		upload.POST("", ctrls.Upload.Upload)
		upload.DELETE("", ctrls.Upload.Delete)
	}

	// geo 省份/城镇
	geo := api.Group("/geo")
	{
		geo.GET("/provinces", ctrls.Geo.Provinces)
		geo.GET("/localities", ctrls.Geo.Localities)
	}

	return r
}

func registerAuth(api *gin.RouterGroup, ctl *controller.AuthController) {
	auth := api.Group("/auth")
	{
		// POST /api/auth/login
		auth.POST("/login", ctl.Login)
		auth.POST("/refresh", ctl.Refresh)
		auth.GET("/me", middleware.JWTAuth(), ctl.Me)
	}
}

// registerCatalog 目录接口：GET 按是否登录决定可见范围，写操作必须登录
func registerCatalog(api *gin.RouterGroup, ctrls *Controllers) {
	public := api.Group("", middleware.OptionalAuth())
	admin := api.Group("", middleware.JWTAuth(), middleware.AuditContext())

	// products 商品
	public.GET("/products", ctrls.Product.List)
	public.GET("/products/:id", ctrls.Product.Get)
	public.GET("/products/:id/clubs", ctrls.Product.ListClubs)
	admin.POST("/products", ctrls.Product.Create)
	admin.PATCH("/products/reorder", ctrls.Product.Reorder)
	admin.PATCH("/products/:id", ctrls.Product.Update)
	admin.DELETE("/products/:id", ctrls.Product.Delete)
	admin.PUT("/products/:id/clubs", ctrls.Product.SetClubs)

	// categories 分类
	public.GET("/categories", ctrls.Category.List)
	public.GET("/categories/:id", ctrls.Category.Get)
	admin.POST("/categories", ctrls.Category.Create)
	admin.PATCH("/categories/reorder", ctrls.Category.Move)
	admin.PATCH("/categories/:id", ctrls.Category.Update)
	admin.DELETE("/categories/:id", ctrls.Category.Delete)

	// clubs 俱乐部
	public.GET("/clubs", ctrls.Club.List)
	public.GET("/clubs/slug/:slug", ctrls.Club.GetBySlug)
	public.GET("/clubs/:id", ctrls.Club.Get)
	public.GET("/clubs/:id/products", ctrls.Club.ListProducts)
	admin.POST("/clubs", ctrls.Club.Create)
	admin.PATCH("/clubs/reorder", ctrls.Club.Move)
	admin.PATCH("/clubs/:id", ctrls.Club.Update)
	admin.DELETE("/clubs/:id", ctrls.Club.Delete)
	admin.PUT("/clubs/:id/products", ctrls.Club.SetProducts)
	admin.POST("/clubs/:id/products", ctrls.Club.AddProduct)
	admin.DELETE("/clubs/:id/products/:productId", ctrls.Club.RemoveProduct)

	// carousel 轮播图
	public.GET("/carousel", ctrls.Carousel.List)
	admin.POST("/carousel", ctrls.Carousel.Create)
	admin.PATCH("/carousel/reorder", ctrls.Carousel.Move)
	admin.PATCH("/carousel/:id", ctrls.Carousel.Update)
	admin.DELETE("/carousel/:id", ctrls.Carousel.Delete)
}

func registerCheckout(api *gin.RouterGroup, ctl *controller.CheckoutController, limiter *middleware.IPRateLimiter) {
	if limiter != nil {
		api.POST("/create-preference", middleware.RateLimit(limiter), ctl.CreatePreference)
	} else {
		api.POST("/create-preference", ctl.CreatePreference)
	}

	// 支付平台回调，不鉴权，靠签名校验
	api.POST("/webhooks/mercadopago", ctl.MercadoPagoWebhook)
}

func registerOrders(api *gin.RouterGroup, ctl *controller.OrderController, cooldown *middleware.CooldownLimiter) {
	// 顾客查询
	api.GET("/orders/track/:orderNumber", ctl.Track)

	orders := api.Group("/orders", middleware.JWTAuth(), middleware.AuditContext())
	{
		orders.GET("", ctl.List)
		orders.POST("/reconcile", middleware.Cooldown(cooldown, "reconcile", ReconcileCooldown), ctl.Reconcile)
		orders.GET("/:id", ctl.Get)
		orders.PATCH("/:id/status", ctl.UpdateStatus)
	}
}
