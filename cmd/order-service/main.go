// cmd/order-service/main.go
package main

import (
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/pkg/redis"
	"storefront/internal/pkg/zookeeper"
	"storefront/internal/service/order/application"
	"storefront/internal/service/order/infrastructure"
	"storefront/internal/service/order/infrastructure/adapter"
	"storefront/internal/service/order/interfaces"
)

const serviceName = "order-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	tracer := otel.Tracer(serviceName)

	// 1. 初始化核心技术组件
	db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		log.Fatalf("failed to initialize mysql: %v", err)
	}

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		log.Fatalf("failed to initialize redis client: %v", err)
	}
	defer redisClient.Close()

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Addrs, 5*time.Second)
	if err != nil {
		log.Fatalf("failed to connect to zookeeper: %v", err)
	}
	defer zkConn.Close()

	kafkaWriter := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), cfg.Infra.Kafka.StatusTopic)
	defer kafkaWriter.Close()

	httpClient := httpclient.NewClient(tracer)

	// 2. 组装适配器和仓储
	snapBaseURL, apiBaseURL := adapter.SnapBaseURLs(cfg.Payment.Production)
	if cfg.Payment.SnapBaseURL != "" {
		snapBaseURL = cfg.Payment.SnapBaseURL
	}
	if cfg.Payment.APIBaseURL != "" {
		apiBaseURL = cfg.Payment.APIBaseURL
	}

	shippingGateway := adapter.NewRajaOngkirAdapter(httpClient, cfg.Shipping.BaseURL, cfg.Shipping.APIKey)
	paymentGateway := adapter.NewSnapAdapter(httpClient, cfg.Payment.ServerKey, snapBaseURL, apiBaseURL)
	orderLocker := adapter.NewZkOrderLocker(zkConn)
	statusPublisher := adapter.NewStatusKafkaAdapter(kafkaWriter)

	orderRepo := infrastructure.NewGormOrderRepository(db)
	productRepo := infrastructure.NewCachedProductRepository(
		infrastructure.NewGormProductRepository(db), redisClient)

	// 3. 组装业务服务与 HTTP 接口
	orderService := application.NewOrderService(
		orderRepo, productRepo,
		shippingGateway, paymentGateway,
		orderLocker, statusPublisher,
		tracer,
	)
	orderHandler := interfaces.NewOrderHandler(orderService)

	// 4. 启动通用服务框架（注册中心、追踪、优雅关停）
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			orderHandler.RegisterRoutes(appCtx.Mux)
		},
	})
}
