// cmd/push-gateway/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/push"
)

const (
	serviceName   = "push-gateway"
	consumerGroup = "push-gateway-consumer-group"
)

var (
	nodeID   = "push-gateway-" + uuid.New().String()[:8]
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
			return true
		},
	}
)

// serveWs 把 HTTP 请求升级为 WebSocket，并按订单号订阅状态推送
func serveWs(hub *push.Hub, w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	push.NewClient(hub, conn, orderID)
}

func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	port := 8088
	if v, ok := os.LookupEnv("PUSH_GATEWAY_PORT"); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid PUSH_GATEWAY_PORT %q: %v", v, err)
		}
		port = p
	}

	tracer := otel.Tracer(serviceName)

	hub := push.NewHub()
	go hub.Run()

	// 每个网关节点用自己独立的消费组，整个主题的事件在所有节点上
	// 都能收到一份。连接可能被负载均衡分到任意节点，事件必须广播，
	// 节点内部再按订单号过滤。
	statusReader := mq.NewKafkaReader(
		strings.Split(cfg.Infra.Kafka.Brokers, ","),
		cfg.Infra.Kafka.StatusTopic,
		consumerGroup+"-"+nodeID,
	)
	defer statusReader.Close()

	consumer := push.NewStatusConsumer(statusReader, hub, tracer)
	consumerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.Run(consumerCtx)

	log.Printf("Push Gateway (%s) consuming topic '%s'", nodeID, cfg.Infra.Kafka.StatusTopic)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				serveWs(hub, w, r)
			})
		},
	})
}
