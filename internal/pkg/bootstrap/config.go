// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"storefront/internal/pkg/nacos"
)

// Config 是整个进程的配置对象。
// 由 Init 在启动时装配，随后在组装根显式传入各组件的构造函数，
// 业务代码不做环境查找。
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Port int    `yaml:"port"`
	} `yaml:"app"`

	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Kafka struct {
			Brokers     string `yaml:"brokers"`
			StatusTopic string `yaml:"statusTopic"`
		} `yaml:"kafka"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Zookeeper struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"zookeeper"`
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
	} `yaml:"infra"`

	// Shipping 是物流报价 API（RajaOngkir starter）的接入配置
	Shipping struct {
		BaseURL string `yaml:"baseUrl"`
		APIKey  string `yaml:"apiKey"`
	} `yaml:"shipping"`

	// Payment 是支付网关（Midtrans）的接入配置
	Payment struct {
		ServerKey  string `yaml:"serverKey"`
		ClientKey  string `yaml:"clientKey"`
		Production bool   `yaml:"production"`
		// 留空时按 Production 选择官方地址，测试环境可以覆盖
		SnapBaseURL string `yaml:"snapBaseUrl"`
		APIBaseURL  string `yaml:"apiBaseUrl"`
	} `yaml:"payment"`
}

var (
	currentConfig     Config
	nacosConfigClient *nacos.ConfigClient
)

// GetCurrentConfig 返回启动时装配好的配置
func GetCurrentConfig() Config {
	return currentConfig
}

// Init 装配配置：默认值 → Nacos 配置中心 → 本地文件 → 环境变量，后者覆盖前者。
// 配置中心不可用时退化为本地文件 + 环境变量，方便本地开发。
func Init() {
	cfg := defaultConfig()

	nacosServerAddrs := getEnv("NACOS_SERVER_ADDRS", "localhost:8848")
	nacosNamespace := getEnv("NACOS_NAMESPACE", "")
	nacosGroup := getEnv("NACOS_GROUP", "DEFAULT_GROUP")
	dataId := getEnv("NACOS_CONFIG_DATA_ID", "storefront.yaml")

	if client, err := nacos.NewConfigClient(nacosServerAddrs, nacosNamespace, nacosGroup); err != nil {
		log.Printf("WARNING: nacos config center unavailable, falling back to local config: %v", err)
	} else {
		nacosConfigClient = client
		if content, err := client.GetConfig(dataId); err != nil {
			log.Printf("WARNING: could not fetch '%s' from nacos: %v", dataId, err)
		} else if content != "" {
			if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
				log.Fatalf("FATAL: invalid config '%s' in nacos: %v", dataId, err)
			}
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("FATAL: cannot read config file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("FATAL: invalid config file %s: %v", path, err)
		}
	}

	// 密钥类配置允许用环境变量覆盖，避免写进配置中心
	if v := os.Getenv("SHIPPING_API_KEY"); v != "" {
		cfg.Shipping.APIKey = v
	}
	if v := os.Getenv("MIDTRANS_SERVER_KEY"); v != "" {
		cfg.Payment.ServerKey = v
	}
	if v := os.Getenv("MIDTRANS_CLIENT_KEY"); v != "" {
		cfg.Payment.ClientKey = v
	}
	if v := os.Getenv("MIDTRANS_PRODUCTION"); v != "" {
		cfg.Payment.Production = v == "true"
	}

	currentConfig = cfg
}

func defaultConfig() Config {
	var cfg Config
	cfg.App.Name = "order-service"
	cfg.App.Port = 8081
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Kafka.Brokers = "localhost:9092"
	cfg.Infra.Kafka.StatusTopic = "order-status-events"
	cfg.Infra.Redis.Addrs = "localhost:6379"
	cfg.Infra.Zookeeper.Addrs = "localhost:2181"
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/storefront?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Shipping.BaseURL = "https://api.rajaongkir.com/starter"
	return cfg
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
