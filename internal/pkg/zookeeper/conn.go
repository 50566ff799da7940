// internal/pkg/zookeeper/conn.go
package zookeeper

import (
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

// Conn 包装了 ZooKeeper 连接，锁等上层组件都建立在它之上
type Conn struct {
	*zk.Conn
}

// Connect 建立到 ZooKeeper 集群的连接，addrs 格式为 "host1:2181,host2:2181"
func Connect(addrs string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(strings.Split(addrs, ","), sessionTimeout)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn}, nil
}
