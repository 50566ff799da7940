// internal/service/push/hub.go
package push

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Hub 维护所有活跃的连接，并按订单号分发消息。
// 同一订单允许多个观察者（买家页面、客服后台）同时在线。
type Hub struct {
	clients    map[string]map[*Client]struct{} // 使用订单号作为Key
	register   chan *Client
	unregister chan *Client
	broadcast  chan pushMessage
}

type pushMessage struct {
	orderID string
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan pushMessage, 64),
	}
}

// Run 是 Hub 的事件循环，所有对 clients 的读写都在这里串行完成
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.orderID] == nil {
				h.clients[client.orderID] = make(map[*Client]struct{})
			}
			h.clients[client.orderID][client] = struct{}{}
			log.Debug().Str("order_id", client.orderID).Msg("client registered")
		case client := <-h.unregister:
			if watchers, ok := h.clients[client.orderID]; ok {
				if _, ok := watchers[client]; ok {
					delete(watchers, client)
					close(client.send)
					if len(watchers) == 0 {
						delete(h.clients, client.orderID)
					}
				}
			}
			log.Debug().Str("order_id", client.orderID).Msg("client unregistered")
		case msg := <-h.broadcast:
			for client := range h.clients[msg.orderID] {
				select {
				case client.send <- msg.payload:
				default:
					// 写缓冲满说明连接已经不健康，直接踢掉
					delete(h.clients[msg.orderID], client)
					close(client.send)
				}
			}
		}
	}
}

// Push 把消息投递给订阅了该订单的所有连接
func (h *Hub) Push(orderID string, payload []byte) {
	h.broadcast <- pushMessage{orderID: orderID, payload: payload}
}

// Client 是一个WebSocket连接的代表
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	orderID string
}

// NewClient 创建客户端并注册到 Hub，随后启动读写 goroutine
func NewClient(hub *Hub, conn *websocket.Conn, orderID string) *Client {
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), orderID: orderID}
	hub.register <- client
	go client.writePump()
	go client.readPump()
	return client
}

// readPump 只处理心跳，客户端发来的其它消息一律丢弃
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump 负责将send channel中的消息写入websocket，并周期性发送心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
