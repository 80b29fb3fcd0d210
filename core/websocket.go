package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSMessage 客户端发来的消息
type WSMessage struct {
	Action     string    `json:"action"` // subscribe, unsubscribe, ping, evaluate, get_stats
	Filter     WSFilter  `json:"filter"`
	Expression string    `json:"expression,omitempty"`
	Count      int       `json:"count,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// WSFilter 订阅过滤条件，空字段表示不过滤
type WSFilter struct {
	EventTypes []string `json:"event_types,omitempty"`
	Names      []string `json:"names,omitempty"` // 目录条目名称
}

// WSReply 服务端对请求的应答
type WSReply struct {
	Action      string      `json:"action"`
	Expression  string      `json:"expression,omitempty"`
	Occurrences []string    `json:"occurrences,omitempty"`
	Filter      *WSFilter   `json:"filter,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	Error       string      `json:"error,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// WSServer WebSocket服务器
type WSServer struct {
	eventBus   *EventBus
	enumerator *Enumerator
	logger     *slog.Logger

	clients    map[*WSClient]bool
	register   chan *WSClient
	unregister chan *WSClient
	mu         sync.RWMutex

	nextID   atomic.Uint64
	stopCh   chan struct{}
	stopOnce sync.Once
}

// WSClient WebSocket客户端连接
type WSClient struct {
	ID     string
	Conn   *websocket.Conn
	Server *WSServer
	Send   chan []byte

	mu      sync.RWMutex
	filter  WSFilter
	subID   string
	eventCh <-chan Event

	stopCh    chan struct{}
	closeOnce sync.Once
}

func NewWSServer(eventBus *EventBus, enumerator *Enumerator, logger *slog.Logger) *WSServer {
	if eventBus == nil {
		eventBus = NewEventBus(100)
	}
	if enumerator == nil {
		enumerator = NewEnumerator(EnumeratorOptions{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WSServer{
		eventBus:   eventBus,
		enumerator: enumerator,
		logger:     logger.With("component", "websocket"),
		clients:    make(map[*WSClient]bool),
		register:   make(chan *WSClient, 100),
		unregister: make(chan *WSClient, 100),
		stopCh:     make(chan struct{}),
	}
}

// Start 启动 WebSocket 管理循环
func (ws *WSServer) Start() {
	go ws.run()
}

func (ws *WSServer) run() {
	for {
		select {
		case <-ws.stopCh:
			return

		case client := <-ws.register:
			// 订阅所有事件，由客户端过滤
			client.subID, client.eventCh = ws.eventBus.SubscribeAll()

			ws.mu.Lock()
			ws.clients[client] = true
			total := len(ws.clients)
			ws.mu.Unlock()
			ws.logger.Info("websocket client connected", "client", client.ID, "total", total)

			go client.writePump()
			go client.readPump()

		case client := <-ws.unregister:
			ws.mu.Lock()
			_, ok := ws.clients[client]
			delete(ws.clients, client)
			total := len(ws.clients)
			ws.mu.Unlock()

			if ok {
				ws.eventBus.Unsubscribe(client.subID)
				client.close()
				ws.logger.Info("websocket client disconnected", "client", client.ID, "total", total)
			}
		}
	}
}

// Handle 处理 HTTP 升级请求
func (ws *WSServer) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		ID:     "ws-" + strconv.FormatUint(ws.nextID.Add(1), 10),
		Conn:   conn,
		Server: ws,
		Send:   make(chan []byte, 256),
		stopCh: make(chan struct{}),
	}

	select {
	case ws.register <- client:
	case <-ws.stopCh:
		conn.Close()
	}
}

// Clients 当前连接数
func (ws *WSServer) Clients() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.clients)
}

// Stop 关闭所有连接
func (ws *WSServer) Stop() {
	ws.stopOnce.Do(func() {
		close(ws.stopCh)
	})

	ws.mu.Lock()
	defer ws.mu.Unlock()

	for client := range ws.clients {
		ws.eventBus.Unsubscribe(client.subID)
		client.close()
		client.Conn.Close()
	}
	ws.clients = make(map[*WSClient]bool)
}

func (ws *WSServer) getStats() map[string]interface{} {
	return map[string]interface{}{
		"clients":        ws.Clients(),
		"subscribers":    ws.eventBus.Subscribers(),
		"dropped_events": ws.eventBus.Dropped(),
		"timestamp":      time.Now(),
	}
}

func (c *WSClient) close() {
	c.closeOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *WSClient) setFilter(f WSFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// matchFilter 检查事件是否匹配客户端过滤条件
func (c *WSClient) matchFilter(event Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.filter.EventTypes) > 0 && !slices.Contains(c.filter.EventTypes, string(event.Type)) {
		return false
	}
	if len(c.filter.Names) > 0 && !slices.Contains(c.filter.Names, event.Name) {
		return false
	}
	return true
}

// reply 放入发送缓冲，缓冲已满时丢弃
func (c *WSClient) reply(r WSReply) {
	r.Timestamp = time.Now()
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	case <-c.stopCh:
	default:
	}
}

// readPump 读取客户端消息（订阅/取消订阅/心跳/求值）
func (c *WSClient) readPump() {
	defer func() {
		select {
		case c.Server.unregister <- c:
		case <-c.Server.stopCh:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Server.logger.Warn("websocket read error", "client", c.ID, "error", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.reply(WSReply{Action: "error", Error: "invalid message"})
			continue
		}

		switch msg.Action {
		case "ping":
			c.reply(WSReply{Action: "pong"})

		case "subscribe":
			c.setFilter(msg.Filter)
			filter := msg.Filter
			c.reply(WSReply{Action: "subscribed", Filter: &filter})

		case "unsubscribe":
			c.setFilter(WSFilter{})
			c.reply(WSReply{Action: "unsubscribed"})

		case "evaluate":
			occurrences, err := c.Server.enumerator.FormatToDate(msg.Expression, msg.Count)
			r := WSReply{Action: "occurrences", Expression: msg.Expression, Occurrences: occurrences}
			if err != nil {
				r.Action = "error"
				r.Error = err.Error()
			}
			c.reply(r)

		case "get_stats":
			c.reply(WSReply{Action: "stats", Data: c.Server.getStats()})

		default:
			c.reply(WSReply{Action: "error", Error: "unknown action " + strconv.Quote(msg.Action)})
		}
	}
}

// writePump 连接的唯一写入者：应答、事件推送和心跳
func (c *WSClient) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.stopCh:
			c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			if !c.matchFilter(event) {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
