package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/domain/shared"
	"github.com/comufarm/backend/internal/infrastructure/logger"
	"github.com/comufarm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamBufferSize = 64
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
)

// OrderAccessChecker decides whether a party may follow an order's thread
type OrderAccessChecker interface {
	CheckAccess(ctx context.Context, orderID uuid.UUID, party marketplace.Party) error
}

// ChangeFeedHandler streams table changes to clients over Server-Sent
// Events or a WebSocket. Every connection holds its own subscriptions and
// cancels them when it ends.
type ChangeFeedHandler struct {
	BaseHandler
	feed       marketplace.ChangeSubscriber
	access     OrderAccessChecker
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int64
	clients    atomic.Int64
	upgrader   websocket.Upgrader
}

// ChangeFeedOption configures a ChangeFeedHandler
type ChangeFeedOption func(*ChangeFeedHandler)

// WithStreamLogger sets the logger
func WithStreamLogger(logger *zap.Logger) ChangeFeedOption {
	return func(h *ChangeFeedHandler) {
		h.logger = logger
	}
}

// WithStreamHeartbeat sets the keep-alive interval
func WithStreamHeartbeat(interval time.Duration) ChangeFeedOption {
	return func(h *ChangeFeedHandler) {
		h.heartbeat = interval
	}
}

// WithStreamMaxClients caps concurrent stream connections
func WithStreamMaxClients(max int) ChangeFeedOption {
	return func(h *ChangeFeedHandler) {
		h.maxClients = int64(max)
	}
}

// WithAllowedOrigins restricts WebSocket upgrades to these origins. An empty
// list accepts only same-host requests, "*" accepts any origin.
func WithAllowedOrigins(origins []string) ChangeFeedOption {
	return func(h *ChangeFeedHandler) {
		h.upgrader.CheckOrigin = originChecker(origins)
	}
}

// NewChangeFeedHandler creates a new ChangeFeedHandler
func NewChangeFeedHandler(feed marketplace.ChangeSubscriber, access OrderAccessChecker, opts ...ChangeFeedOption) *ChangeFeedHandler {
	h := &ChangeFeedHandler{
		feed:       feed,
		access:     access,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
		maxClients: 1000,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ClientCount returns the number of open stream connections
func (h *ChangeFeedHandler) ClientCount() int {
	return int(h.clients.Load())
}

// ChangeMessage is one change as delivered to stream clients
// @Description A row change on a subscribed table
type ChangeMessage struct {
	ID         string         `json:"id"`
	Table      string         `json:"table" example:"orders"`
	Kind       string         `json:"kind" example:"insert"`
	OccurredAt time.Time      `json:"occurred_at"`
	Record     map[string]any `json:"record"`
}

// changeStream is one connection's set of table subscriptions
type changeStream struct {
	events  chan ChangeMessage
	cancels []marketplace.CancelFunc
	dropped atomic.Int64
	once    sync.Once
}

func (s *changeStream) close() {
	s.once.Do(func() {
		for _, cancel := range s.cancels {
			cancel()
		}
	})
}

// open validates the requested tables and subscribes to each. Rows are
// delivered only when visible to party: products to everyone, orders to the
// ordering company and the farmer whose product was ordered, supplies to the supplying farmer and feedback to either
// side of the order named by order_id.
func (h *ChangeFeedHandler) open(c *gin.Context, party marketplace.Party) (*changeStream, bool) {
	tables, err := parseTables(c.Query("tables"))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}

	var feedbackOrder string
	for _, table := range tables {
		if table != marketplace.TableFeedbacks {
			continue
		}
		orderID, err := uuid.Parse(c.Query("order_id"))
		if err != nil {
			h.Error(c, shared.CodeValidation, "Following feedbacks requires a valid order_id")
			return nil, false
		}
		if err := h.access.CheckAccess(c.Request.Context(), orderID, party); err != nil {
			h.HandleError(c, err)
			return nil, false
		}
		feedbackOrder = orderID.String()
	}

	if n := h.clients.Add(1); h.maxClients > 0 && n > h.maxClients {
		h.clients.Add(-1)
		h.Error(c, dto.ErrCodeTooManyStreams, "Maximum number of stream connections reached")
		return nil, false
	}

	stream := &changeStream{events: make(chan ChangeMessage, streamBufferSize)}
	for _, table := range tables {
		stream.cancels = append(stream.cancels, h.feed.Subscribe(table, func(_ context.Context, ev *marketplace.ChangeEvent) {
			if !visibleTo(party, feedbackOrder, ev) {
				return
			}
			msg := ChangeMessage{
				ID:         ev.EventID().String(),
				Table:      string(ev.Table),
				Kind:       string(ev.Kind),
				OccurredAt: ev.OccurredAt(),
				Record:     ev.Record,
			}
			select {
			case stream.events <- msg:
			default:
				stream.dropped.Add(1)
			}
		}))
	}
	return stream, true
}

func (h *ChangeFeedHandler) release(c *gin.Context, stream *changeStream) {
	stream.close()
	h.clients.Add(-1)
	if dropped := stream.dropped.Load(); dropped > 0 {
		logger.For(c.Request.Context(), h.logger).Warn("Change stream dropped events for a slow client",
			zap.Int64("dropped", dropped))
	}
}

// Stream godoc
// @ID           streamChanges
// @Summary      Follow table changes via SSE
// @Description  Server-Sent Events for inserts and updates on the requested tables
// @Tags         changes
// @Produce      text/event-stream
// @Param        tables   query string true  "Comma separated: products,orders,supplies,feedbacks"
// @Param        order_id query string false "Order whose feedbacks to follow"
// @Success      200 {string} string "SSE stream"
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /changes/stream [get]
func (h *ChangeFeedHandler) Stream(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}
	stream, ok := h.open(c, party)
	if !ok {
		return
	}
	defer h.release(c, stream)

	// The server write timeout would cut the stream
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	writeSSE(c.Writer, "connected", "", fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeSSE(c.Writer, "heartbeat", "", fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()))
			c.Writer.Flush()
		case msg := <-stream.events:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("Failed to encode change", zap.Error(err))
				continue
			}
			writeSSE(c.Writer, msg.Table+"."+msg.Kind, msg.ID, string(data))
			c.Writer.Flush()
		}
	}
}

// WebSocket godoc
// @ID           websocketChanges
// @Summary      Follow table changes via WebSocket
// @Description  Each text frame is one JSON encoded change
// @Tags         changes
// @Param        tables   query string true  "Comma separated: products,orders,supplies,feedbacks"
// @Param        order_id query string false "Order whose feedbacks to follow"
// @Success      101 {string} string "Switching protocols"
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /changes/ws [get]
func (h *ChangeFeedHandler) WebSocket(c *gin.Context) {
	party, ok := h.party(c)
	if !ok {
		return
	}
	stream, ok := h.open(c, party)
	if !ok {
		return
	}
	defer h.release(c, stream)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already answered the request
		logger.For(c.Request.Context(), h.logger).Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The read loop only watches for the client going away
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("WebSocket closed unexpectedly", zap.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg := <-stream.events:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func parseTables(raw string) ([]marketplace.Table, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "At least one table is required")
	}
	seen := make(map[marketplace.Table]bool)
	var tables []marketplace.Table
	for _, name := range strings.Split(raw, ",") {
		table, err := marketplace.ParseTable(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if !seen[table] {
			seen[table] = true
			tables = append(tables, table)
		}
	}
	return tables, nil
}

func visibleTo(party marketplace.Party, feedbackOrder string, ev *marketplace.ChangeEvent) bool {
	switch ev.Table {
	case marketplace.TableProducts:
		return true
	case marketplace.TableOrders:
		if party.IsFarmer() {
			return ev.Record["farmer_id"] == party.ID
		}
		return party.IsCompany() && ev.Record["company_id"] == party.ID
	case marketplace.TableSupplies:
		return party.IsFarmer() && ev.Record["farmer_id"] == party.ID
	case marketplace.TableFeedbacks:
		return feedbackOrder != "" && ev.Record["order_id"] == feedbackOrder
	}
	return false
}

func writeSSE(w io.Writer, event, id, data string) {
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	if id != "" {
		fmt.Fprintf(w, "id: %s\n", id)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range origins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://"), r.Host)
	}
}
