package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/comufarm/backend/internal/domain/marketplace"
	"github.com/comufarm/backend/internal/interfaces/http/dto"
	"github.com/comufarm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	id   string
	data string
}

// readSSE parses events from r until it closes
func readSSE(r *bufio.Reader, out chan<- sseEvent) {
	defer close(out)
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			out <- ev
			ev = sseEvent{}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func nextEvent(t *testing.T, events <-chan sseEvent) sseEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "stream closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an event")
	}
	return sseEvent{}
}

func TestChangeFeedHandler_Stream(t *testing.T) {
	app := newTestApp(t)
	p := app.registerJune(t, 100)

	srv := httptest.NewServer(app.engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/changes/stream?tables=orders,products", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.PartyIDHeader, company.id)
	req.Header.Set(middleware.PartyRoleHeader, company.role)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan sseEvent, 16)
	go readSSE(bufio.NewReader(resp.Body), events)
	assert.Equal(t, "connected", nextEvent(t, events).name)
	assert.Equal(t, 1, app.changes.ClientCount())

	// Another company's order only shows up as a product update
	w, _ := app.do(t, caller{id: "company_other", role: "company"}, http.MethodPost, "/api/v1/orders", PlaceOrderRequest{
		ProductID: p.ID, Quantity: 10, OrderDate: "2024-06-15",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	ev := nextEvent(t, events)
	assert.Equal(t, "products.update", ev.name)

	w, _ = app.do(t, company, http.MethodPost, "/api/v1/orders", PlaceOrderRequest{
		ProductID: p.ID, Quantity: 40, OrderDate: "2024-06-15",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	ev = nextEvent(t, events)
	require.Equal(t, "orders.insert", ev.name)
	assert.NotEmpty(t, ev.id)
	var msg ChangeMessage
	require.NoError(t, json.Unmarshal([]byte(ev.data), &msg))
	assert.Equal(t, "orders", msg.Table)
	assert.Equal(t, "insert", msg.Kind)
	assert.Equal(t, ev.id, msg.ID)
	assert.Equal(t, "company_test", msg.Record["company_id"])
	assert.EqualValues(t, 40, msg.Record["quantity"])

	ev = nextEvent(t, events)
	require.Equal(t, "products.update", ev.name)
	require.NoError(t, json.Unmarshal([]byte(ev.data), &msg))
	assert.EqualValues(t, 50, msg.Record["supply_amount"])

	cancel()
	assert.Eventually(t, func() bool {
		return app.changes.ClientCount() == 0 && app.bus.HandlerCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestChangeFeedHandler_StreamRejections(t *testing.T) {
	app := newTestApp(t)
	order := app.placeJuneOrder(t).Order

	tests := []struct {
		name   string
		who    caller
		query  string
		status int
		code   string
	}{
		{"no tables", company, "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown table", company, "tables=users", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"feedbacks need an order", company, "tables=feedbacks", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"feedbacks of someone else's order", caller{id: "company_other", role: "company"}, "tables=feedbacks&order_id=" + order.ID, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := app.do(t, tt.who, http.MethodGet, "/api/v1/changes/stream?"+tt.query, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
	assert.Equal(t, 0, app.changes.ClientCount())
}

func TestChangeFeedHandler_MaxClients(t *testing.T) {
	app := newTestApp(t)
	h := NewChangeFeedHandler(app.feed, nil, WithStreamMaxClients(1), WithStreamHeartbeat(time.Hour))
	h.clients.Store(1)

	engine := gin.New()
	engine.GET("/changes", middleware.PartyAuth(middleware.PartyAuthConfig{}), h.Stream)
	req := httptest.NewRequest(http.MethodGet, "/changes?tables=products", nil)
	req.Header.Set(middleware.PartyIDHeader, company.id)
	req.Header.Set(middleware.PartyRoleHeader, company.role)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "MAX_CONNECTIONS_REACHED", resp.Error.Code)
	assert.True(t, resp.Error.Retryable)
	assert.Equal(t, 1, h.ClientCount())
}

func TestChangeFeedHandler_WebSocket(t *testing.T) {
	app := newTestApp(t)
	order := app.placeJuneOrder(t).Order

	srv := httptest.NewServer(app.engine)
	defer srv.Close()

	header := http.Header{}
	header.Set(middleware.PartyIDHeader, farmer.id)
	header.Set(middleware.PartyRoleHeader, farmer.role)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/changes/ws?tables=feedbacks,supplies&order_id=" + order.ID

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return app.changes.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	w, _ := app.do(t, company, http.MethodPost, "/api/v1/orders/"+order.ID+"/feedbacks", AppendFeedbackRequest{Message: "내일 뵙겠습니다"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ChangeMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "feedbacks", msg.Table)
	assert.Equal(t, "insert", msg.Kind)
	assert.Equal(t, order.ID, msg.Record["order_id"])
	assert.Equal(t, "내일 뵙겠습니다", msg.Record["message"])

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool {
		return app.changes.ClientCount() == 0 && app.bus.HandlerCount() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestParseTables(t *testing.T) {
	tables, err := parseTables("orders, products,orders")
	require.NoError(t, err)
	assert.Equal(t, []marketplace.Table{marketplace.TableOrders, marketplace.TableProducts}, tables)

	_, err = parseTables(" ")
	assert.Error(t, err)
	_, err = parseTables("orders,users")
	assert.Error(t, err)
}

func TestVisibleTo(t *testing.T) {
	acme := marketplace.Party{ID: "acme", Role: marketplace.SenderCompany}
	kim := marketplace.Party{ID: "kim", Role: marketplace.SenderFarmer}
	change := func(table marketplace.Table, record map[string]any) *marketplace.ChangeEvent {
		return &marketplace.ChangeEvent{Table: table, Record: record}
	}

	tests := []struct {
		name    string
		party   marketplace.Party
		order   string
		event   *marketplace.ChangeEvent
		visible bool
	}{
		{"products are public", kim, "", change(marketplace.TableProducts, nil), true},
		{"own order", acme, "", change(marketplace.TableOrders, map[string]any{"company_id": "acme"}), true},
		{"other company's order", acme, "", change(marketplace.TableOrders, map[string]any{"company_id": "globex"}), false},
		{"order on own product", kim, "", change(marketplace.TableOrders, map[string]any{"company_id": "acme", "farmer_id": "kim"}), true},
		{"order on another farmer's product", kim, "", change(marketplace.TableOrders, map[string]any{"company_id": "acme", "farmer_id": "lee"}), false},
		{"farmer id does not match company", kim, "", change(marketplace.TableOrders, map[string]any{"company_id": "kim"}), false},
		{"own supply", kim, "", change(marketplace.TableSupplies, map[string]any{"farmer_id": "kim"}), true},
		{"other farmer's supply", kim, "", change(marketplace.TableSupplies, map[string]any{"farmer_id": "lee"}), false},
		{"followed thread", acme, "o-1", change(marketplace.TableFeedbacks, map[string]any{"order_id": "o-1"}), true},
		{"other thread", acme, "o-1", change(marketplace.TableFeedbacks, map[string]any{"order_id": "o-2"}), false},
		{"no thread followed", acme, "", change(marketplace.TableFeedbacks, map[string]any{"order_id": ""}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, visibleTo(tt.party, tt.order, tt.event))
		})
	}
}
