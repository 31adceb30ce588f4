// End-to-end exercise of the chat service: real router, real handler,
// real stores over sqlmock, real stream consumer, with only the AI
// gateway faked by an httptest upstream.
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumiere-concierge/internal/client"
	"lumiere-concierge/internal/common/config"
	"lumiere-concierge/internal/common/logger"
	"lumiere-concierge/internal/common/observability"
	"lumiere-concierge/internal/gateway"
	chathandler "lumiere-concierge/internal/handler/chat"
	"lumiere-concierge/internal/menu"
	"lumiere-concierge/internal/ratelimit"
	"lumiere-concierge/internal/reservation"
	"lumiere-concierge/internal/server"
)

const assistantReply = "Parfait! Your table awaits.\n" +
	`[RESERVATION_DATA]{"name":"Ada Lovelace","phone":"5559876543","date":"2025-12-20","time":"20:00","party_size":2}[/RESERVATION_DATA]`

// fakeGateway streams an OpenAI-style SSE response token by token.
func fakeGateway(t *testing.T, tokens []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer e2e-key", r.Header.Get("Authorization"))

		var req struct {
			Messages []gateway.Message `json:"messages"`
			Stream   bool              `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, req.Stream)
		require.NotEmpty(t, req.Messages)
		require.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range tokens {
			payload, _ := json.Marshal(map[string]interface{}{
				"choices": []map[string]interface{}{
					{"delta": map[string]string{"content": tok}},
				},
			})
			w.Write([]byte("data: " + string(payload) + "\n\n"))
		}
		w.Write([]byte("data: [DONE]\n\n"))
	}))
}

func expectMenuQueries(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM menu_categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("cat-1", "Mains"))
	mock.ExpectQuery("FROM menu_items").
		WillReturnRows(sqlmock.NewRows([]string{
			"name", "description", "price", "tags", "allergens", "is_available", "category_id",
		}).AddRow("Coq au Vin", "Braised chicken", 34.0, []byte("{}"), []byte("{}"), true, "cat-1"))
}

func TestChatFlow_EndToEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	upstream := fakeGateway(t, []string{"Parfait! Your table awaits.\n",
		`[RESERVATION_DATA]{"name":"Ada Lovelace","phone":"5559876543","date":"2025-12-20","time":"20:00","party_size":2}[/RESERVATION_DATA]`})
	defer upstream.Close()

	// Chat turn builds the prompt from the menu; booking follow-up
	// inserts the reservation.
	expectMenuQueries(mock)
	mock.ExpectQuery("INSERT INTO reservations").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	gwCfg := &config.AIGatewayConfig{BaseURL: upstream.URL, APIKey: "e2e-key", Model: "google/gemini-2.5-flash"}
	log := logger.NewTestLogger(t)

	handler := chathandler.NewHandler(
		ratelimit.NewMemoryLimiter(20, time.Minute),
		menu.NewContextBuilder(menu.NewStore(db), log),
		gateway.NewClient(gwCfg, log),
		reservation.NewStore(db),
		nil,
		log,
		"*",
	)

	svc := httptest.NewServer(server.SetupRoutes(handler, observability.New("e2e")).Router)
	defer svc.Close()

	var streamed string
	c := client.New(svc.URL, log)
	result, err := c.Chat(context.Background(),
		[]gateway.Message{{Role: "user", Content: "Table for two Saturday at 8pm, name Ada Lovelace, 5559876543"}},
		func(tok string) { streamed += tok })
	require.NoError(t, err)

	assert.Equal(t, assistantReply, streamed)
	assert.True(t, result.Booked)
	require.NotNil(t, result.Reservation)
	assert.Equal(t, "pending", result.Reservation.Status)
	assert.Contains(t, result.Text, "Reservation Confirmed!")
	assert.NotContains(t, result.Text, "[RESERVATION_DATA]")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatFlow_RateLimitAcrossRequests(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	upstream := fakeGateway(t, []string{"Bonjour!"})
	defer upstream.Close()

	for i := 0; i < 2; i++ {
		expectMenuQueries(mock)
	}

	gwCfg := &config.AIGatewayConfig{BaseURL: upstream.URL, APIKey: "e2e-key", Model: "google/gemini-2.5-flash"}
	log := logger.NewTestLogger(t)

	handler := chathandler.NewHandler(
		ratelimit.NewMemoryLimiter(2, time.Minute),
		menu.NewContextBuilder(menu.NewStore(db), log),
		gateway.NewClient(gwCfg, log),
		reservation.NewStore(db),
		nil,
		log,
		"*",
	)

	svc := httptest.NewServer(server.SetupRoutes(handler, observability.New("e2e")).Router)
	defer svc.Close()

	c := client.New(svc.URL, log)
	messages := []gateway.Message{{Role: "user", Content: "hello"}}

	for i := 0; i < 2; i++ {
		_, err := c.Chat(context.Background(), messages, nil)
		require.NoError(t, err)
	}

	_, err = c.Chat(context.Background(), messages, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many requests")
}

func TestHealthAndMetrics(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	svc := httptest.NewServer(server.SetupRoutes(handler, observability.New("e2e")).Router)
	defer svc.Close()

	resp, err := http.Get(svc.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(svc.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
