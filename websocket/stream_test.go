package websocket

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/config"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

func streamURL(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	token, err := utils.GenerateJWT(
		primitive.NewObjectID().Hex(), "Maria Souza", "admin", primitive.NewObjectID().Hex())
	require.NoError(t, err)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
}

func TestHandleStreamRejectsMissingToken(t *testing.T) {
	config.JWTKey = []byte("test-secret")
	config.JWTExpiration = time.Hour

	srv := httptest.NewServer(http.HandlerFunc(HandleStream))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStreamPumpsShutDownOnClose(t *testing.T) {
	config.JWTKey = []byte("test-secret")
	config.JWTExpiration = time.Hour
	Start()

	srv := httptest.NewServer(http.HandlerFunc(HandleStream))
	defer srv.Close()

	url := streamURL(t, srv)

	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		conn, _, err := gws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)

		// welcome frame confirms the client is registered
		_, _, err = conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}

	// every per-connection goroutine (read, write, ping) must wind down
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("goroutines leaked after closing connections: baseline %d, now %d",
		baseline, runtime.NumGoroutine())
}
