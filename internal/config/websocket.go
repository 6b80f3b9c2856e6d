package config

import (
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	ReadLimit    int64
	IdleTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewWebSocket accepts any origin unless WS_ALLOWED_ORIGINS holds a comma
// separated allow list.
func NewWebSocket() (*WebSocket, error) {
	var origins []string
	if s, ok := os.LookupEnv("WS_ALLOWED_ORIGINS"); ok && s != "" {
		origins = strings.Split(s, ",")
	}

	idle, err := lookupDuration("WS_IDLE_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			return slices.Contains(origins, r.Header.Get("Origin"))
		},
	}

	ws := &WebSocket{
		Upgrader:     upgrader,
		ReadLimit:    4096,
		IdleTimeout:  idle,
		WriteTimeout: 10 * time.Second,
	}

	return ws, nil
}
