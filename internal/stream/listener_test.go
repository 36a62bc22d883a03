package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"solsniper/internal/intake"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	testMintA = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	testMintB = "So11111111111111111111111111111111111111112"
)

func TestExtractAddresses(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "address embedded in signal text",
			text: "NEW GEM!! CA: " + testMintA + " ape now",
			want: []string{testMintA},
		},
		{
			name: "bare address",
			text: testMintA,
			want: []string{testMintA},
		},
		{
			name: "multiple addresses deduplicated",
			text: testMintA + " " + testMintB + " " + testMintA,
			want: []string{testMintA, testMintB},
		},
		{
			name: "no address",
			text: "gm everyone, pump soon",
			want: nil,
		},
		{
			name: "base58-looking but wrong length payload",
			text: "2NEpo7TZRRrLZSi2U", // decodes to fewer than 32 bytes
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAddresses(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("address %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestListener_EnqueuesSignalAddresses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"text":"CA `+testMintA+` launch"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(testMintB))

		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	queue := intake.NewQueue(intake.Options{})
	listener := NewListener(wsURL, queue, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		listener.Run(ctx)
	}()

	readCtx, readCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer readCancel()

	first, err := queue.Next(readCtx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first != testMintA {
		t.Errorf("first address: got %s, want %s", first, testMintA)
	}

	second, err := queue.Next(readCtx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if second != testMintB {
		t.Errorf("second address: got %s, want %s", second, testMintB)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop on cancellation")
	}
}

func TestListener_ReconnectsAfterDrop(t *testing.T) {
	var connCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCount++
		if connCount == 1 {
			// Drop the first connection immediately.
			conn.Close()
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(testMintA))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	queue := intake.NewQueue(intake.Options{})
	cfg := DefaultListenerConfig()
	cfg.ReconnectDelay = 10 * time.Millisecond
	listener := NewListener(wsURL, queue, &cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	readCtx, readCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readCancel()

	got, err := queue.Next(readCtx)
	if err != nil {
		t.Fatalf("Next after reconnect: %v", err)
	}
	if got != testMintA {
		t.Errorf("got %s, want %s", got, testMintA)
	}
}
