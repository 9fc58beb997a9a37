package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/marketdesk/relay/internal/core/domain"
)

func TestClient_GetNonce(t *testing.T) {
	wallet := common.HexToAddress("0x7777777777777777777777777777777777777777")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nonce" {
			t.Errorf("expected path /nonce, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("address"); got != wallet.Hex() {
			t.Errorf("address = %s, want %s", got, wallet.Hex())
		}
		if got := r.URL.Query().Get("type"); got != "SAFE" {
			t.Errorf("type = %s, want SAFE", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"nonce": "42"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	nonce, err := client.GetNonce(context.Background(), wallet)
	if err != nil {
		t.Fatalf("GetNonce failed: %v", err)
	}
	if nonce != "42" {
		t.Errorf("nonce = %q, want \"42\"", nonce)
	}
}

func TestClient_Execute_NonceIsString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		raw, ok := body["nonce"]
		if !ok {
			t.Fatal("body missing nonce")
		}
		// The nonce must be a JSON string, never a numeric literal.
		var asString string
		if err := json.Unmarshal(raw, &asString); err != nil {
			t.Errorf("nonce is not a JSON string: %s", string(raw))
		}
		if asString != "42" {
			t.Errorf("nonce = %q, want \"42\"", asString)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"transactionID": "tx-abc"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	id, err := client.Execute(context.Background(), ExecuteRequest{
		From:      "0x01",
		To:        "0x02",
		Nonce:     "42",
		Signature: "0xdead",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if id != "tx-abc" {
		t.Errorf("transaction id = %s, want tx-abc", id)
	}
}

func TestClient_Execute_FallbackIDField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "tx-id-only"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	id, err := client.Execute(context.Background(), ExecuteRequest{Nonce: "1"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if id != "tx-id-only" {
		t.Errorf("transaction id = %s, want tx-id-only", id)
	}
}

func TestClient_Execute_StaleNonce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid nonce: already used", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Execute(context.Background(), ExecuteRequest{Nonce: "1"})
	if !errors.Is(err, domain.ErrStaleNonce) {
		t.Fatalf("err = %v, want ErrStaleNonce", err)
	}
}

func TestClient_GetTransaction_ObjectAndArray(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object", `{"transactionID":"tx-1","state":"STATE_MINED","transactionHash":"0xbeef"}`},
		{"array", `[{"transactionID":"tx-1","state":"STATE_MINED","transactionHash":"0xbeef"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("id"); got != "tx-1" {
					t.Errorf("id = %s, want tx-1", got)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, 5*time.Second)
			record, err := client.GetTransaction(context.Background(), "tx-1")
			if err != nil {
				t.Fatalf("GetTransaction failed: %v", err)
			}
			if record.State != domain.StateMined {
				t.Errorf("state = %s, want STATE_MINED", record.State)
			}
			if record.Hash != "0xbeef" {
				t.Errorf("hash = %s, want 0xbeef", record.Hash)
			}
		})
	}
}

func TestClient_IsDeployed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deployed" {
			t.Errorf("expected path /deployed, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"deployed": true})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	deployed, err := client.IsDeployed(context.Background(), common.Address{})
	if err != nil {
		t.Fatalf("IsDeployed failed: %v", err)
	}
	if !deployed {
		t.Error("deployed = false, want true")
	}
}

func TestClient_Deploy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/deploy" {
			t.Errorf("expected path /deploy, got %s", r.URL.Path)
		}
		var body DeployRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.EOAAddress == "" || body.Signature == "" || body.ProxyAddress == "" || body.SafeFactoryAddress == "" {
			t.Errorf("deploy body incomplete: %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"transactionID": "tx-deploy"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	id, err := client.Deploy(context.Background(), DeployRequest{
		EOAAddress:         "0x01",
		Signature:          "0x02",
		ProxyAddress:       "0x03",
		SafeFactoryAddress: "0x04",
	})
	if err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}
	if id != "tx-deploy" {
		t.Errorf("transaction id = %s, want tx-deploy", id)
	}
}
