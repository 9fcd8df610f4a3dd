package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SamFelix03/megha-network-arbitrum/internal/chaindata"
)

func newTestDispatcher(t *testing.T, handler http.HandlerFunc) *Dispatcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := chaindata.NewClient(chaindata.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	return NewDispatcher(client)
}

func decodePayload(t *testing.T, payload string) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("tool payload is not valid JSON: %v\npayload: %s", err, payload)
	}
	return decoded
}

func TestExecuteNativeBalanceProjectsFirstItem(t *testing.T) {
	var gotPath string
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"address":"0xabc","chain_id":11155111,"items":[{"balance":"1000000000000000000","balance_formatted":"1.0","quote_currency":"USD","quote":2500,"quote_rate":2500,"contract_name":"Ether","contract_ticker_symbol":"ETH"}]}}`))
	})

	payload := d.Execute(context.Background(), NameNativeBalance, map[string]any{
		"walletAddress": "0x8ba1f109551bd432803012645ac136ddd64dba72",
	})
	decoded := decodePayload(t, payload)

	if !strings.Contains(gotPath, "/v1/eth-sepolia/address/") {
		t.Fatalf("default chain must be applied to the request path, got %s", gotPath)
	}
	if decoded["balance"] != "1000000000000000000" {
		t.Fatalf("balance not projected: %+v", decoded)
	}
	if decoded["balance_formatted"] != "1.0" {
		t.Fatalf("formatted balance not projected: %+v", decoded)
	}
	if decoded["contract_ticker_symbol"] != "ETH" {
		t.Fatalf("ticker not projected: %+v", decoded)
	}
}

func TestExecuteCanonicalizesEvmAddress(t *testing.T) {
	var gotPath string
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[]}}`))
	})

	d.Execute(context.Background(), NameWalletActivity, map[string]any{
		"walletAddress": "0x8ba1f109551bd432803012645ac136ddd64dba72",
	})

	if !strings.Contains(gotPath, "0x8ba1f109551bD432803012645Ac136ddd64DBA72") {
		t.Fatalf("address must be checksummed in the request path, got %s", gotPath)
	}
}

func TestExecuteWalletActivityCapsItems(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"address":"0xabc","total_count":8,"items":[{"n":1},{"n":2},{"n":3},{"n":4},{"n":5},{"n":6},{"n":7},{"n":8}]}}`))
	})

	payload := d.Execute(context.Background(), NameWalletActivity, map[string]any{
		"walletAddress": "0xabc123",
	})
	decoded := decodePayload(t, payload)

	activities, ok := decoded["activities"].([]any)
	if !ok {
		t.Fatalf("activities missing: %+v", decoded)
	}
	if len(activities) != 5 {
		t.Fatalf("expected at most 5 activities, got %d", len(activities))
	}
	if decoded["has_more"] != true {
		t.Fatalf("has_more must flag the truncation: %+v", decoded)
	}
}

func TestExecuteUpstreamErrorBecomesPayload(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error_message":"upstream exploded"}`))
	})

	payload := d.Execute(context.Background(), NameNativeBalance, map[string]any{
		"walletAddress": "0xabc",
	})
	decoded := decodePayload(t, payload)

	if decoded["error"] != "API Error: 500" {
		t.Fatalf("unexpected error payload: %+v", decoded)
	}
	if decoded["message"] != "upstream exploded" {
		t.Fatalf("upstream message must be preserved: %+v", decoded)
	}
}

func TestExecuteMissingAddress(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request should be issued when validation fails")
	})

	payload := d.Execute(context.Background(), NameNativeBalance, map[string]any{})
	decoded := decodePayload(t, payload)

	if decoded["error"] != "Wallet address is required" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestExecuteMissingXpub(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request should be issued when validation fails")
	})

	payload := d.Execute(context.Background(), NameBtcHdWalletBalances, map[string]any{})
	decoded := decodePayload(t, payload)

	if decoded["error"] != "HD wallet xpub is required" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request should be issued for unknown tools")
	})

	payload := d.Execute(context.Background(), "launchRocket", nil)
	decoded := decodePayload(t, payload)

	if decoded["error"] != "Function launchRocket not found" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestExecuteApprovalsPassesRawBody(t *testing.T) {
	raw := `{"data":{"items":[{"spender":"0xdead"}]}}`
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
	})

	payload := d.Execute(context.Background(), NameApprovals, map[string]any{
		"walletAddress": "0xabc",
	})

	if payload != raw {
		t.Fatalf("approvals payload must be the raw upstream body, got %s", payload)
	}
}
