package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SamFelix03/megha-network-arbitrum/internal/chaindata"
	"github.com/SamFelix03/megha-network-arbitrum/internal/chat"
	"github.com/SamFelix03/megha-network-arbitrum/internal/llm"
	"github.com/SamFelix03/megha-network-arbitrum/internal/session"
)

type staticLLM struct {
	response string
}

func (s *staticLLM) Generate(context.Context, string, llm.Options) (string, error) {
	return s.response, nil
}

type fakeExecutor struct {
	name    string
	args    map[string]any
	payload string
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args map[string]any) string {
	f.name = name
	f.args = args
	if f.payload == "" {
		return `{}`
	}
	return f.payload
}

type fakeStatus struct {
	models []string
	err    error
}

func (f *fakeStatus) Models(context.Context) ([]string, error) {
	return f.models, f.err
}

func newTestServer(executor *fakeExecutor, status *fakeStatus) (*Server, *session.Store) {
	store := session.NewStore(3, true)
	svc := chat.New(&staticLLM{response: "hello there"}, executor, store)
	chains, _ := chaindata.LoadChainCatalogue("")
	return NewServer(":0", svc, store, executor, status, "nemotron-mini:latest", chains), store
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(&fakeExecutor{}, &fakeStatus{})
	rec := doRequest(t, server.Router(), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	server, _ := newTestServer(&fakeExecutor{}, &fakeStatus{})
	rec := doRequest(t, server.Router(), http.MethodPost, "/chat", `{"sessionId":"s1"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Message is required" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestChatPersonaTurn(t *testing.T) {
	server, store := newTestServer(&fakeExecutor{}, &fakeStatus{})
	rec := doRequest(t, server.Router(), http.MethodPost, "/chat", `{"message":"good morning","sessionId":"s1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["rawModelResponse"] != "hello there" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body["hasToolCall"] != false {
		t.Fatalf("persona turn must not flag a tool call: %+v", body)
	}
	if len(store.GetHistory("s1")) != 1 {
		t.Fatalf("turn must be recorded in history")
	}
}

func TestHistoryLifecycle(t *testing.T) {
	server, store := newTestServer(&fakeExecutor{}, &fakeStatus{})
	router := server.Router()
	store.AppendExchange("s9", "question", "answer")

	rec := doRequest(t, router, http.MethodGet, "/chat/history/s9", "")
	body := decodeBody(t, rec)
	if body["count"] != float64(1) || body["sessionId"] != "s9" {
		t.Fatalf("unexpected history body: %+v", body)
	}

	rec = doRequest(t, router, http.MethodDelete, "/chat/history/s9", "")
	body = decodeBody(t, rec)
	if body["message"] != "Conversation history cleared for session: s9" {
		t.Fatalf("unexpected clear body: %+v", body)
	}

	rec = doRequest(t, router, http.MethodGet, "/chat/sessions", "")
	body = decodeBody(t, rec)
	if body["totalSessions"] != float64(0) {
		t.Fatalf("cleared session must disappear from the listing: %+v", body)
	}
}

func TestWalletBalanceDefaultsChain(t *testing.T) {
	executor := &fakeExecutor{payload: `{"balance":"42"}`}
	server, _ := newTestServer(executor, &fakeStatus{})

	rec := doRequest(t, server.Router(), http.MethodGet, "/wallet/0xabc/balance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if executor.name != "getNativeBalance" {
		t.Fatalf("wrong tool invoked: %s", executor.name)
	}
	if executor.args["walletAddress"] != "0xabc" {
		t.Fatalf("address not forwarded: %+v", executor.args)
	}
	if _, ok := executor.args["chainId"]; ok {
		t.Fatalf("default-chain route must leave chainId to the tool: %+v", executor.args)
	}
	if rec.Body.String() != `{"balance":"42"}` {
		t.Fatalf("tool payload must be passed through verbatim: %s", rec.Body.String())
	}
}

func TestWalletNftsExplicitChain(t *testing.T) {
	executor := &fakeExecutor{}
	server, _ := newTestServer(executor, &fakeStatus{})

	doRequest(t, server.Router(), http.MethodGet, "/wallet/0xabc/nfts/polygon-mainnet", "")
	if executor.name != "getNftBalances" || executor.args["chainId"] != "polygon-mainnet" {
		t.Fatalf("explicit chain not forwarded: %s %+v", executor.name, executor.args)
	}
}

func TestBtcHdWalletsRoute(t *testing.T) {
	executor := &fakeExecutor{}
	server, _ := newTestServer(executor, &fakeStatus{})

	doRequest(t, server.Router(), http.MethodGet, "/wallet/btc/xpub6DUM/hd_wallets", "")
	if executor.name != "getBtcHdWalletBalances" || executor.args["walletXpub"] != "xpub6DUM" {
		t.Fatalf("btc route must map the xpub argument: %s %+v", executor.name, executor.args)
	}
}

func TestWalletToolGuardMessages(t *testing.T) {
	server, _ := newTestServer(&fakeExecutor{}, &fakeStatus{})

	// Invoke the handlers directly: routed requests always carry the path
	// params, so the guard only fires for unrouted callers.
	rec := httptest.NewRecorder()
	server.walletTool("getNativeBalance", "walletAddress", "address", "")(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if body := decodeBody(t, rec); body["error"] != "Wallet address is required" {
		t.Fatalf("unexpected address guard: %+v", body)
	}

	rec = httptest.NewRecorder()
	server.walletTool("getBtcHdWalletBalances", "walletXpub", "xpub", "")(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if body := decodeBody(t, rec); body["error"] != "HD wallet xpub is required" {
		t.Fatalf("unexpected xpub guard: %+v", body)
	}
}

func TestStatusProbeDown(t *testing.T) {
	server, _ := newTestServer(&fakeExecutor{}, &fakeStatus{err: errors.New("connection refused")})
	rec := doRequest(t, server.Router(), http.MethodGet, "/status", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["ollama"] != "not running" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestStatusProbeUp(t *testing.T) {
	server, _ := newTestServer(&fakeExecutor{}, &fakeStatus{models: []string{"nemotron-mini:latest", "llama3:8b"}})
	rec := doRequest(t, server.Router(), http.MethodGet, "/status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["ollama"] != "running" || body["model_available"] != true {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestExamplesListsChains(t *testing.T) {
	server, _ := newTestServer(&fakeExecutor{}, &fakeStatus{})
	rec := doRequest(t, server.Router(), http.MethodGet, "/examples", "")

	body := decodeBody(t, rec)
	chains, ok := body["available_chains"].([]any)
	if !ok || len(chains) == 0 {
		t.Fatalf("examples must list the known chains: %+v", body)
	}
}

func TestMetricsExposition(t *testing.T) {
	server, _ := newTestServer(&fakeExecutor{}, &fakeStatus{})
	router := server.Router()

	doRequest(t, router, http.MethodGet, "/health", "")
	rec := doRequest(t, router, http.MethodGet, "/metrics", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "walletai_http_requests_total") {
		t.Fatalf("metrics output missing request counter:\n%s", rec.Body.String())
	}
}
