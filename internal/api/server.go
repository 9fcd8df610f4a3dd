package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SamFelix03/megha-network-arbitrum/internal/chaindata"
	"github.com/SamFelix03/megha-network-arbitrum/internal/chat"
	xerrors "github.com/SamFelix03/megha-network-arbitrum/internal/errors"
	"github.com/SamFelix03/megha-network-arbitrum/internal/llm"
	"github.com/SamFelix03/megha-network-arbitrum/internal/observability/metrics"
	"github.com/SamFelix03/megha-network-arbitrum/internal/session"
	"github.com/SamFelix03/megha-network-arbitrum/internal/tools"
	"github.com/SamFelix03/megha-network-arbitrum/pkg/logger"
)

// Server 负责暴露 REST 接口：对话入口、会话管理、钱包直查与运行状态。
type Server struct {
	addr     string
	chat     *chat.Service
	sessions *session.Store
	executor chat.ToolExecutor
	status   llm.StatusReporter
	model    string
	chains   chaindata.ChainCatalogue
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, svc *chat.Service, sessions *session.Store, executor chat.ToolExecutor, status llm.StatusReporter, model string, chains chaindata.ChainCatalogue) *Server {
	return &Server{
		addr:     addr,
		chat:     svc,
		sessions: sessions,
		executor: executor,
		status:   status,
		model:    model,
		chains:   chains,
	}
}

// Router 组装全部路由。独立出来方便测试。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/examples", s.handleExamples)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Post("/chat", s.handleChat)
	r.Get("/chat/history/{sessionId}", s.handleGetHistory)
	r.Delete("/chat/history/{sessionId}", s.handleClearHistory)
	r.Get("/chat/sessions", s.handleListSessions)

	r.Route("/wallet", func(r chi.Router) {
		r.Get("/btc/{xpub}/hd_wallets", s.walletTool(tools.NameBtcHdWalletBalances, "walletXpub", "xpub", ""))
		r.Get("/btc/{xpub}/hd_wallets/{chainId}", s.walletTool(tools.NameBtcHdWalletBalances, "walletXpub", "xpub", "chainId"))

		r.Get("/{address}/activity", s.walletTool(tools.NameWalletActivity, "walletAddress", "address", ""))
		r.Get("/{address}/balance", s.walletTool(tools.NameNativeBalance, "walletAddress", "address", ""))
		r.Get("/{address}/balance/{chainId}", s.walletTool(tools.NameNativeBalance, "walletAddress", "address", "chainId"))
		r.Get("/{address}/transactions", s.walletTool(tools.NameTransactionSummary, "walletAddress", "address", ""))
		r.Get("/{address}/transactions/{chainId}", s.walletTool(tools.NameTransactionSummary, "walletAddress", "address", "chainId"))
		r.Get("/{address}/approvals", s.walletTool(tools.NameApprovals, "walletAddress", "address", ""))
		r.Get("/{address}/approvals/{chainId}", s.walletTool(tools.NameApprovals, "walletAddress", "address", "chainId"))
		r.Get("/{address}/nfts", s.walletTool(tools.NameNftBalances, "walletAddress", "address", ""))
		r.Get("/{address}/nfts/{chainId}", s.walletTool(tools.NameNftBalances, "walletAddress", "address", "chainId"))
	})

	return r
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Named("api").Info("HTTP 服务启动", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Wallet AI API is running",
	})
}

// handleChat 是对话入口。缺失消息返回 400，其余错误按错误码映射状态。
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "Chat service not initialised"})
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Message is required"})
		return
	}

	result, err := s.chat.Execute(r.Context(), req)
	if err != nil {
		logger.Named("api").Error("对话处理失败", "error", err)
		writeJSON(w, xerrors.HTTPStatusOf(err), map[string]any{
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	history := s.sessions.GetHistory(sessionID)
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"history":   history,
		"count":     len(history),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	s.sessions.ClearSession(sessionID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Conversation history cleared for session: " + sessionID,
		"sessionId": sessionID,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	infos := s.sessions.ListSessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"activeSessions": infos,
		"totalSessions":  len(infos),
	})
}

// handleStatus 探测模型后端。探测失败返回 503，表示服务整体不可用。
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ollama": "not running",
			"error":  "status probe not configured",
		})
		return
	}

	models, err := s.status.Models(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ollama": "not running",
			"error":  err.Error(),
		})
		return
	}

	target := s.model
	if idx := strings.IndexByte(target, ':'); idx > 0 {
		target = target[:idx]
	}
	available := false
	for _, name := range models {
		if target != "" && strings.Contains(name, target) {
			available = true
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ollama":          "running",
		"model_available": available,
		"models":          models,
	})
}

// walletTool 把一条直查路由绑定到一个工具。chainParam 为空时使用该工具
// 的默认链；工具层的错误载荷原样透出，状态码保持 200。
func (s *Server) walletTool(toolName, argKey, pathParam, chainParam string) http.HandlerFunc {
	missing := "Wallet address is required"
	if argKey == "walletXpub" {
		missing = "HD wallet xpub is required"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, pathParam)
		if subject == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": missing})
			return
		}

		args := map[string]any{argKey: subject}
		if chainParam != "" {
			if chainID := chi.URLParam(r, chainParam); chainID != "" {
				args["chainId"] = chainID
			}
		}

		payload := s.executor.Execute(r.Context(), toolName, args)
		writeRawJSON(w, http.StatusOK, payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRawJSON(w http.ResponseWriter, status int, payload string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(payload))
}
