package chat

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SamFelix03/megha-network-arbitrum/internal/character"
	xerrors "github.com/SamFelix03/megha-network-arbitrum/internal/errors"
	"github.com/SamFelix03/megha-network-arbitrum/internal/intent"
	"github.com/SamFelix03/megha-network-arbitrum/internal/llm"
	"github.com/SamFelix03/megha-network-arbitrum/internal/prompt"
	"github.com/SamFelix03/megha-network-arbitrum/internal/session"
	"github.com/SamFelix03/megha-network-arbitrum/internal/toolcall"
	"github.com/SamFelix03/megha-network-arbitrum/internal/tools"
	"github.com/SamFelix03/megha-network-arbitrum/pkg/logger"
)

// Request 描述一次对话请求。
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// Result 汇总一轮对话的全部原始产物。工具路径的中间产物原样透出，
// 由调用方决定展示哪些字段。
type Result struct {
	RawModelResponse  string         `json:"rawModelResponse"`
	RawToolCall       string         `json:"rawToolCall,omitempty"`
	RawToolResponse   string         `json:"rawToolResponse,omitempty"`
	RawFinalResponse  string         `json:"rawFinalResponse,omitempty"`
	HasToolCall       bool           `json:"hasToolCall"`
	FunctionName      string         `json:"functionName,omitempty"`
	FunctionArgs      map[string]any `json:"functionArgs,omitempty"`
	ParseError        string         `json:"parseError,omitempty"`
	CharacterResponse bool           `json:"characterResponse,omitempty"`
}

// ToolExecutor 执行模型请求的工具并返回序列化后的结果。
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) string
}

// Service 协调意图分类、提示词构建、模型调用与工具执行，是系统的业务核心。
type Service struct {
	llmClient        llm.Client
	executor         ToolExecutor
	sessions         *session.Store
	profile          *character.Profile
	temperature      float64
	topP             float64
	llmTimeout       time.Duration
	defaultSessionID string
}

// Option 定义可选的 Service 配置。
type Option func(*Service)

// 默认采样参数。两段生成共用。
const (
	defaultTemperature = 0.3
	defaultTopP        = 0.9
)

// DefaultSessionID 是请求未携带会话标识时的兜底会话。
const DefaultSessionID = "default"

// WithCharacter 配置日常对话使用的角色档案。
func WithCharacter(profile *character.Profile) Option {
	return func(s *Service) {
		s.profile = profile
	}
}

// WithSampling 设置两段生成共用的采样参数。
func WithSampling(temperature, topP float64) Option {
	return func(s *Service) {
		if temperature > 0 {
			s.temperature = temperature
		}
		if topP > 0 {
			s.topP = topP
		}
	}
}

// WithLLMTimeout 设置单次模型调用的超时时间。
func WithLLMTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout <= 0 {
			s.llmTimeout = 0
			return
		}
		s.llmTimeout = timeout
	}
}

// WithDefaultSessionID 设置兜底会话标识。
func WithDefaultSessionID(sessionID string) Option {
	return func(s *Service) {
		if sessionID != "" {
			s.defaultSessionID = sessionID
		}
	}
}

// New 创建对话服务。
func New(llmClient llm.Client, executor ToolExecutor, sessions *session.Store, opts ...Option) *Service {
	svc := &Service{
		llmClient:        llmClient,
		executor:         executor,
		sessions:         sessions,
		temperature:      defaultTemperature,
		topP:             defaultTopP,
		defaultSessionID: DefaultSessionID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Execute 完成一轮对话：分类意图、构建提示、调用模型，必要时执行工具
// 并二次调用模型生成总结。
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	if s.llmClient == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "未配置大模型客户端")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "消息不能为空")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.defaultSessionID
	}
	turnID := uuid.NewString()
	started := time.Now()

	log := logger.Named("chat").With("turn_id", turnID, "session_id", sessionID)

	// 意图分类决定系统提示与可见的工具目录。
	mode := intent.Classify(req.Message)
	var systemPrompt string
	var toolSpecs []tools.Spec
	if mode == intent.ModeTool {
		systemPrompt = prompt.ToolSystemPrompt
		toolSpecs = tools.Catalogue()
	} else {
		systemPrompt = prompt.PersonaSystemPrompt(s.profile)
	}

	historyText := ""
	if s.sessions != nil {
		historyText = s.sessions.RenderHistory(sessionID)
	}

	stage1 := prompt.Build(systemPrompt, req.Message, toolSpecs, "", historyText)
	log.Info("开始生成", "mode", string(mode), "prompt_length", len(stage1))

	aiResponse, err := s.generate(ctx, stage1, prompt.StopSequences())
	if err != nil {
		return nil, err
	}

	// 空响应时丢掉历史重试一次。采样生成下同一提示词也可能在第二次成功。
	if aiResponse == "" {
		log.Warn("模型返回空响应，去除历史后重试")
		fallback := prompt.Build(systemPrompt, req.Message, toolSpecs, "", "")
		retried, err := s.generate(ctx, fallback, prompt.StopSequences())
		if err != nil {
			return nil, err
		}
		if retried != "" {
			aiResponse = retried
		}
	}

	detection := toolcall.Detect(aiResponse)
	switch detection.Status {
	case toolcall.StatusParsed:
		return s.completeToolTurn(ctx, log, turnID, sessionID, req.Message, aiResponse, detection, started)
	case toolcall.StatusParseError:
		// 调用块损坏：原样返回模型输出与解析错误，不写入历史。
		log.Warn("工具调用解析失败", "reason", detection.ParseErr)
		s.audit(turnID, sessionID, mode, started, "parse_error", "")
		return &Result{
			RawModelResponse: aiResponse,
			RawToolCall:      detection.Raw,
			ParseError:       detection.ParseErr,
			HasToolCall:      true,
		}, nil
	}

	// 没有工具调用：直接把首段输出作为回复。
	s.remember(sessionID, req.Message, aiResponse)
	s.audit(turnID, sessionID, mode, started, "direct", "")
	return &Result{
		RawModelResponse:  aiResponse,
		HasToolCall:       false,
		CharacterResponse: mode == intent.ModePersona,
	}, nil
}

// completeToolTurn 执行工具并发起第二段生成。第二段不携带停止序列，
// 让模型完整输出总结。
func (s *Service) completeToolTurn(ctx context.Context, log *slog.Logger, turnID, sessionID, userMessage, aiResponse string, detection toolcall.Detection, started time.Time) (*Result, error) {
	call := detection.Call
	log.Info("执行工具调用", "tool", call.Name)

	toolResult := ""
	if s.executor != nil {
		toolResult = s.executor.Execute(ctx, call.Name, call.Arguments)
	}

	followUp := prompt.FollowUp(userMessage, detection.Raw, toolResult)
	finalAnswer, err := s.generate(ctx, followUp, nil)
	if err != nil {
		return nil, err
	}

	s.remember(sessionID, userMessage, finalAnswer)
	s.audit(turnID, sessionID, intent.ModeTool, started, "tool", call.Name)
	return &Result{
		RawModelResponse: aiResponse,
		RawToolCall:      detection.Raw,
		RawToolResponse:  toolResult,
		RawFinalResponse: finalAnswer,
		HasToolCall:      true,
		FunctionName:     call.Name,
		FunctionArgs:     call.Arguments,
	}, nil
}

// generate 调用模型并整理输出。超时与失败映射到统一错误码。
func (s *Service) generate(ctx context.Context, promptText string, stop []string) (string, error) {
	llmCtx := ctx
	if s.llmTimeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.llmTimeout)
		defer cancel()
	}

	output, err := s.llmClient.Generate(llmCtx, promptText, llm.Options{
		Temperature: s.temperature,
		TopP:        s.topP,
		Stop:        stop,
	})
	if err != nil {
		if stdErrors.Is(err, context.DeadlineExceeded) {
			return "", xerrors.Wrap(xerrors.CodeTimeout, err, "模型推理超时")
		}
		return "", xerrors.Wrap(xerrors.CodeLLMFailure, err, "模型推理失败")
	}
	return strings.TrimSpace(output), nil
}

// remember 把一次完整交换写入会话历史（历史开关关闭时跳过）。
func (s *Service) remember(sessionID, userText, assistantText string) {
	if s.sessions == nil || !s.sessions.Enabled() {
		return
	}
	s.sessions.AppendExchange(sessionID, userText, assistantText)
}

// audit 记录一条回合审计日志。
func (s *Service) audit(turnID, sessionID string, mode intent.Mode, started time.Time, outcome, tool string) {
	record := logger.Audit().With(
		"turn_id", turnID,
		"session_id", sessionID,
		"mode", string(mode),
		"outcome", outcome,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	if tool != "" {
		record = record.With("tool", tool)
	}
	record.Info("chat turn")
}
