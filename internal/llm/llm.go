package llm

import "context"

// Options 控制一次补全调用的采样与停止行为。
// 第一阶段调用必须携带角色分隔符作为停止序列，第二阶段总结调用必须省略。
type Options struct {
	Temperature float64
	TopP        float64
	Stop        []string
}

// Client 定义了调用补全模型的统一接口。
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// StatusReporter 暴露模型后端的可用性探测，供 /status 与启动检查使用。
type StatusReporter interface {
	Models(ctx context.Context) ([]string, error)
}
