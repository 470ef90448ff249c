package analyze

import (
	"errors"
	"strings"

	"github.com/mxppxm/english-tutor/internal/llm"
)

// UserFacingError maps a downstream failure onto the message shown to the
// learner. Categories: API key, rate limit, network, model, timeout, generic.
func UserFacingError(err error) string {
	var timeoutErr *llm.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "AI API请求超时，请尝试减少文本长度或稍后重试"
	}

	status := 0
	var providerErr *llm.ProviderError
	if errors.As(err, &providerErr) {
		status = providerErr.StatusCode
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case status == 401 || status == 403 ||
		strings.Contains(lower, "api key") || strings.Contains(lower, "api_key"):
		return "API密钥配置错误，请检查配置"
	case status == 429 ||
		strings.Contains(lower, "rate limit") || strings.Contains(lower, "quota"):
		return "API请求频率限制或配额不足，请稍后重试"
	case strings.Contains(lower, "network"):
		return "网络连接错误，请检查网络连接"
	case status == 404 ||
		strings.Contains(lower, "model") || strings.Contains(msg, "不存在"):
		return "AI模型配置错误，请检查模型名称"
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return "请求超时，请稍后重试"
	default:
		return "分析失败: " + msg
	}
}
