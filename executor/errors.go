package executor

import (
	"errors"
	"fmt"

	"github.com/strixhq/strix/provider"
)

// ErrMissingContext means an image block was reached without a captured
// image. It is a preset-integrity failure: it aborts the branch with a log
// entry instead of becoming user-visible result text.
var ErrMissingContext = errors.New("image block reached without a captured image")

// ErrUnknownModel means a block references a model id absent from the run's
// model registry. Handled like ErrMissingContext.
var ErrUnknownModel = errors.New("block references an unregistered model")

const (
	msgMissingKey = "missing_key"
	msgInvalidKey = "invalid_key"
	msgHTTPError  = "http_error"
	msgMalformed  = "malformed"
	msgGeneric    = "generic"
)

// userMessages holds the per-UI-language strings a provider failure is
// rendered with. English is the fallback for unknown languages and keys.
var userMessages = map[string]map[string]string{
	"en": {
		msgMissingKey: "No API key is configured for this model's provider.",
		msgInvalidKey: "The provider rejected the configured API key.",
		msgHTTPError:  "The provider request failed (HTTP %d). Please try again.",
		msgMalformed:  "The provider returned an unreadable response.",
		msgGeneric:    "The request failed: %v",
	},
	"ko": {
		msgMissingKey: "이 모델의 제공자에 대한 API 키가 설정되지 않았습니다.",
		msgInvalidKey: "제공자가 API 키를 거부했습니다.",
		msgHTTPError:  "요청이 실패했습니다 (HTTP %d). 다시 시도해 주세요.",
		msgMalformed:  "제공자 응답을 읽을 수 없습니다.",
		msgGeneric:    "요청 실패: %v",
	},
	"vi": {
		msgMissingKey: "Chưa cấu hình khóa API cho nhà cung cấp của mô hình này.",
		msgInvalidKey: "Nhà cung cấp đã từ chối khóa API.",
		msgHTTPError:  "Yêu cầu thất bại (HTTP %d). Vui lòng thử lại.",
		msgMalformed:  "Phản hồi của nhà cung cấp không đọc được.",
		msgGeneric:    "Yêu cầu thất bại: %v",
	},
}

func message(lang, key string) string {
	if m, ok := userMessages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return userMessages["en"][key]
}

// localizeProviderError maps a provider failure onto the user-facing string
// that becomes the node's terminal result text. It never returns "".
func localizeProviderError(err error, lang string) string {
	switch {
	case errors.Is(err, provider.ErrMissingAPIKey):
		return message(lang, msgMissingKey)
	case errors.Is(err, provider.ErrInvalidAPIKey):
		return message(lang, msgInvalidKey)
	case errors.Is(err, provider.ErrMalformedResponse):
		return message(lang, msgMalformed)
	}
	var httpErr *provider.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf(message(lang, msgHTTPError), httpErr.Status)
	}
	return fmt.Sprintf(message(lang, msgGeneric), err)
}
