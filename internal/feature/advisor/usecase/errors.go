package usecase

import "errors"

var (
	// ErrCredentialRequired はAPIキーが未設定か、LLMが 401 を返した場合に返されます。
	ErrCredentialRequired = errors.New("llm credential required")
	// ErrImagesUnsupported はモデルが画像入力に対応していない場合に返されます。
	ErrImagesUnsupported = errors.New("model does not support images")
	// ErrAdvisorUnavailable はその他の理由でLLMから応答を得られなかった場合に返されます。
	ErrAdvisorUnavailable = errors.New("advisor is temporarily unavailable, please retry")
	// ErrInvalidRequest は本文や画像が不正な場合に返されます。
	ErrInvalidRequest = errors.New("invalid chat request")
)
