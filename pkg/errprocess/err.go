package errprocess

import (
	"errors"
	"fmt"

	"group_chat_service/pkg/logger"
)

// 核心錯誤分類
// NotFound / Unauthorized 直接回傳給 caller，不重試
// DeliveryFault 只記錄，不回滾已寫入的資料
var (
	// ErrNotFound conversation/user/message id 無法解析
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized caller 不是成員或缺少 admin 權限
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument caller 給的參數不成立，重試也不會成功
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDeliveryFault queue publish 或 sink 轉發失敗
	ErrDeliveryFault = errors.New("delivery fault")
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// NotFound wrap ErrNotFound with subject
func NotFound(subject string) error {
	return fmt.Errorf("%s: %w", subject, ErrNotFound)
}

// Unauthorized wrap ErrUnauthorized with reason
func Unauthorized(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrUnauthorized)
}

// Invalid wrap ErrInvalidArgument with reason
func Invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidArgument)
}

// DeliveryFault wrap ErrDeliveryFault, 並記錄原始錯誤
func DeliveryFault(stage string, cause error) error {
	err := fmt.Errorf("%s: %v: %w", stage, cause, ErrDeliveryFault)
	logger.Log.Error(err.Error())
	return err
}
