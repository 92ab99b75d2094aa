package api

// Коды ошибок сервиса записей
const (
	CodeZoneNotFound         = "zone_not_found"
	CodeSubscriptionNotFound = "subscription_not_found"
	CodeLimitExceeded        = "limit_exceeded"
	CodePartialFailure       = "partial_failure"
	CodeServerRecordChanged  = "server_record_changed"
	CodeBatchRequestFailed   = "batch_request_failed"
	CodeChangeTokenExpired   = "change_token_expired"
	CodeRateLimited          = "rate_limited"
	CodeServiceUnavailable   = "service_unavailable"
	CodeUnknownItem          = "unknown_item"
	CodeBadRequest           = "bad_request"
	CodeUnauthorized         = "unauthorized"
	CodeInternal             = "internal"
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	PerRecord         map[string]RecordError `json:"per_record,omitempty"`          // PerRecord результат по каждой записи для partial_failure
	Error             string                 `json:"error"`                         // Error машинный код ошибки
	Message           string                 `json:"message,omitempty"`             // Message дополнительное сообщение
	RetryAfterSeconds int                    `json:"retry_after_seconds,omitempty"` // RetryAfterSeconds через сколько секунд повторить
}

// RecordError результат обработки одной записи в отклонённом пакете
type RecordError struct {
	ServerRecord *Record `json:"server_record,omitempty"` // ServerRecord текущая версия для server_record_changed
	Error        string  `json:"error"`
	Message      string  `json:"message,omitempty"`
}
