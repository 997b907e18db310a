package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgBadState      = "операция недопустима в текущем состоянии бронирования"
	msgCapacity      = "достигнут лимит услуг по текущей подписке"

	// CodeBadState код ошибки перехода из недопустимого состояния
	CodeBadState = "BAD_STATE"
	// CodeConflict код ошибки пересечения бронирований
	CodeConflict = "CONFLICT"
	// CodeCapacity код ошибки превышения лимита услуг
	CodeCapacity = "CAPACITY"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse стандартный ответ с ошибкой
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// BadStateResponse ответ 409 с текущим состоянием бронирования
type BadStateResponse struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// CapacityResponse ответ 403 при превышении лимита услуг
type CapacityResponse struct {
	Code            string `json:"code"`
	Message         string `json:"message"`
	UpgradeRequired bool   `json:"upgradeRequired"`
	Limit           int    `json:"limit"`
	CurrentCount    int    `json:"currentCount"`
}

// DecodeJSON декодирует тело запроса
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// DecodeAndValidate декодирует тело запроса и проверяет теги validate
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// RespondJSON пишет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

// RespondErrorCode пишет ответ с ошибкой и машинным кодом
func RespondErrorCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondConflict 409 с кодом CONFLICT
func RespondConflict(w http.ResponseWriter, message string) {
	RespondErrorCode(w, http.StatusConflict, CodeConflict, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondBadState пишет 409 с текущим состоянием бронирования
func RespondBadState(w http.ResponseWriter, te *domain.TransitionError) {
	RespondJSON(w, http.StatusConflict, BadStateResponse{
		Code:          CodeBadState,
		Message:       msgBadState,
		Status:        string(te.Status),
		PaymentStatus: string(te.PaymentStatus),
	})
}

// RespondCapacity пишет 403 с кодом CAPACITY
func RespondCapacity(w http.ResponseWriter, limit, currentCount int) {
	RespondJSON(w, http.StatusForbidden, CapacityResponse{
		Code:            CodeCapacity,
		Message:         msgCapacity,
		UpgradeRequired: true,
		Limit:           limit,
		CurrentCount:    currentCount,
	})
}
