// Package apperr описывает таксономию прикладных ошибок сервиса.
//
// Каждая ошибка несёт Kind, по которому HTTP- и gRPC-слои выбирают код ответа,
// и сообщение, которое можно безопасно показать пользователю.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind классифицирует прикладную ошибку.
type Kind int

const (
	// KindUnknown ошибка без классификации (внутренняя).
	KindUnknown Kind = iota
	// KindValidation не заполнено обязательное поле или значение некорректно.
	KindValidation
	// KindAuthorization роль или статус аккаунта не допускают действие.
	KindAuthorization
	// KindStorageConflict объект с таким путём уже существует в blob-хранилище.
	KindStorageConflict
	// KindNotFound запись не найдена.
	KindNotFound
	// KindConflict действие недопустимо в текущем состоянии записи.
	KindConflict
	// KindRemoteService сбой внешнего сервиса (БД, хранилище, брокер).
	KindRemoteService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindStorageConflict:
		return "storage_conflict"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRemoteService:
		return "remote_service"
	default:
		return "unknown"
	}
}

// Error прикладная ошибка с видом, операцией и пользовательским сообщением.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation создаёт ошибку валидации входных данных.
func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// Authorization создаёт ошибку отказа в доступе с объяснением причины.
func Authorization(op, msg string) error {
	return &Error{Kind: KindAuthorization, Op: op, Msg: msg}
}

// StorageConflict создаёт ошибку коллизии пути в blob-хранилище.
func StorageConflict(op, msg string, err error) error {
	return &Error{Kind: KindStorageConflict, Op: op, Msg: msg, Err: err}
}

// NotFound создаёт ошибку отсутствующей записи.
func NotFound(op, msg string, err error) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg, Err: err}
}

// Conflict создаёт ошибку недопустимого перехода состояния.
func Conflict(op, msg string) error {
	return &Error{Kind: KindConflict, Op: op, Msg: msg}
}

// Remote оборачивает сбой внешнего сервиса.
func Remote(op string, err error) error {
	return &Error{Kind: KindRemoteService, Op: op, Err: err}
}

// KindOf возвращает вид первой прикладной ошибки в цепочке.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Is сообщает, относится ли ошибка к указанному виду.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message возвращает текст, который можно показать пользователю.
// Для сбоев внешних сервисов текст причины передаётся как есть.
func Message(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "internal error"
	}
	if appErr.Msg != "" {
		return appErr.Msg
	}
	if appErr.Err != nil {
		return appErr.Err.Error()
	}
	return appErr.Kind.String()
}

// HTTPStatus сопоставляет вид ошибки HTTP-коду ответа.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuthorization:
		return http.StatusForbidden
	case KindStorageConflict, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindRemoteService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
