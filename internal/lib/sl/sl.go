// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель в том, чтобы упростить формирование структурированных полей лога,
// например, для передачи информации об ошибках.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// UserID возвращает slog.Attr с идентификатором пользователя.
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}
