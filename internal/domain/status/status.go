// Пакет status — конечный автомат статусов модерации статьи.
//
// Жизненный цикл: статья создаётся в Pending, модератор переводит её
// в Approved / Rejected / Shortlisted, отклонённая статья может быть
// возвращена в Pending (re-open). Жалоба (report) переводит статью
// в Reported из любого состояния.
//
// Автомат не хранит состояние — текущий статус живёт в строке таблицы
// articles, а допустимость перехода проверяется guarded UPDATE'ом
// по множеству AllowedFrom (см. repository.UpdateStatus).
package status

import (
	"fmt"
	"strings"
)

// Status — статус модерации статьи.
type Status string

const (
	// StatusPending — ожидает решения модератора (начальный статус)
	StatusPending Status = "Pending"
	// StatusApproved — одобрена, видна в публичном поиске
	StatusApproved Status = "Approved"
	// StatusRejected — отклонена
	StatusRejected Status = "Rejected"
	// StatusShortlisted — отложена модератором для детального рассмотрения
	StatusShortlisted Status = "Shortlisted"
	// StatusReported — получена жалоба, скрыта до разбора
	StatusReported Status = "Reported"
)

// Initial — статус, принудительно выставляемый при создании записи.
const Initial = StatusPending

// validTransitions — матрица допустимых переходов.
// Ключ — целевой статус, значение — множество исходных статусов.
// Переход в Reported разрешён из любого состояния и матрицей не
// описывается (см. AllowedFrom).
var validTransitions = map[Status][]Status{
	StatusApproved:    {StatusPending, StatusShortlisted},
	StatusRejected:    {StatusPending, StatusApproved, StatusShortlisted},
	StatusShortlisted: {StatusPending},
	StatusPending:     {StatusRejected}, // re-open отклонённой статьи
}

// All возвращает все допустимые статусы.
func All() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusShortlisted, StatusReported}
}

// IsValid проверяет, является ли значение допустимым статусом.
func IsValid(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusShortlisted, StatusReported:
		return true
	default:
		return false
	}
}

// Parse преобразует строку в Status.
// Возвращает ошибку для любого значения вне пяти допустимых.
func Parse(s string) (Status, error) {
	st := Status(s)
	if !IsValid(st) {
		return "", fmt.Errorf("недопустимый статус: %q, допустимые: Pending, Approved, Rejected, Shortlisted, Reported", s)
	}
	return st, nil
}

// ParseFold — регистронезависимый вариант Parse.
// Используется для сегментов URL (/api/v1/articles/pending).
func ParseFold(s string) (Status, error) {
	for _, st := range All() {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("недопустимый статус: %q, допустимые: Pending, Approved, Rejected, Shortlisted, Reported", s)
}

// AllowedFrom возвращает множество исходных статусов, из которых
// допустим переход в target. Для Reported возвращает все статусы
// (жалоба принимается из любого состояния).
func AllowedFrom(target Status) []Status {
	if target == StatusReported {
		return All()
	}
	from, ok := validTransitions[target]
	if !ok {
		return nil
	}
	result := make([]Status, len(from))
	copy(result, from)
	return result
}

// CanTransition проверяет допустимость перехода from → to.
func CanTransition(from, to Status) bool {
	for _, s := range AllowedFrom(to) {
		if s == from {
			return true
		}
	}
	return false
}

// Strings конвертирует срез статусов в срез строк (для SQL-параметров).
func Strings(statuses []Status) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
