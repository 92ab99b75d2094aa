package validation

import (
	"fmt"
	"regexp"
)

// OwnerPattern определяет допустимый формат владельца (subject токена)
// Только латинские буквы, цифры, нижнее подчеркивание. Длина: 3-32 символа
var OwnerPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// NamePattern формат имён зон и подписок
var NamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// RecordNamePattern формат имён записей: UUID и им подобные
var RecordNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

const (
	// MinOwnerLen минимальная длина владельца
	MinOwnerLen = 3
	// MaxOwnerLen максимальная длина владельца
	MaxOwnerLen = 32
	// MaxNameLen максимальная длина имени зоны или подписки
	MaxNameLen = 64
	// MaxRecordNameLen максимальная длина имени записи
	MaxRecordNameLen = 255
)

// ValidateOwner проверяет subject, для которого выпускается токен
func ValidateOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}

	if len(owner) < MinOwnerLen {
		return fmt.Errorf("owner must be at least %d characters long", MinOwnerLen)
	}

	if len(owner) > MaxOwnerLen {
		return fmt.Errorf("owner must not exceed %d characters", MaxOwnerLen)
	}

	if !OwnerPattern.MatchString(owner) {
		return fmt.Errorf("owner can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidateZoneName проверяет имя зоны
func ValidateZoneName(zone string) error {
	return validateName("zone", zone, NamePattern, MaxNameLen)
}

// ValidateSubscriptionID проверяет идентификатор подписки
func ValidateSubscriptionID(id string) error {
	return validateName("subscription id", id, NamePattern, MaxNameLen)
}

// ValidateRecordName проверяет имя записи
func ValidateRecordName(name string) error {
	return validateName("record name", name, RecordNamePattern, MaxRecordNameLen)
}

// ValidateRecordType проверяет тип записи
func ValidateRecordType(recordType string) error {
	return validateName("record type", recordType, NamePattern, MaxNameLen)
}

func validateName(what, value string, pattern *regexp.Regexp, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", what, maxLen)
	}
	if !pattern.MatchString(value) {
		return fmt.Errorf("%s %q contains invalid characters", what, value)
	}
	return nil
}
