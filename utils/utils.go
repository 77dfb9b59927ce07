package utils

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Чилийский RUN: 12.345.678-5 (точки опциональны, контрольный знак может
// быть 'K'). Телефон — только цифры с опциональным '+'.
var (
	runPattern   = regexp.MustCompile(`^\d{1,2}\.?\d{3}\.?\d{3}-[\dkK]$`)
	phonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func IsValidRUN(run string) bool {
	return runPattern.MatchString(strings.TrimSpace(run))
}

// NormalizeRUN приводит RUN к каноническому виду для уникального индекса:
// без точек, верхний регистр ("12.345.678-k" -> "12345678-K").
func NormalizeRUN(run string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(run), ".", ""))
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}
