// redact — маскирование персональных данных и секретов перед записью в лог.
package redact

import "strings"

// Email оставляет две первые руны локальной части и домен.
// Короткая локальная часть (<=2 рун) и невалидный адрес маскируются целиком.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	r := []rune(local)
	if len(r) > 2 {
		return string(r[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Token — последние 4 символа, чтобы сопоставлять записи об одной паре.
// Короткие токены не раскрываются вовсе.
func Token(s string) string {
	if len(s) <= 16 {
		return "[REDACTED_TOKEN]"
	}

	return "***" + s[len(s)-4:]
}
