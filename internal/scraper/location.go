package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultCitySuffix дописывается к каждому адресу.
const DefaultCitySuffix = ", Newark, NJ"

var trailingNumberRegex = regexp.MustCompile(`\d+$`)

// OrdinalSuffix возвращает английский суффикс порядкового числительного.
func OrdinalSuffix(n int) string {
	if n < 0 {
		n = -n
	}
	if mod := n % 100; mod >= 11 && mod <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatLocation собирает адрес из текстовых фрагментов ячейки.
// Сайт выносит суффикс номера ("10<sup>th</sup>") в отдельный элемент,
// поэтому число в конце первого фрагмента получает суффикс обратно.
// Правило чисто синтаксическое: смотрим только на цифры в конце фрагмента.
func FormatLocation(fragments []string, citySuffix string) (string, error) {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoLocationFragments
	}

	if digits := trailingNumberRegex.FindString(parts[0]); digits != "" {
		parts[0] = parts[0][:len(parts[0])-len(digits)] + withOrdinal(digits)
	}

	return strings.Join(parts, " ") + citySuffix, nil
}

// withOrdinal работает со строкой цифр любой длины: ведущие нули
// отбрасываются, суффикс определяют последние две цифры.
func withOrdinal(digits string) string {
	number := strings.TrimLeft(digits, "0")
	if number == "" {
		number = "0"
	}

	tail := number
	if len(tail) > 2 {
		tail = tail[len(tail)-2:]
	}
	n, _ := strconv.Atoi(tail)

	return number + OrdinalSuffix(n)
}
