// Package strutil provides string utilities for case conversion, pluralization,
// and deterministic SQL object naming used throughout the anvil codebase.
package strutil

import (
	"strings"
	"unicode"
)

// -----------------------------------------------------------------------------
// Case Conversion
// -----------------------------------------------------------------------------

// ToSnakeCase converts a string to snake_case.
// Examples: userName -> user_name, UserName -> user_name, HTTPServer -> http_server
func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s) + 4)

	for i, r := range s {
		if unicode.IsUpper(r) {
			// Add underscore before uppercase letter if:
			// - Not at the start
			// - Previous char is lowercase, OR
			// - Next char exists and is lowercase (handles "HTTPServer" -> "http_server")
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) {
					result.WriteByte('_')
				} else if i+1 < len(s) && unicode.IsLower(rune(s[i+1])) {
					result.WriteByte('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else if r == '-' || r == ' ' {
			result.WriteByte('_')
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// -----------------------------------------------------------------------------
// Pluralization
// -----------------------------------------------------------------------------

// irregularPlurals covers the common English nouns that show up as entity names.
var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"man":    "men",
	"woman":  "women",
	"foot":   "feet",
	"tooth":  "teeth",
	"mouse":  "mice",
}

// Pluralize returns the plural form of an English noun, preserving the
// casing of the first letter. Used to derive table names from entity names:
// User -> Users, Company -> Companies, Address -> Addresses.
func Pluralize(s string) string {
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	if plural, ok := irregularPlurals[lower]; ok {
		return matchFirstCase(plural, s)
	}

	switch {
	case strings.HasSuffix(lower, "y") && len(s) > 1 && !isVowel(rune(lower[len(lower)-2])):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return s + "es"
	default:
		return s + "s"
	}
}

// isVowel reports whether r is an English vowel.
func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// matchFirstCase uppercases the first letter of s when template starts uppercase.
func matchFirstCase(s, template string) string {
	if s == "" || template == "" {
		return s
	}
	if unicode.IsUpper(rune(template[0])) {
		return strings.ToUpper(s[:1]) + s[1:]
	}
	return s
}

// -----------------------------------------------------------------------------
// SQL Naming
// -----------------------------------------------------------------------------

// IndexName generates a deterministic index name: idx_table_col1_col2 or
// uniq_table_col1_col2 for unique indexes.
func IndexName(table string, unique bool, cols ...string) string {
	prefix := "idx_"
	if unique {
		prefix = "uniq_"
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(table)
	for _, col := range cols {
		b.WriteByte('_')
		b.WriteString(col)
	}
	return b.String()
}

// ForeignKeyName generates a deterministic foreign key constraint name:
// fk_table_column.
func ForeignKeyName(table, column string) string {
	return "fk_" + table + "_" + column
}
