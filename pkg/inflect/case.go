// Package inflect collects case-conversion, singular/plural, and ordinal
// helpers behind one filter registry, independent of any single rendering
// engine.
package inflect

import (
	"strings"
	"unicode"

	"github.com/huandu/xstrings"
	"github.com/iancoleman/strcase"
	strcase2 "github.com/stoewer/go-strcase"
)

// words splits an identifier of any common case convention into its
// constituent lowercase words.
func words(s string) []string {
	// Normalize to snake_case first via xstrings, which handles
	// camelCase/PascalCase boundaries, then split on non-alphanumerics.
	snake := xstrings.ToSnakeCase(s)
	fields := strings.FieldsFunc(snake, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}

// Camel converts to camelCase: "order_item" -> "orderItem".
func Camel(s string) string { return strcase.ToLowerCamel(s) }

// Pascal converts to PascalCase: "order_item" -> "OrderItem".
func Pascal(s string) string { return strcase.ToCamel(s) }

// Class is an alias of Pascal, matching the naming used for class
// identifiers in object-oriented target languages.
func Class(s string) string { return Pascal(s) }

// Cobol converts to COBOL-CASE: "order_item" -> "ORDER-ITEM".
func Cobol(s string) string { return strings.ToUpper(strings.Join(words(s), "-")) }

// Constant converts to CONSTANT_CASE: "order-item" -> "ORDER_ITEM".
func Constant(s string) string { return strings.ToUpper(strings.Join(words(s), "_")) }

// Directory converts to directory/path case: "OrderItem" -> "order/item".
func Directory(s string) string { return strings.Join(words(s), "/") }

// Kebab converts to kebab-case: "OrderItem" -> "order-item".
func Kebab(s string) string { return strcase2.KebabCase(s) }

// Package converts to dotted.package.case: "OrderItem" -> "order.item".
func Package(s string) string { return strings.Join(words(s), ".") }

// Sentence converts to a capitalized, space-separated sentence fragment:
// "order_item" -> "Order item".
func Sentence(s string) string {
	w := words(s)
	if len(w) == 0 {
		return ""
	}
	w[0] = strings.ToUpper(w[0][:1]) + w[0][1:]
	return strings.Join(w, " ")
}

// Snake converts to snake_case: "OrderItem" -> "order_item".
func Snake(s string) string { return xstrings.ToSnakeCase(s) }

// Title converts to Title Case: "order_item" -> "Order Item".
func Title(s string) string {
	w := words(s)
	for i, p := range w {
		if p == "" {
			continue
		}
		w[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(w, " ")
}

// Train converts to Train-Case: "order_item" -> "Order-Item".
func Train(s string) string {
	w := words(s)
	for i, p := range w {
		if p == "" {
			continue
		}
		w[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(w, "-")
}

// Upper converts to a single space-separated UPPER CASE phrase.
func Upper(s string) string { return strings.ToUpper(strings.Join(words(s), " ")) }

// Lower converts to a single space-separated lower case phrase.
func Lower(s string) string { return strings.ToLower(strings.Join(words(s), " ")) }
