package inflect

import "github.com/jinzhu/inflection"

// Pluralize returns the plural form of a singular noun.
func Pluralize(s string) string { return inflection.Plural(s) }

// Singularize returns the singular form of a plural noun.
func Singularize(s string) string { return inflection.Singular(s) }
