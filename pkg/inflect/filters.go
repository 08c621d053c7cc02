package inflect

// Filters is the canonical name → function table the template adapter
// registers as pongo2 filters. Keys match the case-conversion vocabulary
// archetype authors write in templates, e.g. {{ name|pascal_case }}.
var Filters = map[string]func(string) string{
	"camel_case":    Camel,
	"pascal_case":   Pascal,
	"class_case":    Class,
	"cobol_case":    Cobol,
	"constant_case": Constant,
	"directory_case": Directory,
	"kebab_case":    Kebab,
	"package_case":  Package,
	"sentence_case": Sentence,
	"snake_case":    Snake,
	"title_case":    Title,
	"train_case":    Train,
	"upper_case":    Upper,
	"lower_case":    Lower,
	"plural":        Pluralize,
	"singular":      Singularize,
}
