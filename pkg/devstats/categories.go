package devstats

var extensionCategories = buildCategories(map[string][]string{
	CategoryCode: {
		".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".c", ".cpp", ".h", ".hpp",
		".cs", ".go", ".rb", ".php", ".scala", ".swift", ".kt", ".rs", ".dart",
	},
	CategoryMarkup: {".html", ".xml", ".md", ".rst", ".adoc", ".tex"},
	CategoryStyle:  {".css", ".scss", ".sass", ".less", ".styl"},
	CategoryConfig: {".json", ".yaml", ".yml", ".toml", ".ini", ".config", ".conf"},
})

func buildCategories(groups map[string][]string) map[string]string {
	out := make(map[string]string)

	for category, exts := range groups {
		for _, ext := range exts {
			out[ext] = category
		}
	}

	return out
}

// Categorize maps a lower-cased extension to its file category.
func Categorize(ext string) string {
	if category, ok := extensionCategories[ext]; ok {
		return category
	}

	return CategoryOther
}
