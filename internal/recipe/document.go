package recipe

import "strings"

// Section headers of a rendered document.
const (
	HeaderURL         = "URL: "
	HeaderName        = "NAME: "
	HeaderIngredients = "INGREDIENTS:"
	HeaderLines       = "LINES:"
)

// DocumentOptions controls document rendering.
type DocumentOptions struct {
	// IncludeLines appends the normalized ingredient lines after the
	// structured ingredients.
	IncludeLines bool
}

// Document renders r as the text that gets embedded:
//
//	URL: <url>
//	NAME: <name>
//	INGREDIENTS:
//	<quantity>,<measure>,<food>
//	...
//
// Every line, including the last, ends in a newline.
func Document(r Recipe, opts DocumentOptions) string {
	var sb strings.Builder
	sb.WriteString(HeaderURL + r.URL + "\n")
	sb.WriteString(HeaderName + r.Name + "\n")
	sb.WriteString(HeaderIngredients + "\n")
	for _, ing := range r.Ingredients {
		sb.WriteString(ing.Line())
		sb.WriteByte('\n')
	}

	if opts.IncludeLines && len(r.Lines) > 0 {
		sb.WriteString(HeaderLines + "\n")
		for _, line := range r.Lines {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
