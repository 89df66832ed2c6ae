package csvline

import "strings"

// delim is the field separator used across all pipeline artifacts.
const delim = ','

// Parse splits line into fields. A field starting with a double quote
// runs to the next double quote and may contain the delimiter; any stray
// characters between the closing quote and the next delimiter are
// dropped. An unterminated quote is not an error; the raw text up to
// the next delimiter is kept verbatim, opening quote included.
//
// Parse always returns at least one field. An empty line is one empty
// field; callers enforce minimum field counts.
func Parse(line string) []string {
	fields := make([]string, 0, 8)
	i, n := 0, len(line)

	for {
		var field string
		if i < n && line[i] == '"' {
			if j := strings.IndexByte(line[i+1:], '"'); j >= 0 {
				field = line[i+1 : i+1+j]
				i += j + 2
				for i < n && line[i] != delim {
					i++
				}
			} else {
				field = line[i:endOfField(line, i)]
				i = endOfField(line, i)
			}
		} else {
			end := endOfField(line, i)
			field = line[i:end]
			i = end
		}
		fields = append(fields, field)

		if i >= n {
			return fields
		}
		i++ // consume the delimiter; a trailing one yields one more empty field
	}
}

// endOfField returns the index of the next delimiter at or after i,
// or len(line) if there is none.
func endOfField(line string, i int) int {
	if j := strings.IndexByte(line[i:], delim); j >= 0 {
		return i + j
	}
	return len(line)
}
