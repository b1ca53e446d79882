package tracker

import "strings"

const importKeyword = "import"

// ExtractImports scans source for `import "<path>"` occurrences and returns
// the quoted paths in order. This is a text-level scan, not a parse: malformed
// input yields a best-effort partial list, and an unmatched closing quote ends
// the scan.
func ExtractImports(source []byte) []string {
	var imports []string

	src := string(source)
	i := 0
	for {
		idx := strings.Index(src[i:], importKeyword)
		if idx < 0 {
			break
		}
		start := i + idx
		j := start + len(importKeyword)

		// The keyword must stand alone: "reimport" or "imports" don't count.
		if start > 0 && isWordChar(src[start-1]) {
			i = j
			continue
		}
		if j < len(src) && isWordChar(src[j]) {
			i = j
			continue
		}

		for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
			j++
		}
		if j >= len(src) || src[j] != '"' {
			i = j
			continue
		}

		end := strings.IndexByte(src[j+1:], '"')
		if end < 0 {
			// Unmatched quote: stop with what we have.
			break
		}
		imports = append(imports, src[j+1:j+1+end])
		i = j + 1 + end + 1
	}
	return imports
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
