package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Validate is the local pre-flight check run before every compile. It
// requires the document skeleton, equal \begin/\end counts per environment
// and balanced braces. Escaped characters and comments are ignored.
func Validate(markup string) error {
	if strings.TrimSpace(markup) == "" {
		return &StructureError{Reason: "document is empty"}
	}
	for _, required := range []string{`\documentclass`, `\begin{document}`, `\end{document}`} {
		if !strings.Contains(markup, required) {
			return &StructureError{Reason: "missing " + required}
		}
	}

	begins := map[string]int{}
	ends := map[string]int{}
	depth := 0
	line := 1

	for i := 0; i < len(markup); i++ {
		switch markup[i] {
		case '\n':
			line++
		case '%':
			for i+1 < len(markup) && markup[i+1] != '\n' {
				i++
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return &StructureError{Reason: fmt.Sprintf("unexpected } on line %d", line)}
			}
		case '\\':
			if i+1 >= len(markup) {
				continue
			}
			if !isLetter(markup[i+1]) {
				if markup[i+1] == '\n' {
					line++
				}
				i++
				continue
			}
			j := i + 1
			for j < len(markup) && isLetter(markup[j]) {
				j++
			}
			cmd := markup[i+1 : j]
			if (cmd == "begin" || cmd == "end") && j < len(markup) && markup[j] == '{' {
				if k := strings.IndexByte(markup[j+1:], '}'); k >= 0 {
					env := markup[j+1 : j+1+k]
					if cmd == "begin" {
						begins[env]++
					} else {
						ends[env]++
					}
				}
			}
			// Resume at the last letter; braces after the command are counted normally.
			i = j - 1
		}
	}

	if depth != 0 {
		return &StructureError{Reason: fmt.Sprintf("%d unclosed {", depth)}
	}

	envs := make([]string, 0, len(begins)+len(ends))
	for env := range begins {
		envs = append(envs, env)
	}
	for env := range ends {
		if _, ok := begins[env]; !ok {
			envs = append(envs, env)
		}
	}
	sort.Strings(envs)
	for _, env := range envs {
		if begins[env] != ends[env] {
			return &StructureError{Reason: fmt.Sprintf(
				"environment %q opened %d times, closed %d times", env, begins[env], ends[env])}
		}
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
