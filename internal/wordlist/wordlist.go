// Package wordlist loads user dictionaries of spelling replacements.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// LoadReplacements reads "wrong -> right" pairs, one per line, from path.
// Blank lines and lines starting with '#' are skipped. Keys are lowercased.
func LoadReplacements(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dictionary.
			_ = cerr
		}
	}()

	out := map[string]string{}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wrong, right, ok := strings.Cut(line, "->")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"wrong -> right\"", lineNo)
		}
		wrong = strings.ToLower(strings.TrimSpace(wrong))
		right = strings.TrimSpace(right)
		if !isWord(wrong) || right == "" {
			return nil, fmt.Errorf("line %d: invalid entry %q", lineNo, line)
		}
		out[wrong] = right
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isWord(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '\'' {
			return false
		}
	}
	return true
}
