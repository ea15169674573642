package resolve

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadContractNumbers loads the newline-delimited input list. Blank
// lines and lines starting with '#' are skipped; duplicates collapse to
// their first occurrence and the order of first appearance is kept as
// the canonical processing order.
func ReadContractNumbers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	var numbers []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		numbers = append(numbers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return numbers, nil
}
