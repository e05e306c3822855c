package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptSymbol asks for a trading pair until a non-empty answer is given and returns
// it upper-cased.
func PromptSymbol(in io.Reader, out io.Writer) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Enter a trading pair (e.g. XRPUSDT or BTCUSDT): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read symbol: %w", err)
			}
			return "", fmt.Errorf("read symbol: no input")
		}
		if symbol := strings.ToUpper(strings.TrimSpace(scanner.Text())); symbol != "" {
			return symbol, nil
		}
	}
}
