package deploy

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

/**
 * Ask the operator to confirm a destructive operation
 * @param {string} warning - What is about to be destroyed
 * @returns {bool} True only on an explicit interactive "y"/"yes"
 * @description
 * - Non-interactive invocations are refused rather than guessed: a pipeline
 *   must not silently wipe data volumes
 */
func confirmDestruction(warning string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("Refusing destructive operation: stdin is not a terminal")
		return false
	}

	fmt.Printf("WARNING: %s\n", warning)
	fmt.Print("Continue? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
