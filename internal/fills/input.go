package fills

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ResolveInput decides where the fill-number text comes from.
//
// With arguments: a single argument naming an existing file is read as a
// fill list; otherwise the arguments are joined with spaces and treated as
// the input itself. Without arguments the operator is prompted for one
// line on stdin — and if that line names an existing file, the file is
// read instead.
//
// An empty return with nil error means the operator gave no input (EOF or
// a blank line); the caller exits cleanly in that case.
func ResolveInput(args []string, stdin io.Reader, stdout io.Writer) (string, error) {
	if len(args) > 0 {
		if len(args) == 1 && isFile(args[0]) {
			fmt.Fprintf(stdout, "Reading fill numbers from file: %s\n", args[0])
			return readFile(args[0])
		}
		return strings.Join(args, " "), nil
	}

	fmt.Fprintln(stdout, "Enter fill numbers (separated by space or comma),")
	fmt.Fprintln(stdout, "or a filename (e.g. fills.txt):")
	fmt.Fprint(stdout, "> ")

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		// EOF or interrupt before any input; not an error.
		return "", nil
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if isFile(line) {
		fmt.Fprintf(stdout, "Reading fill numbers from file: %s\n", line)
		return readFile(line)
	}
	return line, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	return string(data), nil
}
