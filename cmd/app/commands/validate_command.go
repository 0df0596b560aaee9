package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	sandboxService "github.com/parsivoice/pasban/internal/sandbox/service"
)

// RunValidateCommand checks an argument vector against the sandbox execution
// policy and reports the verdict. A rejected command also returns an error so
// the process exit code reflects the result.
func RunValidateCommand(
	validator sandboxService.CommandValidator,
	writer io.Writer,
	argv []string,
	format string,
) error {
	if len(argv) == 0 {
		return fmt.Errorf("no command given, usage: validate-command COMMAND [ARG...]")
	}

	verdictErr := validator.Validate(argv)

	// Output result based on format
	if format == "json" {
		if err := outputVerdictJSON(writer, argv, verdictErr); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerdictText(writer, argv, verdictErr)
	}

	if verdictErr != nil {
		return fmt.Errorf("command rejected: %w", verdictErr)
	}
	return nil
}

// outputVerdictText outputs the verdict in human-readable text format.
func outputVerdictText(writer io.Writer, argv []string, verdictErr error) {
	_, _ = fmt.Fprintf(writer, "Command: %s\n", strings.Join(argv, " "))
	if verdictErr != nil {
		_, _ = fmt.Fprintf(writer, "Verdict: REJECTED ❌\n")
		_, _ = fmt.Fprintf(writer, "Reason: %v\n", verdictErr)
	} else {
		_, _ = fmt.Fprintf(writer, "Verdict: ALLOWED ✓\n")
	}
}

// outputVerdictJSON outputs the verdict in JSON format for machine consumption.
func outputVerdictJSON(writer io.Writer, argv []string, verdictErr error) error {
	result := map[string]interface{}{
		"argv":    argv,
		"allowed": verdictErr == nil,
	}
	if verdictErr != nil {
		result["reason"] = verdictErr.Error()
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
