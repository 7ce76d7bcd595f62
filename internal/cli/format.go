package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"envdrift/internal/checks"
	"envdrift/internal/repair"
)

var (
	// Color functions - fatih/color disables them off-TTY automatically
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println()
	_, _ = headerColor.Printf("▸ %s\n", title)
	fmt.Println()
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(msg string) {
	_, _ = successColor.Printf("✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(msg string) {
	_, _ = warningColor.Printf("⚠ %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	fmt.Println(msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(label, value string) {
	_, _ = labelColor.Printf("  %s: ", label)
	_, _ = dimColor.Println(value)
}

// PrintDim prints a secondary detail line
func PrintDim(msg string) {
	_, _ = dimColor.Printf("  %s\n", msg)
}

// PrintFinding renders one check result with a severity marker.
func PrintFinding(f checks.Finding) {
	switch f.Severity {
	case checks.SeverityPass:
		_, _ = successColor.Print("  ✓ ")
	case checks.SeverityInfo:
		_, _ = infoColor.Print("  ℹ ")
	case checks.SeverityWarning:
		_, _ = warningColor.Print("  ⚠ ")
	case checks.SeverityError:
		_, _ = errorColor.Print("  ✗ ")
	}
	fmt.Printf("%s: %s\n", f.Name, f.Message)
	if f.SuggestedFix != "" && f.Severity != checks.SeverityPass {
		_, _ = dimColor.Printf("      fix: %s\n", f.SuggestedFix)
	}
}

// PrintFindings renders a check run followed by a severity tally.
func PrintFindings(findings []checks.Finding) {
	passes, warnings, errors := 0, 0, 0
	for _, f := range findings {
		PrintFinding(f)
		switch f.Severity {
		case checks.SeverityPass:
			passes++
		case checks.SeverityWarning:
			warnings++
		case checks.SeverityError:
			errors++
		}
	}
	fmt.Println()
	fmt.Printf("  %d passed, %d warnings, %d errors\n", passes, warnings, errors)
}

// PrintAction renders a planned repair step with its safety class.
func PrintAction(i int, a repair.Action) {
	fmt.Printf("  %d. %s\n", i+1, a.Description)
	if a.Safe {
		_, _ = successColor.Print("     [safe] ")
	} else {
		_, _ = warningColor.Print("     [needs review] ")
	}
	_, _ = dimColor.Println(a.Command)
}

// PrintCount prints a count with proper formatting
func PrintCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
