package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"github.com/collabsql/collabsql/src/assistant"
)

var (
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// printResult renders a translation result for the terminal, highlighting
// generated SQL.
func printResult(result assistant.Result) {
	switch result.Type {
	case assistant.ResultSQL:
		fmt.Println(labelStyle.Render("SQL") + " (" + string(result.QueryType) + ")")
		printSQL(result.Query)
		if result.Explanation != "" {
			fmt.Println(mutedStyle.Render(result.Explanation))
		}
		if result.TargetTable != "" {
			fmt.Println(mutedStyle.Render("table: " + result.TargetTable))
		}
	case assistant.ResultInfo:
		fmt.Println(messageStyle.Render(result.Message))
	case assistant.ResultClarification:
		fmt.Println(labelStyle.Render("Clarification needed"))
		fmt.Println(messageStyle.Render(result.Message))
	case assistant.ResultError:
		fmt.Println(errorStyle.Render("Error: " + result.Message))
		if result.ErrorDetails != "" {
			fmt.Println(mutedStyle.Render(result.ErrorDetails))
		}
	}

	if result.Usage != nil {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("tokens: %d (prompt %d, response %d)",
			result.Usage.TotalTokens, result.Usage.PromptTokens, result.Usage.ResponseTokens)))
	}
}

// printSQL writes the statement with syntax highlighting, falling back to
// plain text when the terminal formatter fails.
func printSQL(sql string) {
	var b strings.Builder
	if err := quick.Highlight(&b, sql, "sql", "terminal256", "monokai"); err != nil {
		fmt.Println(sql)
		return
	}
	fmt.Fprintln(os.Stdout, b.String())
}
