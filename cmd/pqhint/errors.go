package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/pqhint/service"
)

// printError prints err with its category and recovery suggestions.
func printError(cmd *cobra.Command, err error) {
	categorized := service.NewErrorCategorizer()
	ce := categorized.Categorize(err)

	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	if ce == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s: %s\n", ce.Category, ce.Message)
	fmt.Fprintf(cmd.ErrOrStderr(), "\nSuggestions:\n")
	for _, s := range categorized.GetRecoverySuggestions(ce.Category) {
		fmt.Fprintf(cmd.ErrOrStderr(), "  • %s\n", s)
	}
}
