package main

import (
	"fmt"
	"os"

	"fjacquet/cleemy-report/cmd/labels"
	"fjacquet/cleemy-report/cmd/report"
	"fjacquet/cleemy-report/cmd/root"
	"fjacquet/cleemy-report/cmd/validate"
	"fjacquet/cleemy-report/cmd/view"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(view.Commands()...)
	root.Cmd.AddCommand(validate.Cmd)
	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(labels.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
