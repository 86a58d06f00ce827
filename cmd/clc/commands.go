package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opal-lang/clc/runtime/cl"
	"github.com/opal-lang/clc/runtime/compiler"
)

func (a *app) compileCmd() *cobra.Command {
	var output, mode string
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Translate a CL script into Python",
		Long:  "Translate a CL script into Python. FILE may be - to read standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			unit, err := compiler.Compile(src,
				compiler.WithFilename(sourceName(args[0])),
				compiler.WithMode(m),
				compiler.WithLogger(a.logger(cmd)))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, unit.Code)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&mode, "mode", string(compiler.ModeProcedure), "Translation mode: proc or single")
	return cmd
}

func (a *app) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the token stream of a CL script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			tokens, err := cl.Tokenize(src)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				fmt.Fprintf(out, "%d\t%s\n", tok.Line, tok)
			}
			return nil
		},
	}
}

func (a *app) treeCmd() *cobra.Command {
	var types bool
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the syntax tree of a CL script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			tree, err := cl.Parse(src)
			if err != nil {
				return err
			}
			if types {
				vars, err := compiler.CollectVariables(tree,
					compiler.WithFilename(sourceName(args[0])),
					compiler.WithLogger(a.logger(cmd)))
				if err != nil {
					return err
				}
				compiler.CheckTypes(tree, vars)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), tree.Dump())
			return err
		},
	}
	cmd.Flags().BoolVar(&types, "types", false, "Annotate expressions with their inferred and required types")
	return cmd
}
