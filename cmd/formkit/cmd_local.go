package main

import (
	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/schemafile"
	"github.com/spf13/cobra"
)

func (a *app) lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE",
		Short: "Validate a schema document and print its publish payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schemafile.Load(args[0])
			if err != nil {
				return err
			}
			payload, err := formkit.ValidateSchema(s)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			return printJSON(cmd.OutOrStdout(), payload)
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	var schemaPath, dataPath string
	var strict, failFast bool
	cmd := &cobra.Command{
		Use:   "check --schema FILE --data FILE",
		Short: "Validate a data record against a schema document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := schemafile.Load(schemaPath)
			if err != nil {
				return err
			}
			raw, err := schemafile.LoadData(dataPath)
			if err != nil {
				return err
			}
			rec, err := formkit.DecodeRecord(s, raw)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			opt := formkit.ValidateOpt{FailFast: failFast}
			if strict {
				opt.Unknown = formkit.UnknownStrict
			}
			out, err := formkit.ValidateInstance(s, rec, opt)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "schema document (yaml or json)")
	cmd.Flags().StringVar(&dataPath, "data", "", "data record (yaml or json)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject keys that have no field")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func (a *app) jsonSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema FILE",
		Short: "Print the JSON Schema describing records of a schema document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schemafile.Load(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s.JSONSchema())
		},
	}
}
