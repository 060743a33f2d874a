package main

import (
	"fmt"

	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/bind"
	"github.com/reoring/formkit/draft"
	"github.com/reoring/formkit/remote"
	"github.com/reoring/formkit/schemafile"
	"github.com/reoring/formkit/session"
	"github.com/spf13/cobra"
)

func (a *app) formsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "forms", Short: "Manage published schemas"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			forms, err := c.ListForms(cmd.Context())
			if err != nil {
				return err
			}
			for _, rf := range forms {
				s := rf.Schema()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d fields\n", s.ID, s.Name, len(s.Fields))
			}
			return nil
		},
	}

	var format string
	get := &cobra.Command{
		Use:   "get ID",
		Short: "Print a schema as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			s, err := c.LoadSchema(cmd.Context(), formkit.SchemaID(args[0]))
			if err != nil {
				return err
			}
			b, err := schemafile.Marshal(s, schemafile.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	get.Flags().StringVarP(&format, "output", "o", "yaml", "yaml or json")

	var id string
	publish := &cobra.Command{
		Use:   "publish FILE",
		Short: "Create a schema from a document, or replace schema --id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schemafile.Load(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			drafts, release, err := a.drafts(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			if id != "" {
				doc.ID = formkit.SchemaID(id)
			}
			s := session.FromSchema(doc, drafts)
			defer s.Close()
			rf, err := s.Save(cmd.Context(), c)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s (%s)\n", rf.ID, draft.KeyFor(rf.ID))
			return nil
		},
	}
	publish.Flags().StringVar(&id, "id", "", "replace this schema instead of creating one")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a schema and its instances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			return c.DeleteForm(cmd.Context(), formkit.SchemaID(args[0]))
		},
	}

	preview := &cobra.Command{
		Use:   "preview ID",
		Short: "Print the editors a schema renders to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			s, err := c.LoadSchema(cmd.Context(), formkit.SchemaID(args[0]))
			if err != nil {
				return err
			}
			for _, e := range bind.Editors(s) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\trequired=%t\t%v\n",
					e.Order, e.Field, e.Kind, e.InputType, e.Required, e.Options)
			}
			return nil
		},
	}

	cmd.AddCommand(list, get, publish, del, preview)
	return cmd
}

func (a *app) instancesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "instances", Short: "Manage data records"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ins, err := c.ListInstances(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ins)
		},
	}

	var formID, dataPath, id string
	submit := &cobra.Command{
		Use:   "submit --form ID --data FILE",
		Short: "Validate a record against its schema and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			s, err := c.LoadSchema(cmd.Context(), formkit.SchemaID(formID))
			if err != nil {
				return err
			}
			raw, err := schemafile.LoadData(dataPath)
			if err != nil {
				return err
			}
			in := remote.Instance{ID: formkit.SchemaID(id), Form: s.ID, Data: raw}
			f, err := bind.Edit(s, in)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			saved, err := f.Submit(cmd.Context(), c)
			if err != nil {
				return reportIssues(cmd.ErrOrStderr(), err)
			}
			return printJSON(cmd.OutOrStdout(), saved)
		},
	}
	submit.Flags().StringVar(&formID, "form", "", "schema id")
	submit.Flags().StringVar(&dataPath, "data", "", "data record (yaml or json)")
	submit.Flags().StringVar(&id, "id", "", "update this instance instead of creating one")
	_ = submit.MarkFlagRequired("form")
	_ = submit.MarkFlagRequired("data")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			return c.DeleteInstance(cmd.Context(), formkit.SchemaID(args[0]))
		},
	}

	cmd.AddCommand(list, submit, del)
	return cmd
}
