package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mruput.io/infrastructure/recordsink"
)

func newJournalCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "journal <user-id>",
		Short: "List the records journaled for an employee, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := recordsink.OpenJournal(path)
			if err != nil {
				return err
			}
			defer journal.Close()

			records, err := journal.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			for _, record := range records {
				if err := encoder.Encode(record); err != nil {
					return err
				}
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no records for %s\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "journal", "attendance.db", "sqlite journal path")
	return cmd
}
