package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	convCmd := &cobra.Command{Use: "conversations", Short: "Conversation operations"}

	// create
	var name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			resp, err := newClient().R().
				SetBody(map[string]string{"name": name}).
				Post("/api/conversations")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Conversation name (required)")
	_ = createCmd.MarkFlagRequired("name")
	convCmd.AddCommand(createCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent activity first",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/conversations")
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	convCmd.AddCommand(listCmd)

	// rename
	var newName string
	renameCmd := &cobra.Command{
		Use:   "rename CONVERSATION_ID",
		Short: "Rename a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if newName == "" {
				return fmt.Errorf("--name required")
			}
			resp, err := newClient().R().
				SetBody(map[string]string{"name": newName}).
				Patch("/api/conversations/" + args[0])
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	renameCmd.Flags().StringVarP(&newName, "name", "n", "", "New name (required)")
	_ = renameCmd.MarkFlagRequired("name")
	convCmd.AddCommand(renameCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete CONVERSATION_ID",
		Short: "Delete a conversation and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/conversations/" + args[0])
			if err != nil {
				return err
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	convCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(convCmd)
}
