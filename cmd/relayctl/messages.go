package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	msgCmd := &cobra.Command{Use: "messages", Short: "Message operations"}

	// send
	var text string
	sendCmd := &cobra.Command{
		Use:   "send CONVERSATION_ID",
		Short: "Send a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				return fmt.Errorf("--text required")
			}
			resp, err := newClient().R().
				SetBody(map[string]string{"text": text}).
				Post(fmt.Sprintf("/api/conversations/%s/messages", args[0]))
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
	sendCmd.Flags().StringVarP(&text, "text", "t", "", "Message text (required)")
	_ = sendCmd.MarkFlagRequired("text")
	msgCmd.AddCommand(sendCmd)

	// fetch
	var since string
	fetchCmd := &cobra.Command{
		Use:   "fetch CONVERSATION_ID",
		Short: "Fetch the newest page of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R()
			if since != "" {
				req.SetQueryParam("since", since)
			}
			resp, err := req.Get(fmt.Sprintf("/api/conversations/%s/messages", args[0]))
			if err != nil {
				return err
			}
			if resp.StatusCode() == 304 {
				_, _ = fmt.Fprintln(os.Stdout, "not modified")
				return nil
			}
			if err := checkStatus(resp); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, resp.String())
			return nil
		},
	}
	fetchCmd.Flags().StringVarP(&since, "since", "s", "", "RFC 3339 freshness marker")
	msgCmd.AddCommand(fetchCmd)

	rootCmd.AddCommand(msgCmd)
}
