package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and moderate application users",
		PersistentPreRunE: sessionRequired,
	}

	var page, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			result, err := a.svc.Users.List(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(a.out(cmd), result)
			}
			printUsers(a.out(cmd), result)
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&limit, "limit", 10, "Users per page")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			user, err := a.svc.Users.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(a.out(cmd), user)
			}
			printUser(a.out(cmd), user)
			return nil
		},
	}

	block := &cobra.Command{
		Use:   "block <id>",
		Short: "Toggle the admin block on a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			user, err := a.svc.Users.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			blocked, err := a.svc.Users.ToggleAdminBlock(cmd.Context(), user.ID, user.HasAdminBlocked)
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(a.out(cmd), map[string]any{"id": user.ID, "hasAdminBlocked": blocked})
			}
			verb := "unblocked"
			if blocked {
				verb = "blocked"
			}
			success(a.out(cmd), "%s has been %s", user.Name, verb)
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			if err := a.svc.Users.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(a.out(cmd), "User %s deleted", args[0])
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")

	cmd.AddCommand(list, get, block, del)
	return cmd
}
