package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	transports "github.com/GooseXRL8/flowerlove/internal/cmd/client/transports"
)

// NewLoginCommand exchanges credentials for a session token.
func NewLoginCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("username")
			pass, _ := cmd.Flags().GetString("password")
			s, err := transports.NewHTTPTransport(baseURL(), "").Login(cmd.Context(), user, pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "export FLOWERLOVE_TOKEN=%s\n", s.Token)
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Username")
	cmd.Flags().StringP("password", "p", "", "Password")
	return cmd
}

// NewProfileCommand constructs the `profile` command group.
func NewProfileCommand(baseURL BaseURLFunc) *cobra.Command {
	profileCmd := &cobra.Command{Use: "profile", Short: "Profile operations"}
	profileCmd.PersistentFlags().String("token", "", "Session token (default $FLOWERLOVE_TOKEN)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List visible profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, _ := cmd.Flags().GetString("token")
			list, err := apiTransport(baseURL, token).ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range list {
				fmt.Fprintf(out, "%s\t%s\t%s\n", p.ID, p.Name, p.StartDate.Format("2006-01-02"))
			}
			return nil
		},
	}

	counterCmd := &cobra.Command{
		Use:   "counter",
		Short: "Show a profile's counter, optionally following the live stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, _ := cmd.Flags().GetString("token")
			id, _ := cmd.Flags().GetString("id")
			watch, _ := cmd.Flags().GetBool("watch")
			limit, _ := cmd.Flags().GetInt("limit")
			api := apiTransport(baseURL, token)
			out := cmd.OutOrStdout()
			if !watch {
				snap, err := api.Counter(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(out, snap)
			}
			count := 0
			err := api.WatchCounter(cmd.Context(), id, func(snap json.RawMessage) error {
				if _, err := fmt.Fprintf(out, "%s\n", snap); err != nil {
					return err
				}
				if count++; limit > 0 && count >= limit {
					return errLimitReached
				}
				return nil
			})
			if errors.Is(err, errLimitReached) {
				return nil
			}
			return err
		},
	}
	counterCmd.Flags().String("id", "", "Profile ID")
	counterCmd.Flags().Bool("watch", false, "Follow the live counter stream")
	counterCmd.Flags().Int("limit", 0, "With --watch, stop after N snapshots (0 = infinite)")

	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Show a profile's recent activity, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, _ := cmd.Flags().GetString("token")
			id, _ := cmd.Flags().GetString("id")
			limit, _ := cmd.Flags().GetInt("limit")
			items, err := apiTransport(baseURL, token).Activity(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	activityCmd.Flags().String("id", "", "Profile ID")
	activityCmd.Flags().Int("limit", 20, "Maximum entries")

	profileCmd.AddCommand(listCmd, counterCmd, activityCmd)
	return profileCmd
}

// NewMemoryCommand constructs the `memory` command group.
func NewMemoryCommand(baseURL BaseURLFunc) *cobra.Command {
	memoryCmd := &cobra.Command{Use: "memory", Short: "Memory operations"}
	memoryCmd.PersistentFlags().String("token", "", "Session token (default $FLOWERLOVE_TOKEN)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a profile's memories, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, _ := cmd.Flags().GetString("token")
			id, _ := cmd.Flags().GetString("profile")
			filter, _ := cmd.Flags().GetString("filter")
			favs, _ := cmd.Flags().GetBool("favorites")
			list, err := apiTransport(baseURL, token).ListMemories(cmd.Context(), transports.MemoryQuery{
				ProfileID:     id,
				Filter:        filter,
				FavoritesOnly: favs,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	listCmd.Flags().String("profile", "", "Profile ID")
	listCmd.Flags().String("filter", "", `CEL filter over memory, e.g. 'memory.year == 2024'`)
	listCmd.Flags().Bool("favorites", false, "Only favourites")

	memoryCmd.AddCommand(listCmd)
	return memoryCmd
}

// NewHealthCommand checks the server over the gRPC health service.
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health over gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, _ := cmd.Flags().GetString("service")
			status, err := transports.NewGrpcTransport(dialGRPCContext).Check(cmd.Context(), service)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status:", status)
			return nil
		},
	}
	cmd.Flags().String("service", "", "Health service name (empty for overall)")
	return cmd
}

var errLimitReached = errors.New("limit reached")
