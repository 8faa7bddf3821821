package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/buddy/internal/session"
	"github.com/abhisek/buddy/internal/store"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored tutoring sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		student, _ := cmd.Flags().GetString("student")
		status, _ := cmd.Flags().GetString("status")

		b, err := backendFor(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		list, err := b.sessions.List(cmd.Context(), store.ListFilter{
			StudentID: student,
			Status:    session.Status(status),
			Limit:     limit,
		})
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Printf("%-36s  %-12s  %-20s  %-16s  %-9s  %7s  %5s  %s\n",
			"ID", "Student", "Chapter", "Phase", "Status", "Concepts", "XP", "Updated")
		fmt.Println(strings.Repeat("─", 130))
		for _, s := range list {
			fmt.Printf("%-36s  %-12s  %-20s  %-16s  %-9s  %4d/%-3d  %5d  %s\n",
				s.SessionID,
				truncate(s.StudentName, 12),
				truncate(s.Chapter, 20),
				s.Phase,
				s.Status,
				s.ConceptsMastered, s.ConceptsTotal,
				s.XPEarned,
				s.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
			)
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the full session record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := backendFor(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		s, err := b.sessions.Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("session %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := backendFor(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		ok, err := b.sessions.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if !ok {
			return fmt.Errorf("session %s not found", args[0])
		}
		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

func backendFor(cmd *cobra.Command) (*backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openBackend(cmd.Context(), cfg)
}

func init() {
	sessionListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	sessionListCmd.Flags().StringP("student", "s", "", "Only sessions of this student id")
	sessionListCmd.Flags().String("status", "", "Only sessions in this status (active, paused, completed)")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
}
