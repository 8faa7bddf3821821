package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded reasoning-service calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := eventFilter(cmd)
		if err != nil {
			return err
		}
		opts.Limit, _ = cmd.Flags().GetInt("limit")

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		events, err := db.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		return writeEvents(cmd.OutOrStdout(), events)
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		e, err := db.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := eventFilter(cmd)
		if err != nil {
			return err
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := db.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		byModel, err := repo.LLMUsageByModel(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		return writeStats(cmd.OutOrStdout(), byPurpose, byModel)
	},
}

// eventFilter reads the --purpose, --session and --since flags shared by
// list and stats.
func eventFilter(cmd *cobra.Command) (store.QueryOpts, error) {
	var opts store.QueryOpts
	opts.Purpose, _ = cmd.Flags().GetString("purpose")
	opts.SessionID, _ = cmd.Flags().GetString("session")
	since, _ := cmd.Flags().GetDuration("since")
	if since < 0 {
		return opts, fmt.Errorf("--since must be positive")
	}
	if since > 0 {
		opts.From = time.Now().Add(-since)
	}
	return opts, nil
}

func writeEvents(w io.Writer, events []store.LLMRequestEventRecord) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No LLM events found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTime\tPurpose\tSession\tModel\tIn\tOut\tMs\tOK")
	for _, e := range events {
		ok := "✓"
		if !e.Success {
			ok = "✗"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose, truncate(e.SessionID, 8),
			truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
	}
	return tw.Flush()
}

func writeEvent(w io.Writer, e *store.LLMRequestEventRecord) {
	field := func(label, value string) { fmt.Fprintf(w, "%-10s %s\n", label+":", value) }
	field("ID", strconv.Itoa(e.ID))
	field("Time", e.Timestamp.Local().Format(timeLayout))
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	if e.SessionID != "" {
		field("Session", e.SessionID)
	}
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	field("Success", strconv.FormatBool(e.Success))
	if e.ErrorMessage != "" {
		field("Error", e.ErrorMessage)
	}

	for _, part := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", e.ResponseBody},
	} {
		rule := strings.Repeat("─", 60)
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, part.title, rule)
		if part.body == "" {
			fmt.Fprintln(w, "(not captured)")
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

// modelCost is one priced row of the cost table. Known is false for models
// with no pricing entry.
type modelCost struct {
	store.LLMModelUsage
	USD   float64
	Known bool
}

// priceModels prices each model's usage and returns the total over the
// models that have pricing.
func priceModels(usage []store.LLMModelUsage) ([]modelCost, float64) {
	rows := make([]modelCost, 0, len(usage))
	var total float64
	for _, u := range usage {
		row := modelCost{LLMModelUsage: u}
		if c := llm.LookupCost(u.Model); c != nil {
			row.USD, row.Known = c.Cost(u.InputTokens, u.OutputTokens), true
			total += row.USD
		}
		rows = append(rows, row)
	}
	return rows, total
}

func writeStats(w io.Writer, byPurpose []store.LLMUsageStats, byModel []store.LLMModelUsage) error {
	if len(byPurpose) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Purpose\tCalls\tInput\tOutput\tTotal\tAvg Ms\t")
	var calls, in, out int
	for _, st := range byPurpose {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t\n",
			st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
		calls += st.Calls
		in += st.InputTokens
		out += st.OutputTokens
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\t%d\t\t\n", calls, in, out, in+out)
	if err := tw.Flush(); err != nil {
		return err
	}

	rows, total := priceModels(byModel)
	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nEstimated cost (USD)")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Model\tCalls\tInput\tOutput\tCost\t")
	var unknown []string
	for _, r := range rows {
		cost := "?"
		if r.Known {
			cost = formatCost(r.USD)
		} else {
			unknown = append(unknown, r.Model)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t\n", truncate(r.Model, 32), r.Calls, r.InputTokens, r.OutputTokens, cost)
	}
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(tw, "%s\t\t\t\t%s\t\n", label, formatCost(total))
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
	return nil
}

// openDB opens the SQLite database holding the event log.
func openDB(cmd *cobra.Command) (*store.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	for _, c := range []*cobra.Command{llmListCmd, llmStatsCmd} {
		c.Flags().StringP("purpose", "p", "", "Only calls with this purpose (e.g. teaching, answer_evaluation)")
		c.Flags().StringP("session", "s", "", "Only calls made for this session id")
		c.Flags().Duration("since", 0, "Only calls newer than this (e.g. 24h)")
	}
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
