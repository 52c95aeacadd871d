package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewEventsCommand constructs the `events` command group and subcommands.
func NewEventsCommand(baseURL BaseURLFunc) *cobra.Command {
	eventsCmd := &cobra.Command{Use: "events", Short: "Event operations"}

	eventsCmd.PersistentFlags().String("token", "", "Auth token (default: PULSE_TOKEN or local store)")

	eventsCmd.AddCommand(
		newEventsPublishCommand(baseURL),
		newEventsListCommand(baseURL),
		newEventsStatsCommand(baseURL),
		newEventsTailCommand(baseURL),
	)

	return eventsCmd
}

// newEventsPublishCommand constructs the `events publish` subcommand.
func newEventsPublishCommand(baseURL BaseURLFunc) *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish an event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			typ, _ := cmd.Flags().GetString("type")
			jobID, _ := cmd.Flags().GetString("job-id")
			data, _ := cmd.Flags().GetString("data")
			if typ == "" {
				return fmt.Errorf("--type is required")
			}
			if data == "" {
				data = "{}"
			}
			if !json.Valid([]byte(data)) {
				return fmt.Errorf("--data must be valid JSON")
			}

			body := map[string]any{"type": typ, "payload": json.RawMessage(data)}
			if jobID != "" {
				body["job_id"] = jobID
			}
			buf, err := json.Marshal(body)
			if err != nil {
				return err
			}

			var resp struct {
				Sequence  uint64 `json:"sequence"`
				Delivered int    `json:"delivered"`
			}
			if err := doJSON(cmd.Context(), http.MethodPost, baseURL()+"/v1/events/publish", resolveToken(cmd), strings.NewReader(string(buf)), &resp); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(resp)
		},
	}
	publishCmd.Flags().String("type", "", "Event type (required)")
	publishCmd.Flags().String("job-id", "", "Job ID")
	publishCmd.Flags().String("data", "{}", "Payload JSON")
	return publishCmd
}

// newEventsListCommand constructs the `events list` subcommand.
func newEventsListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			after, _ := cmd.Flags().GetUint64("after")
			jobID, _ := cmd.Flags().GetString("job-id")
			limit, _ := cmd.Flags().GetInt("limit")

			q := url.Values{}
			q.Set("after", strconv.FormatUint(after, 10))
			if jobID != "" {
				q.Set("job_id", jobID)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			var resp struct {
				Events       []json.RawMessage `json:"events"`
				LastSequence uint64            `json:"last_sequence"`
			}
			if err := doJSON(cmd.Context(), http.MethodGet, baseURL()+"/v1/events?"+q.Encode(), resolveToken(cmd), nil, &resp); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	listCmd.Flags().Uint64("after", 0, "Return events after this sequence")
	listCmd.Flags().String("job-id", "", "Filter by job ID")
	listCmd.Flags().Int("limit", 100, "Max events to return")
	return listCmd
}

// newEventsStatsCommand constructs the `events stats` subcommand.
func newEventsStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show broadcaster stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp json.RawMessage
			if err := doJSON(cmd.Context(), http.MethodGet, baseURL()+"/v1/events/stats", resolveToken(cmd), nil, &resp); err != nil {
				return err
			}
			var pretty map[string]any
			if err := json.Unmarshal(resp, &pretty); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		},
	}
	return statsCmd
}

// errTailDone stops the SSE read loop once --limit is reached.
var errTailDone = errors.New("tail done")

// newEventsTailCommand constructs the `events tail` subcommand.
func newEventsTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail the live event stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jobID, _ := cmd.Flags().GetString("job-id")
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")
			replay := cmd.Flags().Changed("after")
			after, _ := cmd.Flags().GetUint64("after")

			q := url.Values{}
			if replay {
				q.Set("after", strconv.FormatUint(after, 10))
			}
			if jobID != "" {
				q.Set("job_id", jobID)
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			u := baseURL() + "/v1/events/subscribe"
			if len(q) > 0 {
				u += "?" + q.Encode()
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "text/event-stream")
			if token := resolveToken(cmd); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode >= 300 {
				return apiError(resp)
			}

			out := cmd.OutOrStdout()
			seen := 0
			err = readSSE(resp.Body, func(ev sseEvent) error {
				_, _ = fmt.Fprintln(out, ev.Data)
				seen++
				if limit > 0 && seen >= limit {
					return errTailDone
				}
				return nil
			})
			if errors.Is(err, errTailDone) {
				return nil
			}
			return err
		},
	}
	tailCmd.Flags().Uint64("after", 0, "Replay events after this sequence before tailing")
	tailCmd.Flags().String("job-id", "", "Filter by job ID")
	tailCmd.Flags().String("filter", "", "CEL filter (server-side)")
	tailCmd.Flags().Int("limit", 0, "Stop after N events (0 = infinite)")
	return tailCmd
}
