package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/internal/config"
	"github.com/spetersoncode/steward/model"
	"github.com/spetersoncode/steward/pad"
	"github.com/spetersoncode/steward/store"
)

func buildAgentsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the agents available with the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MENTION\tDESCRIPTION")
			for _, name := range append([]string{agent.DefaultAgentName}, a.Agents.Names()...) {
				ag, err := a.Agents.Get(name)
				if err != nil {
					continue
				}
				mention := "@" + name
				if name == agent.DefaultAgentName {
					mention = "(default)"
				}
				fmt.Fprintf(w, "%s\t%s\n", mention, ag.Description)
			}
			return w.Flush()
		},
	}
}

func buildModelsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model catalog and the model chosen for each slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printModels(cmd.OutOrStdout(), cfg)
		},
	}
}

func printModels(out io.Writer, cfg *config.Config) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tNAME\tSLOTS\t$IN/M\t$OUT/M\tCONFIGURED")
	for _, info := range model.Builtin {
		slots := make([]string, len(info.Slots))
		for i, s := range info.Slots {
			slots[i] = string(s)
		}
		configured := "no"
		if cfg.Configured(info.ID.Provider) {
			configured = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n", info.ID, info.DisplayName,
			strings.Join(slots, ","), info.Pricing.InputPerMillion, info.Pricing.OutputPerMillion, configured)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SLOT\tMODEL")
	for _, slot := range ai.Slots {
		id := cfg.Slots[slot]
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\n", slot, id)
	}
	return w.Flush()
}

func buildPadsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "pads",
		Short: "List the pads and how they are selected",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return printPads(cmd.OutOrStdout(), a.Pads)
		},
	}
}

func printPads(out io.Writer, pads pad.Store) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSELECTED BY\tCRITERIA")
	for _, p := range pads.WithGlob() {
		fmt.Fprintf(w, "%s\t%s\tglob\t%s\n", p.ID, p.Title, p.Criteria)
	}
	for _, p := range pads.WithInstruction() {
		fmt.Fprintf(w, "%s\t%s\trouter\t%s\n", p.ID, p.Title, p.Criteria)
	}
	return w.Flush()
}

func buildSessionsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored conversations",
	}
	open := func(cmd *cobra.Command) (*store.Sessions, error) {
		cfg, _, err := g.load(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		adapter, err := store.NewDirAdapter(cfg.SessionsDir)
		if err != nil {
			return nil, err
		}
		return store.NewSessions(adapter), nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := open(cmd)
			if err != nil {
				return err
			}
			records, err := sessions.List(cmd.Context())
			if err != nil {
				return err
			}
			return printSessions(cmd.OutOrStdout(), records)
		},
	}
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := open(cmd)
			if err != nil {
				return err
			}
			rec, err := sessions.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, m := range rec.Session.History {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s\n\n", m.Role, m.Content)
			}
			return nil
		},
	}
	del := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete conversations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := open(cmd)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := sessions.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
			}
			return nil
		},
	}
	cmd.AddCommand(list, show, del)
	return cmd
}

func printSessions(out io.Writer, records []*store.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tUPDATED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", rec.ID, rec.Title, len(rec.Session.History),
			rec.UpdatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
