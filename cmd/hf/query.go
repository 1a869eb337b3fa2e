package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/hfabric"
	"github.com/hupe1980/hfabric/lexical"
	"github.com/hupe1980/hfabric/model"
	"github.com/spf13/cobra"
)

func inspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the package manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				return writeJSON(cmd.OutOrStdout(), hf.Meta())
			})
		},
	}
}

func verifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Decode and checksum every structure of the package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				if err := hf.Warm(ctx); err != nil {
					return err
				}
				m := hf.Meta()
				fmt.Fprintf(cmd.OutOrStdout(), "ok %s@%s: %d nodes, %d collections, %d features\n",
					m.Name, m.Version, hf.Len(), len(hf.Collections()), len(m.Features))
				return nil
			})
		},
	}
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID...",
		Short: "Look up hadiths by identifier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				if len(args) == 1 {
					rec, err := hf.Get(ctx, args[0])
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				recs, err := hf.GetMany(ctx, args)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), recs)
			})
		},
	}
}

func searchCmd(a *app) *cobra.Command {
	var (
		lang, mode string
		limit      int
		terms      bool
	)
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Full-text search over Arabic and/or English text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mm, err := lexical.ParseMatchMode(mode)
			if err != nil {
				return err
			}
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				if terms {
					m, err := hf.Lookup(ctx, args[0], model.Language(lang),
						hfabric.WithLimit(limit), hfabric.WithMatchMode(mm))
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), m)
				}
				hits, err := hf.Search(ctx, args[0], model.Language(lang),
					hfabric.WithLimit(limit), hfabric.WithMatchMode(mm))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), hits)
			})
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", string(model.Both), "Language (arabic, english, both)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "exact", "Term matching (exact, prefix, substring)")
	cmd.Flags().IntVarP(&limit, "limit", "n", hfabric.DefaultSearchLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&terms, "terms", false, "Print the matched vocabulary terms and record ids instead of ranked hits")
	return cmd
}

func similarCmd(a *app) *cobra.Command {
	var topk int
	cmd := &cobra.Command{
		Use:   "similar ID",
		Short: "Find the hadiths most similar to ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				hits, err := hf.Similar(ctx, args[0], hfabric.WithTopK(topk))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), hits)
			})
		},
	}
	cmd.Flags().IntVarP(&topk, "topk", "k", hfabric.DefaultTopK, "Number of neighbours")
	return cmd
}

func featureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "feature NAME ID",
		Short: "Print a feature value of a hadith",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				v, ok, err := hf.Feature(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					v = nil
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"feature": args[0], "id": args[1], "value": v})
			})
		},
	}
}

func chainCmd(a *app) *cobra.Command {
	var edges bool
	cmd := &cobra.Command{
		Use:   "chain ID",
		Short: "Print the narrator chain of a hadith",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				if edges {
					e, err := hf.Edges(ctx, args[0])
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), e)
				}
				chain, err := hf.Chain(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), chain)
			})
		},
	}
	cmd.Flags().BoolVar(&edges, "edges", false, "Print the transmission edges instead of the narrators")
	return cmd
}

func rawiCmd(a *app) *cobra.Command {
	var relation string
	cmd := &cobra.Command{
		Use:   "rawi NAME",
		Short: "Look up a narrator and its relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				var (
					v   any
					err error
				)
				switch relation {
				case "":
					v, err = hf.Rawi(ctx, args[0])
				case "students":
					v, err = hf.Students(ctx, args[0])
				case "transmitters":
					v, err = hf.Transmitters(ctx, args[0])
				case "co-occurring":
					v, err = hf.CoOccurring(ctx, args[0])
				default:
					return fmt.Errorf("%w: unknown relation %q", hfabric.ErrInvalidArgument, relation)
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), v)
			})
		},
	}
	cmd.Flags().StringVarP(&relation, "relation", "r", "", "Relation to list (students, transmitters, co-occurring)")
	return cmd
}

func pathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path FROM TO",
		Short: "Shortest transmission path between two narrators",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withHF(cmd, func(ctx context.Context, hf *hfabric.HF) error {
				p, err := hf.Path(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), p)
			})
		},
	}
}
