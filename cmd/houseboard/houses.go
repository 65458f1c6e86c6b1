package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dukerupert/houseboard/internal/config"
	"github.com/dukerupert/houseboard/internal/house"
	"github.com/dukerupert/houseboard/internal/model"
	"github.com/dukerupert/houseboard/internal/wizardworld"
)

func newHousesCmd() *cobra.Command {
	var (
		search      string
		traitSearch string
	)

	cmd := &cobra.Command{
		Use:   "houses",
		Short: "Fetch the houses once and print them as cards",
		Example: `  houseboard houses
  houseboard houses --search raven --traits wit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			houses, err := wizardworld.NewClient(cfg.UpstreamURL).FetchHouses(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching houses: %w", err)
			}

			out := cmd.OutOrStdout()
			styled := false
			if f, ok := out.(*os.File); ok {
				styled = term.IsTerminal(int(f.Fd()))
			}

			filtered := house.FilterByName(houses, search)
			if len(filtered) == 0 {
				fmt.Fprintln(out, "No houses match.")
				return nil
			}
			for i, h := range filtered {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printCard(out, h, traitSearch, styled)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show houses whose name contains this text")
	cmd.Flags().StringVarP(&traitSearch, "traits", "t", "", "Only show traits containing this text")
	return cmd
}

func printCard(w io.Writer, h model.House, traitSearch string, styled bool) {
	name := h.Name
	if styled {
		name = "\x1b[1m" + name + "\x1b[0m"
	}
	fmt.Fprintf(w, "%s (%s)\n", name, h.Animal)
	fmt.Fprintf(w, "  Founder:  %s\n", h.Founder)
	fmt.Fprintf(w, "  Colours:  %s\n", house.Gradient(h.Colors))

	traits := house.FilterTraits(h.Traits, traitSearch)
	names := make([]string, 0, len(traits))
	for _, t := range traits {
		names = append(names, t.Name)
	}
	fmt.Fprintf(w, "  Traits:   %s\n", strings.Join(names, ", "))
}
