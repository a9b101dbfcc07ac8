package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Farouk858/product-radar/brands"
	"github.com/Farouk858/product-radar/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	brandsAddCmd.Flags().StringSlice("alt", nil, "alternate collection path, repeatable (e.g. /collections/new-arrivals)")
	brandsCmd.AddCommand(brandsAddCmd, brandsRemoveCmd, brandsListCmd)
	rootCmd.AddCommand(brandsCmd)
}

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "Edit the tracked brand list.",
}

var brandsAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a brand, or update the URL of an existing one.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := readBrandList(cfg.Paths.Brands)
		if err != nil {
			return err
		}
		alts, _ := cmd.Flags().GetStringSlice("alt")

		name, url := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
		if name == "" || url == "" {
			return errors.New("add requires a name and a url")
		}

		list, added := brands.Upsert(list, name, url)
		if len(alts) > 0 {
			i := brands.Index(list, name)
			list[i].Alts = nil
			for _, p := range alts {
				list[i].Alts = append(list[i].Alts, models.Alt{Path: p})
			}
		}
		if err := brands.Save(cfg.Paths.Brands, list); err != nil {
			return err
		}

		verb := "Updated"
		if added {
			verb = "Added"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", verb, name, url)
		return nil
	},
}

var brandsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a brand by name (case-insensitive).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := readBrandList(cfg.Paths.Brands)
		if err != nil {
			return err
		}

		name := args[0]
		list, removed := brands.Remove(list, name)
		if !removed {
			msg := fmt.Sprintf("%s not found ~ nothing to remove", name)
			if suggestion, ok := brands.Suggest(list, name); ok {
				msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
		if err := brands.Save(cfg.Paths.Brands, list); err != nil {
			return err
		}
		if removed {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
		}
		return nil
	},
}

var brandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked brands with their effective alternate paths.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := brands.Load(cfg.Paths.Brands)
		if err != nil {
			return err
		}
		brands.Sort(list)

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Brand", "URL", "Alternate paths"})
		for _, b := range list {
			paths := make([]string, 0, len(b.Alts))
			for _, a := range b.Alts {
				paths = append(paths, a.Path)
			}
			t.AppendRow(table.Row{b.Name, b.URL, strings.Join(paths, "\n")})
		}
		t.Render()
		return nil
	},
}

// readBrandList reads the list for editing. A missing file starts empty.
func readBrandList(path string) ([]models.BrandConfig, error) {
	list, err := brands.Read(path)
	if errors.Is(err, brands.ErrNotFound) {
		return nil, nil
	}
	return list, err
}
