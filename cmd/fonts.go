package cmd

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/memecap/internal/fonts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "Inspect the caption font catalog",
}

var fontsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog fonts in selection order",
	Args:  cobra.NoArgs,
	RunE:  runFontsList,
}

var fontsSelectCmd = &cobra.Command{
	Use:   "select <text>...",
	Short: "Show which font a caption would use",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFontsSelect,
}

func init() {
	fontsCmd.AddCommand(fontsListCmd, fontsSelectCmd)
	rootCmd.AddCommand(fontsCmd)
}

func loadCatalog() (*fonts.Catalog, error) {
	log := newLogger()
	c := fonts.NewCatalog(viper.GetString("fonts_dir"), log.Named("fonts"))
	if err := c.Ready(); err != nil {
		return nil, fmt.Errorf("font catalog: %w", err)
	}
	return c, nil
}

func runFontsList(_ *cobra.Command, _ []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	list, _ := c.Fonts()

	fmt.Println()
	fmt.Printf("  %-4s %-36s %-24s %s\n", "#", "File", "Family", "Code points")
	for i, f := range list {
		fmt.Printf("  %-4d %-36s %-24s %d\n", i+1, truncKey(f.Name, 36), truncKey(f.Family, 24), f.Coverage.Len())
	}
	fmt.Println()
	return nil
}

func runFontsSelect(_ *cobra.Command, args []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	text := strings.Join(args, " ")
	f, err := c.Select(text)
	if err != nil {
		return err
	}

	fmt.Printf("  Font:     %s\n", f.Name)
	if f.Family != "" {
		fmt.Printf("  Family:   %s\n", f.Family)
	}
	if !f.Coverage.ContainsAll(fonts.CollapseSpace(text)) {
		var missing []string
		for _, r := range fonts.CollapseSpace(text) {
			if !f.Coverage.Has(uint32(r)) {
				missing = append(missing, fmt.Sprintf("U+%04X", r))
			}
		}
		fmt.Printf("  Missing:  %s (no font covers the whole text)\n", strings.Join(missing, " "))
	}
	return nil
}
