package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// swatchWidth is the number of samples shown per gradient.
const swatchWidth = 32

// gradientsCommand lists the built-in gradients with a color swatch.
func (c *CLI) gradientsCommand() *cobra.Command {
	var regions bool

	cmd := &cobra.Command{
		Use:   "gradients",
		Short: "List color gradients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if regions {
				printRegions()
				return nil
			}
			reg := gradient.Default()
			nameStyle := lipgloss.NewStyle().Width(16)
			for _, name := range reg.Names() {
				g, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Println(nameStyle.Render(name) + " " + swatch(gradient.Swatch(g, swatchWidth)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&regions, "regions", false, "list the start regions instead")
	return cmd
}

func printRegions() {
	for _, name := range viewport.RegionNames() {
		r := viewport.Regions[name]
		printKeyValue(name, r.Description)
		printDetail("x ∈ [%g, %g]  y ∈ [%g, %g]", r.XMin, r.XMax, r.YMin, r.YMax)
	}
}
