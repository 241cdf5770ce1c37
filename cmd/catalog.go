package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spigell/career-navigator/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [id]",
	Short: "List career paths or show the roadmap of one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := catalog.Default()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return printCatalog(os.Stdout, c)
		}

		path, ok := c.ByID(args[0])
		if !ok {
			return fmt.Errorf("unknown career path %q (known: %s)", args[0], strings.Join(c.IDs(), ", "))
		}
		printRoadmap(os.Stdout, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func printCatalog(w io.Writer, c *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTRACK\tDIFFICULTY\tSALARY\tGROWTH")
	for _, path := range c.Paths() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", path.ID, path.Title, path.Track, path.Difficulty, path.Salary, path.Growth)
	}
	return tw.Flush()
}

func printRoadmap(w io.Writer, path catalog.CareerPath) {
	fmt.Fprintf(w, "%s (%s, %s)\n", path.Title, path.Difficulty, path.Salary)
	fmt.Fprintf(w, "%s\n", path.Description)
	for i, phase := range path.Roadmap {
		fmt.Fprintf(w, "\n%d. %s [%s]\n", i+1, phase.Name, phase.Duration)
		fmt.Fprintf(w, "   skills: %s\n", strings.Join(phase.Skills, ", "))
		for _, project := range phase.Projects {
			fmt.Fprintf(w, "   - %s\n", project)
		}
	}
	fmt.Fprintln(w)
}
