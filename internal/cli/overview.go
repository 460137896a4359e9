package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aurelion/internal/files"
)

// NewOverviewCommand creates the overview command.
func NewOverviewCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show the project directories and dataset files",
		Long: `Show which dataset files are configured, whether they exist and
how fresh they are, plus the state of the output directories.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOverview(rootOpts)
		},
	}
}

func showOverview(opts *RootOptions) error {
	app, err := setup(opts, false)
	if err != nil {
		return err
	}

	fmt.Println("Datasets:")
	datasets := []struct {
		table string
		file  string
	}{
		{"products", app.cfg.Datasets.Products},
		{"clients", app.cfg.Datasets.Clients},
		{"sales", app.cfg.Datasets.Sales},
		{"sale_lines", app.cfg.Datasets.SaleLines},
	}
	for _, d := range datasets {
		status := files.InspectDataset(d.table, app.paths.GetDataPath(d.file))
		if !status.Exists {
			fmt.Printf("  %-11s %-24s MISSING\n", d.table, d.file)
			continue
		}
		fmt.Printf("  %-11s %-24s %8s  %s\n",
			d.table, d.file,
			files.FormatBytes(status.Size),
			status.ModTime.Format("2006-01-02 15:04"))
	}

	fmt.Println("Directories:")
	dirs := []struct {
		name string
		path string
	}{
		{"data", app.paths.DataDir},
		{"clean", app.paths.CleanDir},
		{"export", app.paths.ExportDir},
		{"docs", app.paths.DocsDir},
		{"logs", app.paths.LogsDir},
	}
	for _, d := range dirs {
		status := files.InspectDir(d.name, d.path)
		if !status.Exists {
			fmt.Printf("  %-7s %-32s (not created)\n", d.name, d.path)
			continue
		}
		fmt.Printf("  %-7s %-32s %d files\n", d.name, d.path, status.FileCount)
	}

	return nil
}
