// Package batch imports every statement of a directory.
package batch

import (
	"fmt"

	"fjacquet/payrecon/cmd/root"
	"fjacquet/payrecon/internal/fileutils"
	"fjacquet/payrecon/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the batch command.
var Cmd = &cobra.Command{
	Use:   "batch DIR",
	Short: "Batch import statement files from a directory",
	Long: `Batch import every statement file of a directory. Each file is its own
import batch; a file that cannot be read or parsed is reported and the
remaining files are still imported.

Example:
  payrecon batch -t acme statements/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tenant, err := root.RequireTenant()
		if err != nil {
			return err
		}
		dir := args[0]
		if !fileutils.DirectoryExists(dir) {
			return fmt.Errorf("directory not found: %s", dir)
		}
		res, err := root.GetContainer().GetBatch().Import(cmd.Context(), tenant, dir)
		if err != nil {
			return err
		}
		root.GetLogger().Info("Batch import finished",
			logging.F(logging.FieldTenant, tenant),
			logging.F(logging.FieldCount, res.Totals.Files))
		return root.Render(cmd, res)
	},
}
