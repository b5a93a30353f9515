package cli

import (
	"fmt"

	"github.com/kitchenops/backend/internal/infrastructure/config"
	"github.com/kitchenops/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a JSON export into the analytics database",
		Long: `import upserts the sales events, menus and recipes of an export. With --sqlite
the file is created and its tables migrated on the fly; otherwise the
PostgreSQL database from the config file is used and must already be migrated.`,
		Example: `  kitchenctl import --data export.json --sqlite analytics.db
  kitchenctl import --data export.json --config /etc/kitchenops/config.toml`,
	}
	cmd.Flags().String("data", "", "path to the JSON export {sales, menus, recipes}")
	cmd.Flags().String("sqlite", "", "write to this SQLite file instead of PostgreSQL")
	v := bindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		path := v.GetString("data")
		if path == "" {
			return fmt.Errorf("--data is required")
		}
		export, err := persistence.LoadCatalogExportFile(path)
		if err != nil {
			return err
		}

		db, err := openDatabase(configPath(cmd), v.GetString("sqlite"))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		repo := persistence.NewGormCatalogRepository(db.DB)
		if err := repo.SaveRecipes(ctx, export.Recipes); err != nil {
			return fmt.Errorf("import recipes: %w", err)
		}
		if err := repo.SaveMenus(ctx, export.Menus); err != nil {
			return fmt.Errorf("import menus: %w", err)
		}
		if err := repo.SaveEvents(ctx, export.Sales); err != nil {
			return fmt.Errorf("import sales: %w", err)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sales events, %d menus, %d recipes\n",
			len(export.Sales), len(export.Menus), len(export.Recipes))
		return err
	}
	return cmd
}

func openDatabase(cfgPath, sqlitePath string) (*persistence.Database, error) {
	if sqlitePath != "" {
		return persistence.NewSQLiteDatabase(sqlitePath)
	}
	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		return nil, err
	}
	return persistence.NewDatabase(&cfg.Database, nil)
}
