package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rl1809/catalog-bot/internal/adapter/storage"
	"github.com/rl1809/catalog-bot/internal/config"
)

const version = "0.1.0"

func newRootCmd() *cobra.Command {
	v := config.New()
	var file string

	cmd := &cobra.Command{
		Use:   "seed -f goods.yaml",
		Short: "Insert fixture goods into the catalog store",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := readFixture(file)
			if err != nil {
				return err
			}

			driver, dsn := v.GetString("store.driver"), v.GetString("store.dsn")
			db, err := storage.OpenSQL(cmd.Context(), driver, dsn)
			if err != nil {
				return fmt.Errorf("failed to connect catalog store: %w", err)
			}
			defer db.Close()

			n, err := seed(cmd.Context(), storage.NewSQLCatalog(db), fixture)
			if err != nil {
				return err
			}
			log.Printf("inserted %d goods into %s", n, driver)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file")
	cmd.Flags().String("driver", "", "store driver (mysql or sqlite3)")
	cmd.Flags().String("dsn", "", "store DSN")
	_ = cmd.MarkFlagRequired("file")
	if err := v.BindPFlag("store.driver", cmd.Flags().Lookup("driver")); err != nil {
		panic(err)
	}
	if err := v.BindPFlag("store.dsn", cmd.Flags().Lookup("dsn")); err != nil {
		panic(err)
	}
	return cmd
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
