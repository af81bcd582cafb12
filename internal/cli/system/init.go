package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/logger"
	"github.com/julianstephens/wellkept/internal/storage/postgres"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, ok := ctx.Store.(*postgres.Store); ok {
			return fmt.Errorf("--force is only supported for SQLite databases")
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Close first so the file is not held open while we remove it
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			logger.Info("Deleted existing database", "path", dbPath)
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized wellkept storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
