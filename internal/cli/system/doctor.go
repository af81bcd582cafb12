package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name    string
	needsDB bool
	run     func(context.Context, *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{"Schema version", true, checkSchemaVersion},
		{"Migrations complete", true, checkMigrationsComplete},
		{"Required tables", true, checkRequiredTables},
		{"Clock/timezone", false, checkClockTimezone},
		{"Reward catalog", false, checkCatalog},
		{"Account integrity", true, checkAccountIntegrity},
	}

	bg := context.Background()
	hasError := false

	dbReachable := true
	if err := checkDBReachable(bg, ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		if err := c.run(bg, ctx); err != nil {
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			ctx.Printf("✓ %s: OK\n", c.name)
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(bg context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.GetAccount(bg, ctx.Owner); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(_ context.Context, ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migratable)
	if !ok {
		// Non-SQL backends have no schema version
		return nil
	}
	runner, err := m.Migrator()
	if err != nil {
		return err
	}
	st, err := runner.Status()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	return nil
}

func checkMigrationsComplete(_ context.Context, ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migratable)
	if !ok {
		return nil
	}
	runner, err := m.Migrator()
	if err != nil {
		return err
	}
	st, err := runner.Status()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'wellkept migrate')", st.Current, st.Latest)
	}
	return nil
}

func checkRequiredTables(bg context.Context, ctx *cli.Context) error {
	sc, ok := ctx.Store.(storage.SchemaChecker)
	if !ok {
		return nil
	}
	missing, err := sc.MissingTables(bg)
	if err != nil {
		return fmt.Errorf("failed to inspect tables: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if tz := ctx.Service.Location().String(); !clock.ValidateTimezone(tz) {
		return fmt.Errorf("timezone %q cannot be loaded", tz)
	}
	if _, err := clock.ParseDay(ctx.Service.Today()); err != nil {
		return fmt.Errorf("calendar produced an invalid day: %w", err)
	}
	return nil
}

func checkCatalog(_ context.Context, ctx *cli.Context) error {
	cat := ctx.Service.Catalog()
	if len(cat.Rewards) == 0 {
		return fmt.Errorf("reward catalog is empty")
	}
	return cat.Validate()
}

func checkAccountIntegrity(bg context.Context, ctx *cli.Context) error {
	d, err := ctx.Service.VerifyAccount(bg, ctx.Owner)
	if err != nil {
		return fmt.Errorf("failed to verify account: %w", err)
	}
	if !d.OK() {
		return fmt.Errorf("stored total %d does not match completed points %d", d.Stored, d.Expected)
	}
	return nil
}
