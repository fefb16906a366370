package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/config"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/store"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/syncer"
)

// env bundles what most commands need: the configuration and a loaded
// store backed by the configured database.
type env struct {
	cfg   *config.Config
	store *store.Store
	db    *store.SQLite
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

// openEnv loads the config named by the --config flag and the store
// behind it. Settings persisted in the database win over the config
// seed; a fresh database starts from the config.
func openEnv(cmd *cobra.Command) (*env, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	db, err := store.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	st := store.New(db)
	if err := st.Load(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading store: %w", err)
	}
	if _, ok, err := db.LoadSettings(context.Background()); err == nil && !ok {
		seed := cfg.Settings()
		st.UpdateSettings(context.Background(), model.SettingsPatch{
			InitialBalance: &seed.InitialBalance,
			AlertThreshold: &seed.AlertThreshold,
			VATRegime:      &seed.VATRegime,
			VATNumber:      &seed.VATNumber,
		})
	}

	return &env{cfg: cfg, store: st, db: db}, nil
}

// readSnapshot parses an external business snapshot file.
func readSnapshot(path string) (model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return syncer.ParseSnapshot(data)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

func eur(d decimal.Decimal) string {
	return d.StringFixed(2) + " EUR"
}
