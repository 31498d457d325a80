package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// SeedStrategyConfigs stores the built-in strategy configurations when
// the strategies table is empty. It reports how many rows it inserted.
func (s *Store) SeedStrategyConfigs(ctx context.Context) (int, error) {
	var count int

	err := s.sq.Select("COUNT(*)").From("strategies").RunWith(s.db).QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count strategy configs", err)
	}

	if count > 0 {
		return 0, nil
	}

	defaults := strategy.DefaultConfigs()
	for _, cfg := range defaults {
		if err := s.UpsertStrategyConfig(ctx, cfg); err != nil {
			return 0, err
		}
	}

	s.logger.Info("Seeded strategy configs", zap.Int("count", len(defaults)))

	return len(defaults), nil
}

// UpsertStrategyConfig inserts cfg or replaces the config of the same name.
func (s *Store) UpsertStrategyConfig(ctx context.Context, cfg strategy.Config) error {
	if cfg.Params == nil {
		return errors.Newf(errors.ErrCodeMissingParameter, "strategy %s has no parameters", cfg.Name)
	}

	raw, err := strategy.EncodeParams(cfg.Params)
	if err != nil {
		return err
	}

	_, err = s.sq.Insert("strategies").
		Columns("name", "kind", "parameters", "is_active", "description").
		Values(cfg.Name, string(cfg.Kind), string(raw), cfg.IsActive, cfg.Description).
		Suffix(`ON CONFLICT (name) DO UPDATE SET kind = EXCLUDED.kind, parameters = EXCLUDED.parameters,
			is_active = EXCLUDED.is_active, description = EXCLUDED.description`).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to store strategy config %s", cfg.Name)
	}

	return nil
}

// ListStrategyConfigs returns the stored configurations sorted by name.
// Rows whose parameters no longer decode are skipped with a warning.
func (s *Store) ListStrategyConfigs(ctx context.Context) ([]strategy.Config, error) {
	rows, err := s.sq.Select("name", "kind", "parameters", "is_active", "description").
		From("strategies").
		OrderBy("name").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query strategy configs", err)
	}
	defer rows.Close()

	var configs []strategy.Config

	for rows.Next() {
		var (
			cfg  strategy.Config
			kind string
			raw  string
		)

		if err := rows.Scan(&cfg.Name, &kind, &raw, &cfg.IsActive, &cfg.Description); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan strategy config", err)
		}

		cfg.Kind = strategy.Kind(kind)

		cfg.Params, err = strategy.DecodeParams(cfg.Kind, []byte(raw))
		if err != nil {
			s.logger.Warn("Skipping invalid strategy config", zap.String("name", cfg.Name), zap.Error(err))

			continue
		}

		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}
