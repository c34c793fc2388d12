package sqlite

import (
	"context"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/store/drivers/sqlite/gen"
	"github.com/aussiebroadwan/shopfront/pkg/idx"
)

type oneTimeCodesRepo struct {
	q   *gen.Queries
	cfg *settings
}

func (r *oneTimeCodesRepo) CreateCode(ctx context.Context, c domain.OneTimeCode) (domain.OneTimeCode, error) {
	now := r.cfg.now()
	if c.ID == "" {
		c.ID = idx.NewAt(now).String()
	}
	c.CreatedAt = now
	c.ExpiresAt = now.Add(r.cfg.codeTTL)

	err := r.q.CreateOneTimeCode(ctx, gen.CreateOneTimeCodeParams{
		ID:        c.ID,
		Email:     c.Email,
		CodeHash:  c.CodeHash,
		Purpose:   string(c.Purpose),
		CreatedAt: toMillis(c.CreatedAt),
		ExpiresAt: toMillis(c.ExpiresAt),
	})
	if err != nil {
		return domain.OneTimeCode{}, mapConstraint(err)
	}

	// Round-trip through millis so callers see what a later read returns.
	c.CreatedAt = fromMillis(toMillis(c.CreatedAt))
	c.ExpiresAt = fromMillis(toMillis(c.ExpiresAt))
	return c, nil
}

func (r *oneTimeCodesRepo) FindActiveCode(ctx context.Context, email string, purpose domain.CodePurpose, codeHash string) (domain.OneTimeCode, error) {
	row, err := r.q.GetActiveOneTimeCode(ctx, gen.GetActiveOneTimeCodeParams{
		Email:     email,
		Purpose:   string(purpose),
		CodeHash:  codeHash,
		ExpiresAt: toMillis(r.cfg.now()),
	})
	if err != nil {
		return domain.OneTimeCode{}, mapNotFound(err)
	}
	return mapOneTimeCode(row), nil
}

func (r *oneTimeCodesRepo) DeleteCodes(ctx context.Context, email string, purpose domain.CodePurpose) error {
	return r.q.DeleteOneTimeCodes(ctx, gen.DeleteOneTimeCodesParams{
		Email:   email,
		Purpose: string(purpose),
	})
}

func (r *oneTimeCodesRepo) DeleteExpiredCodes(ctx context.Context) (int64, error) {
	return r.q.DeleteExpiredOneTimeCodes(ctx, toMillis(r.cfg.now()))
}
