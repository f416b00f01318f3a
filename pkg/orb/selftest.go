package orb

import (
	"context"
	"fmt"
	"time"

	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// SelfTest writes one data record and reads it back. Services run this at
// boot so a miswired database fails the process instead of the first client.
func (s *Storage) SelfTest(ctx context.Context) error {
	probe := &types.OrbData{
		Subtype: types.OrbSubtypeJSON,
		Src:     "selftest",
		Flags:   []string{"selftest"},
		Data: map[string]any{
			"probe": time.Now().Unix(),
		},
	}

	created, err := s.PushData(ctx, probe)
	if err != nil {
		return fmt.Errorf("self-test write failed: %w", err)
	}
	if !created {
		return fmt.Errorf("self-test write did not create a record")
	}

	got, err := s.FetchData(ctx, probe.U)
	if err != nil {
		return fmt.Errorf("self-test read failed: %w", err)
	}
	if got.U != probe.U {
		return fmt.Errorf("self-test read returned the wrong record")
	}

	meta := &types.OrbMeta{
		U:     probe.U,
		Flags: []string{"selftest"},
	}
	if _, err := s.PushMeta(ctx, meta); err != nil {
		return fmt.Errorf("self-test meta write failed: %w", err)
	}
	gotMeta, err := s.FetchMeta(ctx, meta.ID)
	if err != nil {
		return fmt.Errorf("self-test meta read failed: %w", err)
	}
	if gotMeta.U != probe.U {
		return fmt.Errorf("self-test meta read returned the wrong record")
	}

	s.logger.Info().
		Str("u", probe.U.String()).
		Int64("meta_id", meta.ID).
		Msg("storage self-test passed")
	return nil
}
