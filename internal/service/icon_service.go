// Package service contains the business logic that ties the registry,
// the icon resolution chain, and the audit log together.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/icon"
	"github.com/devboom/devboom/internal/model"
	"github.com/devboom/devboom/internal/storage"
	"github.com/devboom/devboom/internal/store"
)

// IconService keeps registered IDE icons fresh. Resolution runs lazily
// over whatever is registered; a tool whose icon is current is skipped
// without touching any tier.
type IconService struct {
	store    *store.Store
	resolver *icon.Resolver
	audit    storage.ResolutionRepository // nil disables the audit log
	logger   *zap.Logger
}

func NewIconService(st *store.Store, resolver *icon.Resolver, audit storage.ResolutionRepository, logger *zap.Logger) *IconService {
	return &IconService{
		store:    st,
		resolver: resolver,
		audit:    audit,
		logger:   logger,
	}
}

// RefreshAll resolves icons for every registered IDE, persisting each
// change as it lands. Returns the number of icons updated. A single
// tool failing never aborts the sweep.
func (s *IconService) RefreshAll(ctx context.Context) int {
	updated := 0
	for _, ide := range s.store.IDEs() {
		changed, err := s.refresh(ctx, ide)
		if err != nil {
			s.logger.Warn("icon refresh failed",
				zap.String("ide", ide.ID),
				zap.Error(err),
			)
			continue
		}
		if changed {
			updated++
		}
	}
	return updated
}

// RefreshOne resolves the icon for a single IDE by id.
func (s *IconService) RefreshOne(ctx context.Context, ideID string) (*model.IDEConfig, error) {
	ide, err := s.store.IDE(ideID)
	if err != nil {
		return nil, err
	}
	if _, err := s.refresh(ctx, *ide); err != nil {
		return nil, err
	}
	return s.store.IDE(ideID)
}

func (s *IconService) refresh(ctx context.Context, ide model.IDEConfig) (bool, error) {
	var existing *icon.Icon
	if ide.Icon != nil {
		// A stored value that no longer parses is treated as absent
		// and resolved from scratch.
		if parsed, err := icon.ParseDataURL(*ide.Icon); err == nil {
			existing = parsed
		}
	}

	start := time.Now()
	resolved := s.resolver.Resolve(ctx, icon.Request{
		ToolID:     ide.ID,
		Executable: ide.Executable,
		Name:       ide.Name,
	}, existing)

	if existing != nil && resolved == existing {
		// Valid already, nothing ran.
		return false, nil
	}
	s.record(ctx, ide.ID, resolved, time.Since(start))

	if resolved == nil {
		return false, nil
	}
	if _, err := s.store.SetIDEIcon(ide.ID, resolved.DataURL()); err != nil {
		return false, err
	}
	s.logger.Info("icon updated",
		zap.String("ide", ide.ID),
		zap.String("source", string(resolved.Source)),
		zap.Int("bytes", len(resolved.Data)),
	)
	return true, nil
}

// SetIconFromFile applies a user-chosen icon file to an IDE. The
// override always wins over the stored icon.
func (s *IconService) SetIconFromFile(ctx context.Context, ideID, path string) (*model.IDEConfig, error) {
	if _, err := s.store.IDE(ideID); err != nil {
		return nil, err
	}

	start := time.Now()
	ic, err := s.resolver.FromUserFile(path)
	if err != nil {
		return nil, err
	}
	s.record(ctx, ideID, ic, time.Since(start))

	return s.store.SetIDEIcon(ideID, ic.DataURL())
}

// record appends an audit row. Auditing is best-effort: a failed insert
// is logged and never fails the resolution that produced it.
func (s *IconService) record(ctx context.Context, toolID string, ic *icon.Icon, elapsed time.Duration) {
	if s.audit == nil {
		return
	}

	row := &model.IconResolution{
		ToolID:  toolID,
		Source:  model.ResolutionMiss,
		Success: false,
	}
	if ic != nil {
		mime := ic.MIME
		size := int64(len(ic.Data))
		row.Source = string(ic.Source)
		row.MIME = &mime
		row.SizeBytes = &size
		row.Success = true
	}
	ms := elapsed.Milliseconds()
	row.DurationMs = &ms

	if err := s.audit.Create(ctx, row); err != nil {
		s.logger.Warn("recording resolution failed",
			zap.String("tool", toolID),
			zap.Error(err),
		)
	}
}
