package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/crefinex/internal/datatable"
	"github.com/JonMunkholm/crefinex/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownResource is returned for a key with no registered resource.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrNoIDs is returned when a bulk delete names no rows.
	ErrNoIDs = errors.New("no ids provided")

	// ErrTooManyIDs is returned when a bulk delete names more rows than allowed.
	ErrTooManyIDs = errors.New("too many ids")
)

// DefaultDeleteTimeout bounds a single bulk delete.
var DefaultDeleteTimeout = 30 * time.Second

// DefaultMaxIDs bounds the ids accepted by one bulk delete.
const DefaultMaxIDs = 1000

// countConcurrency bounds the COUNT queries issued at once by Counts.
const countConcurrency = 4

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	MaxIDs        int
	DeleteTimeout time.Duration
	Limiter       *MutationLimiter
}

// Service provides the data operations behind the dashboard tables.
type Service struct {
	db      DBTX
	limiter *MutationLimiter
	maxIDs  int
	timeout time.Duration
}

// NewService creates a new Service instance.
func NewService(db DBTX, opts Options) *Service {
	s := &Service{
		db:      db,
		limiter: opts.Limiter,
		maxIDs:  opts.MaxIDs,
		timeout: opts.DeleteTimeout,
	}
	if s.limiter == nil {
		s.limiter = NewMutationLimiter(DefaultMaxConcurrentMutations, DefaultMaxWaitTime)
	}
	if s.maxIDs <= 0 {
		s.maxIDs = DefaultMaxIDs
	}
	if s.timeout <= 0 {
		s.timeout = DefaultDeleteTimeout
	}
	return s
}

// Limiter returns the limiter guarding bulk deletes, for shutdown draining.
func (s *Service) Limiter() *MutationLimiter {
	return s.limiter
}

// ListResources returns information about all registered resources.
func (s *Service) ListResources() []ResourceInfo {
	defs := All()
	infos := make([]ResourceInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListResourcesByGroup returns resources organized by group.
func (s *Service) ListResourcesByGroup() map[string][]ResourceInfo {
	result := make(map[string][]ResourceInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Resource returns the definition registered under key.
func (s *Service) Resource(key string) (ResourceDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return ResourceDefinition{}, fmt.Errorf("%w: %s", ErrUnknownResource, key)
	}
	return def, nil
}

// Counts returns the row count of every resource, queried concurrently.
// A failed count is reported on its entry and does not fail the others.
func (s *Service) Counts(ctx context.Context) []ResourceCount {
	defs := All()
	counts := make([]ResourceCount, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)
	for i, def := range defs {
		g.Go(func() error {
			counts[i].Info = def.Info
			var n int64
			if err := s.db.QueryRow(gctx, def.countQuery()).Scan(&n); err != nil {
				logging.WithFields(ctx, "resource", def.Info.Key).Warn("count failed", "error", err)
				counts[i].Error = MapError(err).Message
				return nil
			}
			counts[i].Count = n
			return nil
		})
	}
	_ = g.Wait()

	return counts
}

// Rows fetches every row of a resource as records keyed by column name.
func (s *Service) Rows(ctx context.Context, key string) (*RowSet, error) {
	def, err := s.Resource(key)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, def.SelectSQL)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := make([]datatable.Record, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read %s row: %w", key, err)
		}
		rec := make(datatable.Record, len(fields))
		for i, f := range fields {
			rec[f.Name] = normalizeValue(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}

	return &RowSet{
		Resource:  def.Info,
		Columns:   def.Columns,
		Rows:      records,
		FetchedAt: time.Now(),
	}, nil
}

// DeleteMany deletes the rows of a resource whose ids are given.
//
// Only an unknown resource is returned as an error. Every other failure is
// reported through DeleteResult.Error as a user-facing message, so callers
// can hand the result straight to the table. An empty id list never reaches
// the database.
func (s *Service) DeleteMany(ctx context.Context, key string, ids []string) (DeleteResult, error) {
	def, err := s.Resource(key)
	if err != nil {
		return DeleteResult{}, err
	}

	ids = normalizeIDs(ids)
	if len(ids) == 0 {
		return failed(ErrNoIDs), nil
	}
	if len(ids) > s.maxIDs {
		return failed(fmt.Errorf("%w: %d > %d", ErrTooManyIDs, len(ids), s.maxIDs)), nil
	}

	batchID := uuid.NewString()
	logger := logging.WithFields(ctx, "resource", key, "batch_id", batchID, "ids", len(ids))

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("bulk delete rejected", "error", err)
		return failed(err), nil
	}
	defer s.limiter.Release()

	deleteCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	tag, err := s.db.Exec(deleteCtx, def.deleteQuery(), ids)
	if err != nil {
		logger.Error("bulk delete failed", "error", err)
		return failed(err), nil
	}
	deleted := tag.RowsAffected()
	logger.Info("bulk delete completed",
		"deleted", deleted,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if deleted == 0 {
		return DeleteResult{
			Error:   "Los registros seleccionados ya no existen",
			BatchID: batchID,
		}, nil
	}

	// The rows are gone either way; a failed audit write is only logged.
	if _, err := s.LogAudit(ctx, AuditLogParams{
		Action:       ActionRowDelete,
		ResourceKey:  key,
		BatchID:      batchID,
		RowIDs:       ids,
		RowsAffected: deleted,
	}); err != nil {
		logger.Error("audit write failed", "error", err)
	}

	return DeleteResult{
		Success: deleteSuccessMessage(deleted),
		Deleted: deleted,
		BatchID: batchID,
	}, nil
}

// DeleteAction binds DeleteMany to one resource for use by a table.
func (s *Service) DeleteAction(key string) datatable.DeleteAction {
	return func(ctx context.Context, ids []string) (datatable.DeleteResult, error) {
		res, err := s.DeleteMany(ctx, key, ids)
		if err != nil {
			return datatable.DeleteResult{}, err
		}
		return res.TableResult(), nil
	}
}

func failed(err error) DeleteResult {
	return DeleteResult{Error: MapError(err).Message}
}

func deleteSuccessMessage(n int64) string {
	if n == 1 {
		return "Se eliminó 1 registro"
	}
	return fmt.Sprintf("Se eliminaron %d registros", n)
}
