package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/pitchgraph/store"
)

// ReportStore implements store.ReportStore using Redis.
// Reports are JSON strings; a sorted set scored by creation time indexes them.
type ReportStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ store.ReportStore = (*ReportStore)(nil)

// Options configuration for Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "pitchgraph:"
	TTL      time.Duration // Expiration for reports, default 0 (no expiration)
}

// NewReportStore creates a new Redis report store
func NewReportStore(opts Options) *ReportStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewReportStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewReportStoreWithClient wraps an existing client.
func NewReportStoreWithClient(client redis.UniversalClient, prefix string, ttl time.Duration) *ReportStore {
	if prefix == "" {
		prefix = "pitchgraph:"
	}
	return &ReportStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *ReportStore) reportKey(id string) string {
	return fmt.Sprintf("%sreport:%s", s.prefix, id)
}

func (s *ReportStore) indexKey() string {
	return s.prefix + "reports"
}

// Save stores a report
func (s *ReportStore) Save(ctx context.Context, report *store.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.reportKey(report.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(report.CreatedAt.UnixNano()),
		Member: report.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report to redis: %w", err)
	}
	return nil
}

// Load retrieves a report by ID
func (s *ReportStore) Load(ctx context.Context, id string) (*store.Report, error) {
	data, err := s.client.Get(ctx, s.reportKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report from redis: %w", err)
	}

	var report store.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// List returns up to limit reports, newest first.
// Index entries whose report expired are skipped and pruned, and the index
// is read further until the page is full or the index ends.
func (s *ReportStore) List(ctx context.Context, limit int) ([]*store.Report, error) {
	limit = store.NormalizeLimit(limit)
	reports := []*store.Report{}
	var stale []any

	for offset := int64(0); len(reports) < limit; {
		want := int64(limit - len(reports))
		ids, err := s.client.ZRevRange(ctx, s.indexKey(), offset, offset+want-1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", err)
		}
		if len(ids) == 0 {
			break
		}
		offset += int64(len(ids))

		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = s.reportKey(id)
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get reports: %w", err)
		}

		for i, v := range values {
			str, ok := v.(string)
			if !ok {
				stale = append(stale, ids[i])
				continue
			}
			var report store.Report
			if err := json.Unmarshal([]byte(str), &report); err != nil {
				return nil, fmt.Errorf("failed to unmarshal report %s: %w", ids[i], err)
			}
			reports = append(reports, &report)
		}

		if int64(len(ids)) < want {
			break
		}
	}

	if len(stale) > 0 {
		s.client.ZRem(ctx, s.indexKey(), stale...)
	}
	return reports, nil
}

// Delete removes a report
func (s *ReportStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.reportKey(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if del.Val() == 0 {
		return store.ErrReportNotFound
	}
	return nil
}

// Close closes the client
func (s *ReportStore) Close() error {
	return s.client.Close()
}
