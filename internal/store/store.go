// Package store archives parsed course snapshots to PostgreSQL.
//
// Archiving is insert-only. Every call writes the whole snapshot with the
// COPY protocol inside one transaction, tagged with a new batch id, so a
// batch is either fully present or absent.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/coursestats/internal/config"
	"github.com/JonMunkholm/coursestats/internal/course"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store writes course snapshots to PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// ArchiveResult describes one archived snapshot.
type ArchiveResult struct {
	BatchID    string    `json:"batchId"`
	Rows       int64     `json:"rows"`
	ImportedAt time.Time `json:"importedAt"`
}

// Open connects a pool using cfg and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the archive table and its indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Archive copies records into the archive table under a new batch id.
func (s *Store) Archive(ctx context.Context, records []course.Record) (ArchiveResult, error) {
	batchID := uuid.New()
	importedAt := time.Now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("begin archive: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	rows, err := tx.CopyFrom(ctx,
		pgx.Identifier{archiveTable},
		archiveColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			row, err := copyRow(batchID, importedAt, records[i])
			if err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, records[i].CourseNumber, err)
			}
			return row, nil
		}),
	)
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("copy %d records: %w", len(records), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ArchiveResult{}, fmt.Errorf("commit archive: %w", err)
	}

	slog.Info("snapshot archived", "batch_id", batchID.String(), "rows", rows)
	return ArchiveResult{BatchID: batchID.String(), Rows: rows, ImportedAt: importedAt}, nil
}

// Batches lists archived snapshots, newest first.
func (s *Store) Batches(ctx context.Context, limit int) ([]ArchiveResult, error) {
	return listBatches(ctx, s.pool, limit)
}

func listBatches(ctx context.Context, db DBTX, limit int) ([]ArchiveResult, error) {
	rows, err := db.Query(ctx, `
		SELECT batch_id, max(imported_at), count(*)
		FROM course_records
		GROUP BY batch_id
		ORDER BY max(imported_at) DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	batches := []ArchiveResult{}
	for rows.Next() {
		var (
			id         pgtype.UUID
			importedAt pgtype.Timestamptz
			count      int64
		)
		if err := rows.Scan(&id, &importedAt, &count); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, ArchiveResult{
			BatchID:    pgUUIDToString(id),
			Rows:       count,
			ImportedAt: importedAt.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// copyRow lays out r in archiveColumns order.
func copyRow(batchID uuid.UUID, importedAt time.Time, r course.Record) ([]any, error) {
	var ints int4Row
	row := []any{
		toPgUUID(batchID),
		toPgTimestamptz(importedAt),
		toPgText(r.Institution),
		toPgText(r.CourseNumber),
		toPgDate(r.LaunchDate),
		toPgText(r.Title),
		toPgText(r.Instructors),
		toPgText(r.Subject),
		ints.convert("year", r.Year),
		ints.convert("honor_code_certificates", r.HonorCodeCertificates),
		ints.convert("participants", r.Participants),
		ints.convert("audited", r.Audited),
		ints.convert("certified", r.Certified),
		toPgFloat8(r.AuditedPct),
		toPgFloat8(r.CertifiedPct),
		toPgFloat8(r.CertifiedOfAuditedPct),
		toPgFloat8(r.PlayedVideoPct),
		toPgFloat8(r.PostedInForumPct),
		toPgFloat8(r.GradeAboveZeroPct),
		toPgFloat8(r.TotalCourseHours),
		toPgFloat8(r.MedianHoursForCertification),
		toPgFloat8(r.MedianAge),
		toPgFloat8(r.MalePct),
		toPgFloat8(r.FemalePct),
		toPgFloat8(r.BachelorOrHigherPct),
		toPgBool(r.Independent),
	}
	if ints.err != nil {
		return nil, ints.err
	}
	return row, nil
}
