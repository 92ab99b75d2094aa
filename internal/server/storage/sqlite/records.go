package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/iudanet/shelfsync/internal/server/storage"
)

// DefaultPageSize используется, если лимит страницы не задан
const DefaultPageSize = 200

// ModifyRecords atomically saves records and deletes keys. Submitted fields
// are merged over the stored ones.
func (s *Storage) ModifyRecords(ctx context.Context, owner, zone string, records []*storage.Record, deletions []storage.RecordKey) ([]*storage.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var zoneID, lastSeq int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, last_seq FROM zones WHERE owner = ? AND name = ?`,
		owner, zone,
	).Scan(&zoneID, &lastSeq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}

	// Политика сохранения: только если серверная запись не менялась
	stored := make(map[string]*storage.Record, len(records))
	conflicts := make(map[string]*storage.Record)
	for _, r := range records {
		current, err := getRecord(ctx, tx, zoneID, r.Name)
		if err != nil {
			return nil, err
		}
		if current != nil && current.ChangeTag != r.ChangeTag {
			conflicts[r.Name] = current
		}
		stored[r.Name] = current
	}
	if len(conflicts) > 0 {
		return nil, &storage.ConflictError{Conflicts: conflicts}
	}

	now := s.now()
	saved := make([]*storage.Record, 0, len(records))
	for _, r := range records {
		merged := &storage.Record{
			Name:       r.Name,
			Type:       r.Type,
			Fields:     make(map[string]json.RawMessage, len(r.Fields)),
			ChangeTag:  ulid.Make().String(),
			ModifiedAt: now,
		}
		if current := stored[r.Name]; current != nil {
			maps.Copy(merged.Fields, current.Fields)
		}
		maps.Copy(merged.Fields, r.Fields)

		fields, err := json.Marshal(merged.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal fields of %s: %w", r.Name, err)
		}

		lastSeq++
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (zone_id, record_name, record_type, change_tag, fields, seq, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (zone_id, record_name) DO UPDATE SET
				record_type = excluded.record_type,
				change_tag  = excluded.change_tag,
				fields      = excluded.fields,
				seq         = excluded.seq,
				modified_at = excluded.modified_at
		`, zoneID, merged.Name, merged.Type, merged.ChangeTag, string(fields), lastSeq, now.UnixMilli())
		if err != nil {
			return nil, fmt.Errorf("failed to save record %s: %w", r.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tombstones WHERE zone_id = ? AND record_name = ?`,
			zoneID, r.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to clear tombstone of %s: %w", r.Name, err)
		}
		stored[r.Name] = merged
		saved = append(saved, merged)
	}

	for _, key := range deletions {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM records WHERE zone_id = ? AND record_name = ?`,
			zoneID, key.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to delete record %s: %w", key.Name, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			// удаление уже удалённой записи ничего не меняет
			continue
		}

		lastSeq++
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tombstones (zone_id, record_name, record_type, seq, deleted_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (zone_id, record_name) DO UPDATE SET
				record_type = excluded.record_type,
				seq         = excluded.seq,
				deleted_at  = excluded.deleted_at
		`, zoneID, key.Name, key.Type, lastSeq, now.UnixMilli())
		if err != nil {
			return nil, fmt.Errorf("failed to save tombstone of %s: %w", key.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE zones SET last_seq = ? WHERE id = ?`, lastSeq, zoneID); err != nil {
		return nil, fmt.Errorf("failed to advance zone sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return saved, nil
}

// Changes returns live records and deletion markers changed after since, in
// feed order. A record changed several times appears once, at its latest
// position.
func (s *Storage) Changes(ctx context.Context, owner, zone string, since int64, limit int) (*storage.ChangePage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var zoneID, lastSeq, prunedSeq int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, last_seq, pruned_seq FROM zones WHERE owner = ? AND name = ?`,
		owner, zone,
	).Scan(&zoneID, &lastSeq, &prunedSeq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}

	// Позиция до удалённых маркеров или из будущего (сервер пересоздан)
	if since > 0 && (since < prunedSeq || since > lastSeq) {
		return nil, storage.ErrChangeTokenExpired
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT seq, record_name, record_type, change_tag, fields, modified_at, 0 AS deleted
		FROM records WHERE zone_id = ? AND seq > ?
		UNION ALL
		SELECT seq, record_name, record_type, '', '', deleted_at, 1 AS deleted
		FROM tombstones WHERE zone_id = ? AND seq > ?
		ORDER BY seq
		LIMIT ?
	`, zoneID, since, zoneID, since, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	page := &storage.ChangePage{Seq: since}
	count := 0
	for rows.Next() {
		if count == limit {
			page.MoreComing = true
			break
		}

		var (
			seq, modifiedAt int64
			deleted         int
			fields          string
			r               storage.Record
		)
		if err := rows.Scan(&seq, &r.Name, &r.Type, &r.ChangeTag, &fields, &modifiedAt, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		count++
		page.Seq = seq

		if intToBool(deleted) {
			page.Deleted = append(page.Deleted, storage.RecordKey{Name: r.Name, Type: r.Type})
			continue
		}
		if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal fields of %s: %w", r.Name, err)
		}
		r.ModifiedAt = time.UnixMilli(modifiedAt)
		page.Changed = append(page.Changed, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if !page.MoreComing {
		page.Seq = lastSeq
	}
	return page, nil
}

// PruneChanges drops deletion markers older than before. Feed positions
// before the newest pruned marker expire.
func (s *Storage) PruneChanges(ctx context.Context, before time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	cutoff := before.UnixMilli()
	_, err = tx.ExecContext(ctx, `
		UPDATE zones SET pruned_seq = MAX(pruned_seq, COALESCE(
			(SELECT MAX(seq) FROM tombstones t WHERE t.zone_id = zones.id AND t.deleted_at < ?), 0))
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to advance pruned sequence: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM tombstones WHERE deleted_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune tombstones: %w", err)
	}
	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return pruned, nil
}

// getRecord возвращает nil, если записи нет
func getRecord(ctx context.Context, tx *sql.Tx, zoneID int64, name string) (*storage.Record, error) {
	r := &storage.Record{Name: name}
	var (
		fields     string
		modifiedAt int64
	)
	err := tx.QueryRowContext(ctx,
		`SELECT record_type, change_tag, fields, modified_at FROM records WHERE zone_id = ? AND record_name = ?`,
		zoneID, name,
	).Scan(&r.Type, &r.ChangeTag, &fields, &modifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields of %s: %w", name, err)
	}
	r.ModifiedAt = time.UnixMilli(modifiedAt)
	return r, nil
}

func intToBool(i int) bool {
	return i != 0
}

func unixToTime(timestamp int64) time.Time {
	return time.Unix(timestamp, 0)
}

var _ storage.RecordStorage = (*Storage)(nil)
