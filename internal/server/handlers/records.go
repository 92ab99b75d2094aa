package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/shelfsync/internal/server/metrics"
	"github.com/iudanet/shelfsync/internal/server/storage"
	"github.com/iudanet/shelfsync/internal/validation"
	"github.com/iudanet/shelfsync/pkg/api"
)

const (
	// DefaultMaxBatchSize лимит записей и удалений в одном запросе
	DefaultMaxBatchSize = 400
	// DefaultPageSize размер страницы ленты по умолчанию
	DefaultPageSize = 200
)

// RecordHandlerConfig ограничения запросов записей
type RecordHandlerConfig struct {
	MaxBatchSize int
	PageSize     int
}

// RecordHandler обрабатывает пакетную запись и ленту изменений
type RecordHandler struct {
	logger  *slog.Logger
	records storage.RecordStorage
	metrics *metrics.Metrics
	cfg     RecordHandlerConfig
}

// NewRecordHandler создает новый handler записей. m may be nil.
func NewRecordHandler(logger *slog.Logger, records storage.RecordStorage, m *metrics.Metrics, cfg RecordHandlerConfig) *RecordHandler {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &RecordHandler{
		logger:  logger,
		records: records,
		metrics: m,
		cfg:     cfg,
	}
}

// Modify обрабатывает POST /api/v1/zones/{zone}/records/modify
// Пакет применяется целиком или отклоняется целиком
func (h *RecordHandler) Modify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := requireOwner(h.logger, w, r)
	if !ok {
		return
	}
	zone := r.PathValue("zone")

	var req api.ModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode modify request", slog.Any("error", err))
		SendError(h.logger, w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body")
		return
	}

	if n := len(req.Records) + len(req.Deletions); n > h.cfg.MaxBatchSize {
		h.logger.WarnContext(ctx, "batch too large",
			slog.String("zone", zone),
			slog.Int("items", n),
			slog.Int("limit", h.cfg.MaxBatchSize))
		SendError(h.logger, w, http.StatusRequestEntityTooLarge, api.CodeLimitExceeded,
			fmt.Sprintf("batch of %d items exceeds limit %d", n, h.cfg.MaxBatchSize))
		return
	}

	records, deletions, err := fromModifyRequest(req)
	if err != nil {
		SendError(h.logger, w, http.StatusBadRequest, api.CodeBadRequest, err.Error())
		return
	}

	saved, err := h.records.ModifyRecords(ctx, owner, zone, records, deletions)
	if err != nil {
		var conflict *storage.ConflictError
		if errors.As(err, &conflict) {
			h.metrics.Conflicts(len(conflict.Conflicts))
			h.logger.InfoContext(ctx, "batch rejected",
				slog.String("zone", zone),
				slog.Int("conflicts", len(conflict.Conflicts)))
			sendJSON(h.logger, w, partialFailure(req, conflict), http.StatusConflict)
			return
		}
		sendStorageError(h.logger, r, w, err)
		return
	}

	h.metrics.RecordsModified(len(saved), len(deletions))
	h.logger.DebugContext(ctx, "batch saved",
		slog.String("zone", zone),
		slog.Int("saved", len(saved)),
		slog.Int("deleted", len(deletions)))

	resp := api.ModifyResponse{
		Saved:   make([]api.Record, 0, len(saved)),
		Deleted: req.Deletions,
	}
	for _, rec := range saved {
		resp.Saved = append(resp.Saved, toAPIRecord(rec))
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Changes обрабатывает GET /api/v1/zones/{zone}/changes?token=&limit=
func (h *RecordHandler) Changes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := requireOwner(h.logger, w, r)
	if !ok {
		return
	}
	zone := r.PathValue("zone")

	limit := h.cfg.PageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			SendError(h.logger, w, http.StatusBadRequest, api.CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, h.cfg.PageSize)
	}

	since, err := parseToken(r.URL.Query().Get("token"))
	if err != nil {
		// Нечитаемый токен означает, что клиент должен начать заново
		h.metrics.ChangePage("expired")
		h.logger.WarnContext(ctx, "unreadable change token", slog.String("zone", zone), slog.Any("error", err))
		SendError(h.logger, w, http.StatusGone, api.CodeChangeTokenExpired, "change token is not recognized")
		return
	}

	page, err := h.records.Changes(ctx, owner, zone, since, limit)
	if err != nil {
		if errors.Is(err, storage.ErrChangeTokenExpired) {
			h.metrics.ChangePage("expired")
		}
		sendStorageError(h.logger, r, w, err)
		return
	}

	outcome := "complete"
	if page.MoreComing {
		outcome = "partial"
	}
	h.metrics.ChangePage(outcome)

	resp := api.ChangesResponse{
		Token:      strconv.FormatInt(page.Seq, 10),
		Changed:    make([]api.Record, 0, len(page.Changed)),
		MoreComing: page.MoreComing,
	}
	for _, rec := range page.Changed {
		resp.Changed = append(resp.Changed, toAPIRecord(rec))
	}
	for _, key := range page.Deleted {
		resp.Deleted = append(resp.Deleted, api.RecordID{RecordName: key.Name, RecordType: key.Type})
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// parseToken: пустой токен означает ленту с начала
func parseToken(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	seq, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid change token %q: %w", token, err)
	}
	if seq < 0 {
		return 0, fmt.Errorf("invalid change token %q", token)
	}
	return seq, nil
}

func fromModifyRequest(req api.ModifyRequest) ([]*storage.Record, []storage.RecordKey, error) {
	seen := make(map[string]bool, len(req.Records)+len(req.Deletions))
	check := func(name, recordType string) error {
		if name == "" || recordType == "" {
			return errors.New("record_name and record_type are required")
		}
		if err := validation.ValidateRecordName(name); err != nil {
			return err
		}
		if err := validation.ValidateRecordType(recordType); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("record %s appears more than once", name)
		}
		seen[name] = true
		return nil
	}

	records := make([]*storage.Record, 0, len(req.Records))
	for _, rec := range req.Records {
		if err := check(rec.RecordName, rec.RecordType); err != nil {
			return nil, nil, err
		}
		records = append(records, &storage.Record{
			Name:      rec.RecordName,
			Type:      rec.RecordType,
			ChangeTag: rec.ChangeTag,
			Fields:    rec.Fields,
		})
	}

	deletions := make([]storage.RecordKey, 0, len(req.Deletions))
	for _, id := range req.Deletions {
		if err := check(id.RecordName, id.RecordType); err != nil {
			return nil, nil, err
		}
		deletions = append(deletions, storage.RecordKey{Name: id.RecordName, Type: id.RecordType})
	}
	return records, deletions, nil
}

// partialFailure: конфликтные записи получают серверную версию, остальные
// отклонены вместе с пакетом
func partialFailure(req api.ModifyRequest, conflict *storage.ConflictError) api.ErrorResponse {
	resp := api.ErrorResponse{
		Error:     api.CodePartialFailure,
		Message:   conflict.Error(),
		PerRecord: make(map[string]api.RecordError, len(req.Records)+len(req.Deletions)),
	}

	failed := api.RecordError{Error: api.CodeBatchRequestFailed, Message: "batch rejected"}
	for _, rec := range req.Records {
		current, ok := conflict.Conflicts[rec.RecordName]
		if !ok {
			resp.PerRecord[rec.RecordName] = failed
			continue
		}
		server := toAPIRecord(current)
		resp.PerRecord[rec.RecordName] = api.RecordError{
			Error:        api.CodeServerRecordChanged,
			Message:      "server record changed",
			ServerRecord: &server,
		}
	}
	for _, id := range req.Deletions {
		resp.PerRecord[id.RecordName] = failed
	}
	return resp
}

func toAPIRecord(rec *storage.Record) api.Record {
	return api.Record{
		RecordName: rec.Name,
		RecordType: rec.Type,
		ChangeTag:  rec.ChangeTag,
		Fields:     rec.Fields,
		ModifiedAt: rec.ModifiedAt,
	}
}
