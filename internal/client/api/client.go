package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/shelfsync/internal/client/remote"
	"github.com/iudanet/shelfsync/pkg/api"
)

// DefaultNetworkRetryDelay пауза перед повтором после сбоя соединения
const DefaultNetworkRetryDelay = 5 * time.Second

// Client представляет HTTP клиент сервиса записей
type Client struct {
	httpClient        *http.Client
	logger            *slog.Logger
	now               func() time.Time
	baseURL           string
	token             string
	networkRetryDelay time.Duration
}

// NewClient создает новый API клиент. token передается как Bearer токен.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:           baseURL,
		token:             token,
		logger:            logger,
		now:               time.Now,
		networkRetryDelay: DefaultNetworkRetryDelay,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetNetworkRetryDelay задает паузу, с которой сбои соединения помечаются
// как повторяемые. Сервер такие ошибки не описывает, поэтому задержку
// назначает клиент.
func (c *Client) SetNetworkRetryDelay(d time.Duration) {
	c.networkRetryDelay = d
}

func zonePath(zone string) string {
	return "/api/v1/zones/" + url.PathEscape(zone)
}

// CreateZone создает зону (повторное создание не является ошибкой)
func (c *Client) CreateZone(ctx context.Context, zone string) error {
	if err := c.doRequest(ctx, http.MethodPut, zonePath(zone), nil, nil); err != nil {
		return fmt.Errorf("create zone request failed: %w", err)
	}
	return nil
}

// ZoneExists проверяет существование зоны
func (c *Client) ZoneExists(ctx context.Context, zone string) (bool, error) {
	err := c.doRequest(ctx, http.MethodGet, zonePath(zone), nil, nil)
	if remote.CodeOf(err) == remote.CodeZoneNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check zone request failed: %w", err)
	}
	return true, nil
}

// CreateSubscription регистрирует подписку на изменения зоны
func (c *Client) CreateSubscription(ctx context.Context, zone, subscriptionID string) error {
	path := zonePath(zone) + "/subscriptions/" + url.PathEscape(subscriptionID)
	if err := c.doRequest(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("create subscription request failed: %w", err)
	}
	return nil
}

// SubscriptionExists проверяет существование подписки
func (c *Client) SubscriptionExists(ctx context.Context, zone, subscriptionID string) (bool, error) {
	path := zonePath(zone) + "/subscriptions/" + url.PathEscape(subscriptionID)
	err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	switch remote.CodeOf(err) {
	case remote.CodeSubscriptionNotFound, remote.CodeZoneNotFound:
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check subscription request failed: %w", err)
	}
	return true, nil
}

// ModifyRecords атомарно сохраняет записи и удаляет ids
func (c *Client) ModifyRecords(ctx context.Context, zone string, records []*remote.Record, deletions []remote.RecordID) (*remote.ModifyResult, error) {
	req := api.ModifyRequest{
		Records:   make([]api.Record, 0, len(records)),
		Deletions: make([]api.RecordID, 0, len(deletions)),
	}
	for _, r := range records {
		req.Records = append(req.Records, toAPIRecord(r))
	}
	for _, id := range deletions {
		req.Deletions = append(req.Deletions, api.RecordID{RecordName: id.RecordName, RecordType: id.RecordType})
	}

	var resp api.ModifyResponse
	err := c.doRequest(ctx, http.MethodPost, zonePath(zone)+"/records/modify", req, &resp)
	if err != nil {
		return nil, c.withZone(zone, fmt.Errorf("modify records request failed: %w", err))
	}

	result := &remote.ModifyResult{}
	for _, r := range resp.Saved {
		result.Saved = append(result.Saved, fromAPIRecord(zone, r))
	}
	for _, id := range resp.Deleted {
		result.Deleted = append(result.Deleted, remote.RecordID{ZoneName: zone, RecordName: id.RecordName, RecordType: id.RecordType})
	}
	return result, nil
}

// FetchChanges получает одну страницу ленты изменений после token
func (c *Client) FetchChanges(ctx context.Context, zone string, token remote.ChangeToken) (*remote.ChangesPage, error) {
	path := zonePath(zone) + "/changes"
	if token != "" {
		path += "?token=" + url.QueryEscape(string(token))
	}

	var resp api.ChangesResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch changes request failed: %w", err)
	}

	page := &remote.ChangesPage{
		Token:      remote.ChangeToken(resp.Token),
		MoreComing: resp.MoreComing,
	}
	for _, r := range resp.Changed {
		page.Changed = append(page.Changed, fromAPIRecord(zone, r))
	}
	for _, id := range resp.Deleted {
		page.Deleted = append(page.Deleted, remote.DeletedRecord{
			ID: remote.RecordID{ZoneName: zone, RecordName: id.RecordName, RecordType: id.RecordType},
		})
	}
	return page, nil
}

// withZone дописывает зону в серверные записи конфликтов
func (c *Client) withZone(zone string, err error) error {
	var rerr *remote.Error
	if !errors.As(err, &rerr) {
		return err
	}
	for _, outcome := range rerr.PerRecord {
		if outcome.ServerRecord != nil {
			outcome.ServerRecord.ID.ZoneName = zone
		}
	}
	return err
}

// doRequest выполняет HTTP запрос. Ответы с ошибкой возвращаются как *remote.Error.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.networkError(ctx, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.networkError(ctx, err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := c.decodeError(resp, respBody)
		c.logger.Debug("Request rejected", "method", method, "path", path, "status", resp.StatusCode, "code", rerr.Code)
		return rerr
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// networkError помечает сбой соединения как повторяемый.
// Отмена контекста вызывающим не повторяется.
func (c *Client) networkError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request cancelled: %w", ctxErr)
	}
	c.logger.Warn("Network failure", "error", err, "retry_after", c.networkRetryDelay)
	return &remote.Error{Code: remote.CodeNetworkFailure, Message: err.Error(), RetryAfter: c.networkRetryDelay}
}

// decodeError переводит ответ с ошибкой в *remote.Error
func (c *Client) decodeError(resp *http.Response, body []byte) *remote.Error {
	rerr := &remote.Error{Code: codeForStatus(resp.StatusCode)}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		rerr.Code = remote.Code(errResp.Error)
		rerr.Message = errResp.Message
		if errResp.RetryAfterSeconds > 0 {
			rerr.RetryAfter = time.Duration(errResp.RetryAfterSeconds) * time.Second
		}
		if errResp.PerRecord != nil {
			rerr.PerRecord = make(map[string]*remote.Error, len(errResp.PerRecord))
			for name, outcome := range errResp.PerRecord {
				perRecord := &remote.Error{Code: remote.Code(outcome.Error), Message: outcome.Message}
				if outcome.ServerRecord != nil {
					perRecord.ServerRecord = fromAPIRecord("", *outcome.ServerRecord)
				}
				rerr.PerRecord[name] = perRecord
			}
		}
	} else {
		rerr.Message = string(bytes.TrimSpace(body))
	}

	if rerr.RetryAfter == 0 {
		rerr.RetryAfter = c.parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return rerr
}

// parseRetryAfter понимает оба формата заголовка: секунды и HTTP дату
func (c *Client) parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(c.now()); d > 0 {
			return d
		}
	}
	return 0
}

func codeForStatus(status int) remote.Code {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return remote.CodeUnauthorized
	case status == http.StatusNotFound:
		return remote.CodeUnknownItem
	case status == http.StatusGone:
		return remote.CodeChangeTokenExpired
	case status == http.StatusRequestEntityTooLarge:
		return remote.CodeLimitExceeded
	case status == http.StatusTooManyRequests:
		return remote.CodeRateLimited
	case status == http.StatusServiceUnavailable:
		return remote.CodeServiceUnavailable
	case status >= 500:
		return remote.CodeInternal
	default:
		return remote.CodeBadRequest
	}
}

func toAPIRecord(r *remote.Record) api.Record {
	return api.Record{
		RecordName: r.ID.RecordName,
		RecordType: r.ID.RecordType,
		ChangeTag:  r.ChangeTag,
		Fields:     r.Fields,
	}
}

func fromAPIRecord(zone string, a api.Record) *remote.Record {
	r := remote.NewRecord(remote.RecordID{ZoneName: zone, RecordName: a.RecordName, RecordType: a.RecordType})
	r.ChangeTag = a.ChangeTag
	for k, v := range a.Fields {
		r.Fields[k] = v
	}
	return r
}

var _ remote.Backend = (*Client)(nil)
