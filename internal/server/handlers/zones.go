package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/shelfsync/internal/server/storage"
	"github.com/iudanet/shelfsync/internal/validation"
	"github.com/iudanet/shelfsync/pkg/api"
)

// ZoneHandler обрабатывает запросы зон и подписок
type ZoneHandler struct {
	logger *slog.Logger
	zones  storage.ZoneStorage
}

// NewZoneHandler создает новый handler зон
func NewZoneHandler(logger *slog.Logger, zones storage.ZoneStorage) *ZoneHandler {
	return &ZoneHandler{
		logger: logger,
		zones:  zones,
	}
}

// CreateZone обрабатывает PUT /api/v1/zones/{zone}
// Создание существующей зоны не является ошибкой
func (h *ZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(h.logger, w, r)
	if !ok {
		return
	}
	name := r.PathValue("zone")
	if rejectInvalid(h.logger, w, validation.ValidateZoneName(name)) {
		return
	}

	zone, err := h.zones.CreateZone(r.Context(), owner, name)
	if err != nil {
		sendStorageError(h.logger, r, w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "zone ready", slog.String("owner", owner), slog.String("zone", name))
	sendJSON(h.logger, w, api.ZoneResponse{Zone: zone.Name, CreatedAt: zone.CreatedAt}, http.StatusOK)
}

// GetZone обрабатывает GET /api/v1/zones/{zone}
func (h *ZoneHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(h.logger, w, r)
	if !ok {
		return
	}

	zone, err := h.zones.GetZone(r.Context(), owner, r.PathValue("zone"))
	if err != nil {
		sendStorageError(h.logger, r, w, err)
		return
	}
	sendJSON(h.logger, w, api.ZoneResponse{Zone: zone.Name, CreatedAt: zone.CreatedAt}, http.StatusOK)
}

// CreateSubscription обрабатывает PUT /api/v1/zones/{zone}/subscriptions/{id}
func (h *ZoneHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(h.logger, w, r)
	if !ok {
		return
	}

	zone, id := r.PathValue("zone"), r.PathValue("id")
	if rejectInvalid(h.logger, w, validation.ValidateZoneName(zone), validation.ValidateSubscriptionID(id)) {
		return
	}

	sub, err := h.zones.CreateSubscription(r.Context(), owner, zone, id)
	if err != nil {
		sendStorageError(h.logger, r, w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "subscription ready",
		slog.String("owner", owner),
		slog.String("zone", sub.Zone),
		slog.String("subscription_id", sub.ID))
	sendJSON(h.logger, w, toSubscriptionResponse(sub), http.StatusOK)
}

// GetSubscription обрабатывает GET /api/v1/zones/{zone}/subscriptions/{id}
func (h *ZoneHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(h.logger, w, r)
	if !ok {
		return
	}

	sub, err := h.zones.GetSubscription(r.Context(), owner, r.PathValue("zone"), r.PathValue("id"))
	if err != nil {
		sendStorageError(h.logger, r, w, err)
		return
	}
	sendJSON(h.logger, w, toSubscriptionResponse(sub), http.StatusOK)
}

func toSubscriptionResponse(sub *storage.Subscription) api.SubscriptionResponse {
	return api.SubscriptionResponse{
		Zone:           sub.Zone,
		SubscriptionID: sub.ID,
		CreatedAt:      sub.CreatedAt,
	}
}
