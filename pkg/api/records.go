package api

import (
	"encoding/json"
	"time"
)

// RecordID идентифицирует запись внутри зоны
type RecordID struct {
	RecordName string `json:"record_name"`
	RecordType string `json:"record_type"`
}

// Record представляет запись зоны на проводе
type Record struct {
	Fields     map[string]json.RawMessage `json:"fields"`
	ModifiedAt time.Time                  `json:"modified_at,omitzero"`
	RecordName string                     `json:"record_name"`
	RecordType string                     `json:"record_type"`
	ChangeTag  string                     `json:"change_tag,omitempty"` // ChangeTag пустой для записей, которых клиент ещё не видел на сервере
}

// ModifyRequest атомарная запись пакета: либо применяется целиком, либо ничего
type ModifyRequest struct {
	Records   []Record   `json:"records"`
	Deletions []RecordID `json:"deletions,omitempty"`
}

// ModifyResponse содержит сохранённые версии записей с новыми change tag
type ModifyResponse struct {
	Saved   []Record   `json:"saved"`
	Deleted []RecordID `json:"deleted,omitempty"`
}

// ChangesResponse одна страница ленты изменений зоны
type ChangesResponse struct {
	Token      string     `json:"token"`
	Changed    []Record   `json:"changed"`
	Deleted    []RecordID `json:"deleted,omitempty"`
	MoreComing bool       `json:"more_coming"`
}

// ZoneResponse описывает зону
type ZoneResponse struct {
	CreatedAt time.Time `json:"created_at"`
	Zone      string    `json:"zone"`
}

// SubscriptionResponse описывает подписку на изменения зоны
type SubscriptionResponse struct {
	CreatedAt      time.Time `json:"created_at"`
	Zone           string    `json:"zone"`
	SubscriptionID string    `json:"subscription_id"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
