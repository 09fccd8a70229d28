package rest

import (
	"encoding/json"
	"time"

	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type itemResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ReleaseAt        *time.Time      `json:"release_at"`
	ReleasePrecision string          `json:"release_precision"`
	ReleaseText      *string         `json:"release_text,omitempty"`
	StoreURL         string          `json:"store_url"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toItemResponse(item domain.CatalogItem) itemResponse {
	return itemResponse{
		ID:               item.ID,
		Name:             item.Name,
		ReleaseAt:        item.ReleaseAt,
		ReleasePrecision: string(item.ReleasePrecision),
		ReleaseText:      item.ReleaseText,
		StoreURL:         item.StoreURL(),
		Metadata:         item.Metadata,
		UpdatedAt:        item.UpdatedAt,
	}
}

type matchResponse struct {
	Item  itemResponse `json:"item"`
	Score float64      `json:"score"`
}

func toMatchResponse(m domain.Match) matchResponse {
	return matchResponse{Item: toItemResponse(m.Item), Score: m.Score}
}

type subscriptionResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	ItemID           string     `json:"item_id"`
	ItemName         string     `json:"item_name,omitempty"`
	ReleaseAt        *time.Time `json:"release_at"`
	ReleasePrecision string     `json:"release_precision,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	NotifiedAt       *time.Time `json:"notified_at"`
}

func toSubscriptionResponse(v domain.SubscriptionView) subscriptionResponse {
	return subscriptionResponse{
		ID:               v.ID.String(),
		UserID:           v.UserID,
		ItemID:           v.ItemID,
		ItemName:         v.ItemName,
		ReleaseAt:        v.ReleaseAt,
		ReleasePrecision: string(v.ReleasePrecision),
		CreatedAt:        v.CreatedAt,
		NotifiedAt:       v.NotifiedAt,
	}
}

type approvalResponse struct {
	UserID         string     `json:"user_id"`
	State          string     `json:"state"`
	RequestedAt    time.Time  `json:"requested_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	DecidedAt      *time.Time `json:"decided_at"`
}

func toApprovalResponse(rec domain.ApprovalRecord) approvalResponse {
	return approvalResponse{
		UserID:         rec.UserID,
		State:          string(rec.State),
		RequestedAt:    rec.RequestedAt,
		LastActivityAt: rec.LastActivityAt,
		DecidedAt:      rec.DecidedAt,
	}
}

type fulfillmentResponse struct {
	Decision string `json:"decision"`
	Status   string `json:"status,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Title    string `json:"title,omitempty"`
}

func toFulfillmentResponse(out domain.FulfillmentOutcome) fulfillmentResponse {
	resp := fulfillmentResponse{Decision: out.Decision.String()}
	if out.Result != nil {
		resp.Status = string(out.Result.Status)
		resp.Reason = out.Result.Reason
		resp.Title = out.Result.Title
	}
	return resp
}
