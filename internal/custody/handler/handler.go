// Package handler is the thin HTTP layer over the custody service. It
// delegates to the service without embedding custody rules so transport
// concerns stay isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"custodia/internal/custody/models"
	id "custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/httputil"
)

// Service is the custody service surface the handler depends on.
type Service interface {
	CreateRecord(ctx context.Context, itemID id.ItemID, vendorID, firstHolderID id.PartyID) (*models.CustodyRecord, error)
	GetRecord(ctx context.Context, itemID id.ItemID) (*models.CustodyRecord, error)
	LogHandover(ctx context.Context, itemID id.ItemID, fromID, toID id.PartyID) (models.HandoverEvent, error)
	RecordTransitConditions(ctx context.Context, itemID id.ItemID, fromID, toID id.PartyID, when time.Time, temperature float64, carrierCategory id.Category) error
	LastHandover(ctx context.Context, itemID id.ItemID) (models.HandoverEvent, error)
	HandoverAt(ctx context.Context, itemID id.ItemID, index int) (models.HandoverEvent, error)
	CheckPurchasability(ctx context.Context, itemID id.ItemID) ([]id.PurchasabilityCode, error)
}

// Handler wires HTTP endpoints to the custody service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a Handler.
func New(s Service, logger *slog.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

// Register mounts the custody routes on the router. Auth middleware is
// expected to run before these handlers.
func (h *Handler) Register(r chi.Router) {
	r.Post("/records", h.createRecord)
	r.Route("/records/{itemID}", func(r chi.Router) {
		r.Get("/", h.getRecord)
		r.Post("/handovers", h.logHandover)
		r.Get("/handovers/last", h.lastHandover)
		r.Get("/handovers/{index}", h.handoverAt)
		r.Post("/conditions", h.recordConditions)
		r.Get("/purchasability", h.purchasability)
	})
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	req.Normalize()
	itemID, vendorID, firstHolderID, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.CreateRecord(r.Context(), itemID, vendorID, firstHolderID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(record))
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetRecord(r.Context(), itemIDParam(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *Handler) logHandover(w http.ResponseWriter, r *http.Request) {
	var req LogHandoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	req.Normalize()
	fromID, toID, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.service.LogHandover(r.Context(), itemIDParam(r), fromID, toID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *Handler) recordConditions(w http.ResponseWriter, r *http.Request) {
	var req RecordConditionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	req.Normalize()
	fromID, toID, category, err := req.Validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	err = h.service.RecordTransitConditions(r.Context(), itemIDParam(r), fromID, toID, req.When, req.Temperature, category)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lastHandover(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.LastHandover(r.Context(), itemIDParam(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handler) handoverAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "handover index must be an integer"))
		return
	}
	event, err := h.service.HandoverAt(r.Context(), itemIDParam(r), index)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handler) purchasability(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.CheckPurchasability(r.Context(), itemIDParam(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	httputil.WriteJSON(w, http.StatusOK, purchasabilityResponse{Codes: out})
}

func itemIDParam(r *http.Request) id.ItemID {
	return id.ItemID(chi.URLParam(r, "itemID"))
}

// recordResponse summarizes a custody record without exposing the aggregate.
type recordResponse struct {
	ItemID    string          `json:"item_id"`
	VendorID  string          `json:"vendor_id"`
	Authority string          `json:"authority"`
	Handovers []eventResponse `json:"handovers"`
}

type eventResponse struct {
	FromID            string              `json:"from_id"`
	ToID              string              `json:"to_id"`
	ToCategory        string              `json:"to_category"`
	Timestamp         time.Time           `json:"timestamp"`
	TransitConditions []conditionResponse `json:"transit_conditions"`
}

type conditionResponse struct {
	Temperature     float64 `json:"temperature"`
	CarrierCategory string  `json:"carrier_category"`
}

type purchasabilityResponse struct {
	Codes []string `json:"codes"`
}

func toRecordResponse(record *models.CustodyRecord) recordResponse {
	events := record.Handovers()
	out := recordResponse{
		ItemID:    record.ItemID().String(),
		VendorID:  record.Vendor().String(),
		Authority: record.Primary().String(),
		Handovers: make([]eventResponse, len(events)),
	}
	for i, e := range events {
		out.Handovers[i] = toEventResponse(e)
	}
	return out
}

func toEventResponse(e models.HandoverEvent) eventResponse {
	conditions := make([]conditionResponse, len(e.TransitConditions))
	for i, c := range e.TransitConditions {
		conditions[i] = conditionResponse{
			Temperature:     c.Temperature,
			CarrierCategory: c.CarrierCategory.String(),
		}
	}
	return eventResponse{
		FromID:            e.FromID.String(),
		ToID:              e.ToID.String(),
		ToCategory:        e.ToCategory.String(),
		Timestamp:         e.Timestamp,
		TransitConditions: conditions,
	}
}
