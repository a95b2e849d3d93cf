// Package service orchestrates custody record operations: category
// resolution through the participant registry, aggregate mutation under the
// store's per-record lock, and audit/metrics side effects after commit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	custodymetrics "custodia/internal/custody/metrics"
	"custodia/internal/custody/models"
	"custodia/internal/decision"
	"custodia/internal/registry"
	id "custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/audit"
	"custodia/pkg/platform/sentinel"
	"custodia/pkg/requestcontext"
)

// RecordStore persists custody records. Execute must serialize writers per
// record and commit fn's changes all-or-nothing.
type RecordStore interface {
	Create(ctx context.Context, record *models.CustodyRecord) error
	Find(ctx context.Context, itemID id.ItemID) (*models.CustodyRecord, error)
	Execute(ctx context.Context, itemID id.ItemID, fn func(record *models.CustodyRecord) error) (*models.CustodyRecord, error)
}

// AuditPublisher emits audit events after committed mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the custody module.
type Service struct {
	records        RecordStore
	registry       registry.Registry
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *custodymetrics.Metrics
	tracer         trace.Tracer
}

// Option configures a Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithMetrics(m *custodymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(records RecordStore, reg registry.Registry, opts ...Option) *Service {
	s := &Service{
		records:  records,
		registry: reg,
		tracer:   otel.Tracer("custodia/custody"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRecord creates a custody record for an item with its genesis
// handover (vendor -> first holder) already logged. The caller identity from
// context becomes the record's primary authority.
func (s *Service) CreateRecord(
	ctx context.Context,
	itemID id.ItemID,
	vendorID id.PartyID,
	firstHolderID id.PartyID,
) (*models.CustodyRecord, error) {
	ctx, span := s.tracer.Start(ctx, "custody.CreateRecord")
	defer span.End()

	authority, err := callerAuthority(ctx)
	if err != nil {
		return nil, err
	}
	category, err := s.registry.CategoryOf(ctx, firstHolderID)
	if err != nil {
		return nil, err
	}

	record, err := models.NewCustodyRecord(itemID, vendorID, firstHolderID, category, authority, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "custody record for item %s already exists", itemID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create custody record")
	}

	s.logAudit(ctx, audit.Event{
		Action: audit.ActionRecordCreated,
		ItemID: itemID.String(),
		Actor:  authority.String(),
		FromID: vendorID.String(),
		ToID:   firstHolderID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementRecordsCreated()
	}
	return record, nil
}

// LogHandover appends a custody transfer to the item's record and returns the
// appended event.
func (s *Service) LogHandover(
	ctx context.Context,
	itemID id.ItemID,
	fromID id.PartyID,
	toID id.PartyID,
) (models.HandoverEvent, error) {
	ctx, span := s.tracer.Start(ctx, "custody.LogHandover")
	defer span.End()

	authority, err := callerAuthority(ctx)
	if err != nil {
		return models.HandoverEvent{}, err
	}
	category, err := s.registry.CategoryOf(ctx, toID)
	if err != nil {
		return models.HandoverEvent{}, err
	}

	now := requestcontext.Now(ctx)
	var event models.HandoverEvent
	_, err = s.records.Execute(ctx, itemID, func(record *models.CustodyRecord) error {
		appended, err := record.LogHandover(authority, fromID, toID, category, now)
		if err != nil {
			return err
		}
		event = appended
		return nil
	})
	if err != nil {
		return models.HandoverEvent{}, wrapRecordErr(err, itemID)
	}

	s.logAudit(ctx, audit.Event{
		Action: audit.ActionHandoverLogged,
		ItemID: itemID.String(),
		Actor:  authority.String(),
		FromID: fromID.String(),
		ToID:   toID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementHandoversLogged()
	}
	return event, nil
}

// RecordTransitConditions attaches an environmental reading to the logged leg
// matching (fromID, toID, when) exactly.
func (s *Service) RecordTransitConditions(
	ctx context.Context,
	itemID id.ItemID,
	fromID id.PartyID,
	toID id.PartyID,
	when time.Time,
	temperature float64,
	carrierCategory id.Category,
) error {
	ctx, span := s.tracer.Start(ctx, "custody.RecordTransitConditions")
	defer span.End()

	authority, err := callerAuthority(ctx)
	if err != nil {
		return err
	}

	_, err = s.records.Execute(ctx, itemID, func(record *models.CustodyRecord) error {
		return record.AttachTransitConditions(authority, fromID, toID, when, temperature, carrierCategory)
	})
	if err != nil {
		return wrapRecordErr(err, itemID)
	}

	s.logAudit(ctx, audit.Event{
		Action: audit.ActionConditionsRecorded,
		ItemID: itemID.String(),
		Actor:  authority.String(),
		FromID: fromID.String(),
		ToID:   toID.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementConditionsRecorded()
	}
	return nil
}

// GetRecord returns the item's full custody record.
func (s *Service) GetRecord(ctx context.Context, itemID id.ItemID) (*models.CustodyRecord, error) {
	ctx, span := s.tracer.Start(ctx, "custody.GetRecord")
	defer span.End()

	record, err := s.records.Find(ctx, itemID)
	if err != nil {
		return nil, wrapRecordErr(err, itemID)
	}
	return record, nil
}

// LastHandover returns the most recently appended event for the item.
func (s *Service) LastHandover(ctx context.Context, itemID id.ItemID) (models.HandoverEvent, error) {
	record, err := s.GetRecord(ctx, itemID)
	if err != nil {
		return models.HandoverEvent{}, err
	}
	return record.LastHandover(), nil
}

// HandoverAt returns the event at the given log position for the item.
func (s *Service) HandoverAt(ctx context.Context, itemID id.ItemID, index int) (models.HandoverEvent, error) {
	record, err := s.GetRecord(ctx, itemID)
	if err != nil {
		return models.HandoverEvent{}, err
	}
	return record.HandoverAt(index)
}

// CheckPurchasability recomputes the eligibility verdict from the record's
// current log. Verdicts are never stored.
func (s *Service) CheckPurchasability(ctx context.Context, itemID id.ItemID) ([]id.PurchasabilityCode, error) {
	ctx, span := s.tracer.Start(ctx, "custody.CheckPurchasability")
	defer span.End()

	record, err := s.records.Find(ctx, itemID)
	if err != nil {
		return nil, wrapRecordErr(err, itemID)
	}
	codes := decision.Evaluate(record)
	if s.metrics != nil {
		s.metrics.ObservePurchasability(len(codes) == 1 && codes[0] == id.CodeValidForPurchase)
	}
	return codes, nil
}

func callerAuthority(ctx context.Context) (id.AuthorityID, error) {
	authority := requestcontext.Authority(ctx)
	if authority.IsNil() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	return authority, nil
}

// wrapRecordErr translates store sentinels into domain errors and passes
// custody rule violations through verbatim.
func wrapRecordErr(err error, itemID id.ItemID) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeNotFound, "no custody record for item %s", itemID)
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "custody store failure")
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event.Action),
			"item_id", event.ItemID,
			"actor", event.Actor,
			"request_id", event.RequestID,
			"log_type", "audit",
		)
	}
	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, event)
	}
}
