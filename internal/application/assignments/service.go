// Package assignments orchestrates assignment records: creation, round-ledger
// operations, approval and projections. All mutations are version-guarded and
// run inside one database transaction; the two-record transfer commits both
// ledger appends at a single point, so success is only ever reported once
// both sides are durable.
package assignments

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"armory-backend/internal/approval"
	"armory-backend/internal/constants"
	"armory-backend/internal/domain"
	"armory-backend/internal/ledger"
	"armory-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service encapsulates assignment operations.
type Service struct {
	DB *gorm.DB
	// Now supplies timestamps where the caller did not (approval stamps).
	// Defaults to time.Now; tests inject a fixed clock.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Actor is the authenticated user performing an operation. It is always
// passed explicitly; nothing in this package reads identity from ambient
// state.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// AssetInit pairs an asset with its initial round quantity. The quantity is
// required (and positive) for round-tracked assets and ignored otherwise.
type AssetInit struct {
	AssetID       uuid.UUID `json:"asset_id"`
	InitialRounds int       `json:"initial_rounds"`
}

// CreateInput carries everything needed to open a pending assignment.
type CreateInput struct {
	Holder domain.HolderRef
	Assets []AssetInit
	Reason string
	Date   time.Time
}

// LedgerOpInput is the common shape of issue/consume/return commands coming
// from callers. Shells is only meaningful for consume.
type LedgerOpInput struct {
	Quantity int
	Shells   int
	Reason   string
	Date     time.Time
}

// TransferInput moves custody of the whole assignment, with Quantity rounds
// travelling along.
type TransferInput struct {
	Quantity int
	To       domain.HolderRef
	Reason   string
	Date     time.Time
}

// RecordView is a record plus its derived ledger projection.
type RecordView struct {
	Record  domain.AssignmentRecord `json:"record"`
	History []domain.RoundEntry     `json:"history"`
	Totals  ledger.Totals           `json:"totals"`
}

// OpResult is returned by single-record ledger operations.
type OpResult struct {
	RecordView
	Entry         domain.RoundEntry `json:"entry"`
	FullyConsumed bool              `json:"fully_consumed"`
}

// TransferResult carries both sides of a completed transfer.
type TransferResult struct {
	Source      RecordView `json:"source"`
	Destination RecordView `json:"destination"`
}

// Create opens a pending assignment record. For each round-tracked asset an
// issue entry seeds the ledger from the caller-supplied per-asset quantity.
func (s *Service) Create(ctx context.Context, in CreateInput, actor Actor) (*RecordView, error) {
	if in.Reason == "" {
		return nil, apperr.Validation("reason", "a reason is required")
	}
	if in.Date.IsZero() {
		return nil, apperr.Validation("date", "a valid date is required")
	}
	if len(in.Assets) == 0 {
		return nil, apperr.Validation("assets", "at least one asset is required")
	}
	seen := make(map[uuid.UUID]bool, len(in.Assets))
	for _, a := range in.Assets {
		if seen[a.AssetID] {
			return nil, apperr.Validation("assets", "an asset may appear only once per record")
		}
		seen[a.AssetID] = true
	}

	var view *RecordView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := holderExists(tx, in.Holder); err != nil {
			return err
		}

		record := domain.AssignmentRecord{
			HolderType:   in.Holder.Type,
			HolderID:     in.Holder.ID,
			Version:      1,
			CreatedBy:    actor.ID,
			LastEditedBy: actor.ID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var history []domain.RoundEntry
		for i, a := range in.Assets {
			var asset domain.Asset
			if err := tx.Where("asset_id = ?", a.AssetID).First(&asset).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Validation("assets", "asset does not exist")
				}
				return err
			}
			if err := tx.Create(&domain.AssignmentAsset{
				AssignmentID: record.AssignmentID,
				AssetID:      asset.AssetID,
				Position:     i,
			}).Error; err != nil {
				return err
			}
			if !asset.TracksRounds() {
				continue
			}
			entry, err := ledger.Issue(history, ledger.IssueCommand{
				Quantity: a.InitialRounds,
				Reason:   in.Reason,
				Date:     in.Date,
				Actor:    actor.ID,
			})
			if err != nil {
				return err
			}
			entry.AssignmentID = record.AssignmentID
			entry.Seq = len(history) + 1
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			history = append(history, entry)
		}

		if err := appendEvent(tx, record.AssignmentID, domain.EventCreated, actor.ID, map[string]interface{}{
			"holder_type": in.Holder.Type,
			"holder_id":   in.Holder.ID,
			"assets":      in.Assets,
			"reason":      in.Reason,
		}); err != nil {
			return err
		}

		if err := tx.Preload("Assets").Where("assignment_id = ?", record.AssignmentID).First(&record).Error; err != nil {
			return err
		}
		view = &RecordView{Record: record, History: history, Totals: ledger.ComputeTotals(history)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Issue appends rounds to a record's ledger.
func (s *Service) Issue(ctx context.Context, id uuid.UUID, expectedVersion int64, in LedgerOpInput, actor Actor) (*OpResult, error) {
	return s.applySingle(ctx, id, expectedVersion, actor, domain.EventIssued,
		func(history []domain.RoundEntry) (domain.RoundEntry, bool, error) {
			entry, err := ledger.Issue(history, ledger.IssueCommand{
				Quantity: in.Quantity, Reason: in.Reason, Date: in.Date, Actor: actor.ID,
			})
			return entry, false, err
		})
}

// Consume records rounds fired. The result flags complete consumption when
// the operation landed exactly on the available balance.
func (s *Service) Consume(ctx context.Context, id uuid.UUID, expectedVersion int64, in LedgerOpInput, actor Actor) (*OpResult, error) {
	return s.applySingle(ctx, id, expectedVersion, actor, domain.EventConsumed,
		func(history []domain.RoundEntry) (domain.RoundEntry, bool, error) {
			res, err := ledger.Consume(history, ledger.ConsumeCommand{
				Quantity: in.Quantity, Shells: in.Shells, Reason: in.Reason, Date: in.Date, Actor: actor.ID,
			})
			return res.Entry, res.FullyConsumed, err
		})
}

// Return retires rounds from the holder's pool.
func (s *Service) Return(ctx context.Context, id uuid.UUID, expectedVersion int64, in LedgerOpInput, actor Actor) (*OpResult, error) {
	return s.applySingle(ctx, id, expectedVersion, actor, domain.EventReturned,
		func(history []domain.RoundEntry) (domain.RoundEntry, bool, error) {
			entry, err := ledger.Return(history, ledger.ReturnCommand{
				Quantity: in.Quantity, Reason: in.Reason, Date: in.Date, Actor: actor.ID,
			})
			return entry, false, err
		})
}

// applySingle runs one single-record ledger operation: load, normalize legacy
// totals, validate, append, bump version, emit the audit event.
func (s *Service) applySingle(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	actor Actor,
	eventType string,
	validate func(history []domain.RoundEntry) (domain.RoundEntry, bool, error),
) (*OpResult, error) {
	var result *OpResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, history, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		tracked, err := hasRoundTrackedAsset(tx, record.AssignmentID)
		if err != nil {
			return err
		}
		if !tracked {
			return apperr.Validation("assets", "record has no round-tracked asset")
		}

		entry, fully, err := validate(history)
		if err != nil {
			return s.surface(err, id)
		}
		entry.AssignmentID = record.AssignmentID
		entry.Seq = len(history) + 1
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		history = append(history, entry)

		if err := bumpVersion(tx, record, expectedVersion, actor.ID); err != nil {
			return err
		}
		if err := appendEvent(tx, record.AssignmentID, eventType, actor.ID, map[string]interface{}{
			"kind":             entry.Kind,
			"assigned_rounds":  entry.AssignedRounds,
			"consumed_rounds":  entry.ConsumedRounds,
			"shells_collected": entry.ShellsCollected,
			"reason":           entry.Reason,
		}); err != nil {
			return err
		}

		if err := tx.Preload("Assets").Where("assignment_id = ?", id).First(record).Error; err != nil {
			return err
		}
		result = &OpResult{
			RecordView:    RecordView{Record: *record, History: history, Totals: ledger.ComputeTotals(history)},
			Entry:         entry,
			FullyConsumed: fully,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer moves custody of the assignment (assets and travelling rounds) to
// another holder. Both ledger appends and the asset re-link share one commit;
// the quantity bound is re-derived from the stored source history here, never
// taken from the caller.
func (s *Service) Transfer(ctx context.Context, id uuid.UUID, expectedVersion int64, in TransferInput, actor Actor) (*TransferResult, error) {
	var result *TransferResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, sourceHistory, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := holderExists(tx, in.To); err != nil {
			return err
		}

		entries, err := ledger.Transfer(sourceHistory, ledger.TransferCommand{
			Quantity: in.Quantity,
			Reason:   in.Reason,
			Date:     in.Date,
			Actor:    actor.ID,
			From:     source.Holder(),
			To:       in.To,
		})
		if err != nil {
			return s.surface(err, id)
		}

		// Source side: append transfer-out, bump version.
		entries.Out.AssignmentID = source.AssignmentID
		entries.Out.Seq = len(sourceHistory) + 1
		if err := tx.Create(&entries.Out).Error; err != nil {
			return err
		}
		sourceHistory = append(sourceHistory, entries.Out)
		if err := bumpVersion(tx, source, expectedVersion, actor.ID); err != nil {
			return err
		}

		// Destination side: reuse an open (pending) record for that holder or
		// create one. Approved records are frozen and never reused.
		dest, destHistory, err := s.findOrCreateDestination(tx, in.To, actor)
		if err != nil {
			return err
		}
		entries.In.AssignmentID = dest.AssignmentID
		entries.In.Seq = len(destHistory) + 1
		if err := tx.Create(&entries.In).Error; err != nil {
			return err
		}
		destHistory = append(destHistory, entries.In)
		if err := bumpVersion(tx, dest, dest.Version, actor.ID); err != nil {
			return err
		}

		// Custody of the assets follows the rounds.
		if err := tx.Model(&domain.AssignmentAsset{}).
			Where("assignment_id = ?", source.AssignmentID).
			Update("assignment_id", dest.AssignmentID).Error; err != nil {
			return err
		}

		payload := map[string]interface{}{
			"quantity":    in.Quantity,
			"reason":      in.Reason,
			"from_holder": source.Holder(),
			"to_holder":   in.To,
		}
		if err := appendEvent(tx, source.AssignmentID, domain.EventTransferredOut, actor.ID, payload); err != nil {
			return err
		}
		if err := appendEvent(tx, dest.AssignmentID, domain.EventTransferredIn, actor.ID, payload); err != nil {
			return err
		}

		if err := tx.Preload("Assets").Where("assignment_id = ?", source.AssignmentID).First(source).Error; err != nil {
			return err
		}
		if err := tx.Preload("Assets").Where("assignment_id = ?", dest.AssignmentID).First(dest).Error; err != nil {
			return err
		}
		result = &TransferResult{
			Source:      RecordView{Record: *source, History: sourceHistory, Totals: ledger.ComputeTotals(sourceHistory)},
			Destination: RecordView{Record: *dest, History: destHistory, Totals: ledger.ComputeTotals(destHistory)},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Approve performs the pending→approved transition through the approval gate.
// The capability check happens in the gate, server-side, regardless of what
// the UI exposed.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, expectedVersion int64, comment string, actor Actor) (*RecordView, error) {
	var view *RecordView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, history, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}

		state, err := approval.Approve(approval.State{
			IsApproved:      record.IsApproved,
			ApprovedBy:      record.ApprovedBy,
			ApprovalDate:    record.ApprovalDate,
			ApprovalComment: record.ApprovalComment,
		}, approval.ApproveParams{
			Actor:      actor.ID,
			ActorRole:  actor.Role,
			Permission: constants.ApproveAssignment,
			Comment:    comment,
			Now:        s.now(),
		})
		if err != nil {
			return err
		}

		res := tx.Model(&domain.AssignmentRecord{}).
			Where("assignment_id = ? AND version = ?", id, expectedVersion).
			Updates(map[string]interface{}{
				"is_approved":      state.IsApproved,
				"approved_by":      state.ApprovedBy,
				"approval_date":    state.ApprovalDate,
				"approval_comment": state.ApprovalComment,
				"version":          expectedVersion + 1,
				"last_edited_by":   actor.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrConcurrentModification
		}

		if err := appendEvent(tx, id, domain.EventApproved, actor.ID, map[string]interface{}{
			"comment": comment,
		}); err != nil {
			return err
		}

		if err := tx.Preload("Assets").Where("assignment_id = ?", id).First(record).Error; err != nil {
			return err
		}
		view = &RecordView{Record: *record, History: history, Totals: ledger.ComputeTotals(history)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Get returns a record with its derived totals. Corrupted histories surface
// as invariant errors rather than silently clamped numbers.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*RecordView, error) {
	var view *RecordView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, history, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := ledger.CheckHistory(history); err != nil {
			return s.surface(err, id)
		}
		view = &RecordView{Record: *record, History: history, Totals: ledger.ComputeTotals(history)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListForHolder returns all records currently held by one employee/station.
func (s *Service) ListForHolder(ctx context.Context, holder domain.HolderRef) ([]domain.AssignmentRecord, error) {
	var records []domain.AssignmentRecord
	if err := s.DB.WithContext(ctx).
		Preload("Assets").
		Where("holder_type = ? AND holder_id = ?", holder.Type, holder.ID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// EditableBy reports whether the actor's role may mutate ordinary fields of
// the record (approval stamps are never ordinarily editable).
func (s *Service) EditableBy(record *domain.AssignmentRecord, actor Actor) bool {
	return approval.EditableBy(approval.State{
		IsApproved:      record.IsApproved,
		ApprovedBy:      record.ApprovedBy,
		ApprovalDate:    record.ApprovalDate,
		ApprovalComment: record.ApprovalComment,
	}, actor.Role)
}

// loadForUpdate loads a record plus its ordered history, normalizing legacy
// flat totals into synthetic entries on first touch.
func (s *Service) loadForUpdate(tx *gorm.DB, id uuid.UUID) (*domain.AssignmentRecord, []domain.RoundEntry, error) {
	var record domain.AssignmentRecord
	if err := tx.Preload("Assets").Where("assignment_id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.ErrNotFound
		}
		return nil, nil, err
	}

	var history []domain.RoundEntry
	if err := tx.Where("assignment_id = ?", id).Order("seq ASC").Find(&history).Error; err != nil {
		return nil, nil, err
	}

	legacy := ledger.LegacyRounds{Assigned: record.LegacyAssignedRounds, Consumed: record.LegacyConsumedRounds}
	if len(history) == 0 && !legacy.Empty() {
		entries, capped := ledger.NormalizeLegacy(legacy, record.CreatedBy, record.CreatedAt)
		if capped > 0 {
			log.Warn().Str("assignment_id", id.String()).Int("capped_rounds", capped).Msg("Legacy consumed total exceeded assigned total, capped during normalization")
		}
		for i := range entries {
			entries[i].AssignmentID = record.AssignmentID
			entries[i].Seq = i + 1
			if err := tx.Create(&entries[i]).Error; err != nil {
				return nil, nil, err
			}
		}
		if err := tx.Model(&domain.AssignmentRecord{}).
			Where("assignment_id = ?", id).
			Updates(map[string]interface{}{
				"legacy_assigned_rounds": nil,
				"legacy_consumed_rounds": nil,
			}).Error; err != nil {
			return nil, nil, err
		}
		log.Info().Str("assignment_id", id.String()).Int("entries", len(entries)).Msg("Normalized legacy round totals into ledger")
		record.LegacyAssignedRounds = nil
		record.LegacyConsumedRounds = nil
		history = entries
	}
	return &record, history, nil
}

// surface logs invariant violations with record context before handing the
// error up; validation errors pass through untouched.
func (s *Service) surface(err error, id uuid.UUID) error {
	if apperr.IsInvariant(err) {
		log.Error().Str("assignment_id", id.String()).Err(err).Msg("Round ledger invariant violation")
	}
	return err
}

func (s *Service) findOrCreateDestination(tx *gorm.DB, to domain.HolderRef, actor Actor) (*domain.AssignmentRecord, []domain.RoundEntry, error) {
	var dest domain.AssignmentRecord
	err := tx.Where("holder_type = ? AND holder_id = ? AND is_approved = ?", to.Type, to.ID, false).
		Order("created_at DESC").
		First(&dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dest = domain.AssignmentRecord{
			HolderType:   to.Type,
			HolderID:     to.ID,
			Version:      1,
			CreatedBy:    actor.ID,
			LastEditedBy: actor.ID,
		}
		if err := tx.Create(&dest).Error; err != nil {
			return nil, nil, err
		}
		return &dest, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var history []domain.RoundEntry
	if err := tx.Where("assignment_id = ?", dest.AssignmentID).Order("seq ASC").Find(&history).Error; err != nil {
		return nil, nil, err
	}
	return &dest, history, nil
}

// hasRoundTrackedAsset reports whether any asset linked to the record carries
// a round ledger when assigned.
func hasRoundTrackedAsset(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&domain.AssignmentAsset{}).
		Joins("JOIN assets ON assets.asset_id = assignment_assets.asset_id").
		Where("assignment_assets.assignment_id = ?", id).
		Where("assets.asset_type IN ?", []string{domain.AssetTypeWeapon, domain.AssetTypePistol, domain.AssetTypeAmmunition}).
		Count(&n).Error
	return n > 0, err
}

func holderExists(tx *gorm.DB, h domain.HolderRef) error {
	if h.ID == uuid.Nil {
		return apperr.Validation("holder", "a holder is required")
	}
	var err error
	switch h.Type {
	case domain.HolderTypeEmployee:
		err = tx.Where("employee_id = ?", h.ID).First(&domain.Employee{}).Error
	case domain.HolderTypeStation:
		err = tx.Where("station_id = ?", h.ID).First(&domain.Station{}).Error
	default:
		return apperr.Validation("holder", "holder must be an employee or a station")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("holder", "holder does not exist")
	}
	return err
}

func bumpVersion(tx *gorm.DB, record *domain.AssignmentRecord, expectedVersion int64, editor uuid.UUID) error {
	res := tx.Model(&domain.AssignmentRecord{}).
		Where("assignment_id = ? AND version = ?", record.AssignmentID, expectedVersion).
		Updates(map[string]interface{}{
			"version":        expectedVersion + 1,
			"last_edited_by": editor,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrConcurrentModification
	}
	record.Version = expectedVersion + 1
	record.LastEditedBy = editor
	return nil
}

func appendEvent(tx *gorm.DB, assignmentID uuid.UUID, eventType string, actor uuid.UUID, data map[string]interface{}) error {
	b, _ := json.Marshal(data)
	return tx.Create(&domain.AssignmentEvent{
		AssignmentID: assignmentID,
		EventType:    eventType,
		EventData:    datatypes.JSON(b),
		ActorID:      &actor,
	}).Error
}
