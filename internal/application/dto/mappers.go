package dto

import "github.com/jhoicas/gasdepot-api/internal/domain/entity"

// MovementFromEntity convierte un movimiento para la respuesta HTTP y los snapshots de auditoría.
func MovementFromEntity(m *entity.Movement) MovementResponse {
	r := MovementResponse{
		ID:                 m.ID,
		Reference:          m.Reference,
		CylinderSize:       string(m.CylinderSize),
		MovementType:       string(m.MovementType),
		Quantity:           m.Quantity,
		OrderID:            m.OrderID,
		RefillBatchID:      m.RefillBatchID,
		RouteStopID:        m.RouteStopID,
		Notes:              m.Notes,
		VarianceApproved:   m.VarianceApproved,
		VarianceApprovedBy: m.VarianceApprovedBy,
		VarianceApprovedAt: m.VarianceApprovedAt,
		RecordedAt:         m.RecordedAt,
		RecordedBy:         m.RecordedBy,
	}
	if m.FromStatus != nil {
		s := string(*m.FromStatus)
		r.FromStatus = &s
	}
	if m.ToStatus != nil {
		s := string(*m.ToStatus)
		r.ToStatus = &s
	}
	if m.BatchPhase != nil {
		s := string(*m.BatchPhase)
		r.BatchPhase = &s
	}
	return r
}

// MovementsFromEntities convierte una lista de movimientos.
func MovementsFromEntities(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementFromEntity(m))
	}
	return out
}

func stage(s entity.StageStamp) *StageResponse {
	if !s.Done() {
		return nil
	}
	return &StageResponse{At: s.At, By: s.By}
}

// RefillBatchFromEntity convierte un lote de recarga.
func RefillBatchFromEntity(b *entity.RefillBatch) RefillBatchResponse {
	return RefillBatchResponse{
		ID:                    b.ID,
		BatchRef:              b.BatchRef,
		CylinderSize:          string(b.CylinderSize),
		InitialQuantity:       b.InitialQuantity,
		Quantity:              b.Quantity,
		Status:                string(b.Status),
		PassedCount:           b.PassedCount,
		FailedCount:           b.FailedCount,
		InspectionStarted:     stage(b.InspectionStarted),
		InspectionCompleted:   stage(b.InspectionCompleted),
		FillingStarted:        stage(b.FillingStarted),
		FillingCompleted:      stage(b.FillingCompleted),
		QCCompleted:           stage(b.QCCompleted),
		Stocked:               stage(b.Stocked),
		ReservationMovementID: b.ReservationMovementID,
		StockMovementID:       b.StockMovementID,
		Notes:                 b.Notes,
		CreatedAt:             b.CreatedAt,
		CreatedBy:             b.CreatedBy,
		UpdatedAt:             b.UpdatedAt,
	}
}

// RefillBatchesFromEntities convierte una lista de lotes.
func RefillBatchesFromEntities(list []*entity.RefillBatch) []RefillBatchResponse {
	out := make([]RefillBatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, RefillBatchFromEntity(b))
	}
	return out
}

// TankFromEntity convierte un tanque.
func TankFromEntity(t *entity.Tank) TankResponse {
	return TankResponse{
		ID:                 t.ID,
		TankCode:           t.TankCode,
		Name:               t.Name,
		Product:            t.Product,
		CapacityLitres:     t.CapacityLitres,
		MinimumLevelLitres: t.MinimumLevelLitres,
		MaximumLevelLitres: t.MaximumLevelLitres,
		CurrentLevelLitres: t.CurrentLevelLitres,
		FillPercent:        t.FillPercent(),
		Status:             string(t.Status),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// TanksFromEntities convierte una lista de tanques.
func TanksFromEntities(list []*entity.Tank) []TankResponse {
	out := make([]TankResponse, 0, len(list))
	for _, t := range list {
		out = append(out, TankFromEntity(t))
	}
	return out
}

// BulkMovementFromEntity convierte un movimiento de granel.
func BulkMovementFromEntity(m *entity.BulkMovement) BulkMovementResponse {
	return BulkMovementResponse{
		ID:              m.ID,
		MovementRef:     m.MovementRef,
		TankID:          m.TankID,
		MovementType:    string(m.MovementType),
		QuantityLitres:  m.QuantityLitres,
		TankLevelBefore: m.TankLevelBefore,
		TankLevelAfter:  m.TankLevelAfter,
		ReferenceDoc:    m.ReferenceDoc,
		Notes:           m.Notes,
		RecordedAt:      m.RecordedAt,
		RecordedBy:      m.RecordedBy,
	}
}

// BulkMovementsFromEntities convierte una lista de movimientos de granel.
func BulkMovementsFromEntities(list []*entity.BulkMovement) []BulkMovementResponse {
	out := make([]BulkMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, BulkMovementFromEntity(m))
	}
	return out
}

// TankReadingFromEntity convierte una lectura.
func TankReadingFromEntity(r *entity.TankReading) TankReadingResponse {
	return TankReadingResponse{
		ID:                  r.ID,
		TankID:              r.TankID,
		LevelLitres:         r.LevelLitres,
		PreviousLevelLitres: r.PreviousLevelLitres,
		TemperatureC:        r.TemperatureC,
		PressureBar:         r.PressureBar,
		ReadAt:              r.ReadAt,
		RecordedBy:          r.RecordedBy,
	}
}

// TankReadingsFromEntities convierte una lista de lecturas.
func TankReadingsFromEntities(list []*entity.TankReading) []TankReadingResponse {
	out := make([]TankReadingResponse, 0, len(list))
	for _, r := range list {
		out = append(out, TankReadingFromEntity(r))
	}
	return out
}

// AuditEventFromEntity convierte un evento de auditoría.
func AuditEventFromEntity(e *entity.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		SequenceNumber: e.SequenceNumber,
		ID:             e.ID,
		EventType:      e.EventType,
		EventSubtype:   e.EventSubtype,
		Action:         e.Action,
		ActorID:        e.ActorID,
		ActorEmail:     e.ActorEmail,
		ActorRole:      e.ActorRole,
		EntityType:     e.EntityType,
		EntityID:       e.EntityID,
		EntityRef:      e.EntityRef,
		Summary:        e.Summary,
		PreviousState:  e.PreviousState,
		NewState:       e.NewState,
		IPAddress:      e.Metadata.IPAddress,
		UserAgent:      e.Metadata.UserAgent,
		OccurredAt:     e.OccurredAt,
		PreviousHash:   e.PreviousHash,
		RecordHash:     e.RecordHash,
	}
}

// AuditEventsFromEntities convierte una lista de eventos.
func AuditEventsFromEntities(list []*entity.AuditEvent) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, AuditEventFromEntity(e))
	}
	return out
}
