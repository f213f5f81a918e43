// Package audit registra acciones sobre entidades en un log solo inserción.
// Un fallo al escribir nunca se propaga al llamador.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/internal/domain/schema"
	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

// Input datos de una entrada de auditoría.
type Input struct {
	BusinessID string
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	Changes    []entity.FieldChange
}

// Recorder escribe entradas según las columnas que el esquema expone.
type Recorder struct {
	repo    repository.AuditRepository
	caps    schema.AuditColumns
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewRecorder construye el registrador.
func NewRecorder(repo repository.AuditRepository, caps schema.AuditColumns, m *metrics.Metrics, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, caps: caps, metrics: m, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record agrega la entrada. Devuelve la entrada escrita o nil si falló; el error solo se loguea.
func (r *Recorder) Record(ctx context.Context, in Input) *entity.AuditEntry {
	// Precisión de microsegundos: es lo que guarda timestamptz y el hash debe poder recalcularse.
	at := r.now().UTC().Truncate(time.Microsecond)
	diff := entity.FormatChanges(in.Changes)
	e := &entity.AuditEntry{
		ID:         uuid.New().String(),
		BusinessID: in.BusinessID,
		EntityType: in.EntityType,
		Action:     in.Action,
		ActorID:    in.ActorID,
		At:         at,
		Diff:       diff,
		Details:    Details(in, at, diff),
	}
	if in.EntityID != "" {
		id := in.EntityID
		e.EntityID = &id
	}

	if err := r.repo.Append(ctx, e, r.caps.HashChain); err != nil {
		r.log.Error().Err(err).
			Str("business_id", in.BusinessID).
			Str("entity", in.EntityType).
			Str("entity_id", in.EntityID).
			Str("action", in.Action).
			Str("details", e.Details).
			Msg("no se pudo registrar auditoría")
		r.metrics.SideEffectFailed("audit")
		return nil
	}
	return e
}

// Details forma textual de la tupla completa; se guarda siempre, aunque falten columnas.
func Details(in Input, at time.Time, diff string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "action=%s; entity=%s:%s; actor=%s; business=%s; at=%s; changes=%s",
		in.Action, in.EntityType, in.EntityID, in.ActorID, in.BusinessID, at.Format(time.RFC3339Nano), diff)
	return b.String()
}

// VerifyChain recorre entradas de un negocio en orden de inserción. Devuelve el índice de
// la primera entrada alterada o -1 si la cadena es íntegra.
func VerifyChain(entries []*entity.AuditEntry) int {
	prev := ""
	for i, e := range entries {
		if e.PrevHash != prev || e.Hash != e.ComputeHash(prev) {
			return i
		}
		prev = e.Hash
	}
	return -1
}
