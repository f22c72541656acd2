package audit

import "github.com/jhoicas/gasdepot-api/internal/domain/entity"

// Motivos de ruptura de la cadena.
const (
	ReasonHashMismatch  = "hash_mismatch"
	ReasonBrokenLink    = "broken_link"
	ReasonSequenceGap   = "sequence_gap"
	ReasonGenesisLinked = "genesis_has_previous_hash"
)

// Break primer registro inválido encontrado.
type Break struct {
	SequenceNumber int64
	Reason         string
}

// Verifier recorre la cadena en orden ascendente, un registro a la vez.
type Verifier struct {
	prev    *entity.AuditEvent
	checked int64
}

// NewVerifier parte del registro inmediatamente anterior al rango (nil si el rango
// empieza en el génesis o no hay ancla disponible).
func NewVerifier(anchor *entity.AuditEvent) *Verifier {
	return &Verifier{prev: anchor}
}

// Check valida e contra su propio hash y contra el registro anterior.
func (v *Verifier) Check(e *entity.AuditEvent) *Break {
	v.checked++
	hash, err := ComputeHash(e)
	if err != nil || hash != e.RecordHash {
		return &Break{SequenceNumber: e.SequenceNumber, Reason: ReasonHashMismatch}
	}
	switch {
	case v.prev != nil:
		if e.SequenceNumber != v.prev.SequenceNumber+1 {
			return &Break{SequenceNumber: e.SequenceNumber, Reason: ReasonSequenceGap}
		}
		if e.PreviousHash == nil || *e.PreviousHash != v.prev.RecordHash {
			return &Break{SequenceNumber: e.SequenceNumber, Reason: ReasonBrokenLink}
		}
	case e.SequenceNumber == 1:
		if e.PreviousHash != nil {
			return &Break{SequenceNumber: e.SequenceNumber, Reason: ReasonGenesisLinked}
		}
	}
	v.prev = e
	return nil
}

// Checked cantidad de registros revisados.
func (v *Verifier) Checked() int64 { return v.checked }

// VerifyAll verifica una porción completa en memoria.
func VerifyAll(anchor *entity.AuditEvent, events []*entity.AuditEvent) *Break {
	v := NewVerifier(anchor)
	for _, e := range events {
		if b := v.Check(e); b != nil {
			return b
		}
	}
	return nil
}
