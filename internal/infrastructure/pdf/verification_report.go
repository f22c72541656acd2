// Package pdf genera el certificado de verificación de la cadena de auditoría.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Aplicación + título │  Fecha de verificación       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESULTADO: VÁLIDA / ROTA + motivo + primer registro roto   │
//	│  RANGO: desde / hasta / registros revisados                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Seq | Fecha | Tipo | Entidad | Actor | Hash         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: último hash + QR + emitido por                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorValid   = &props.Color{Red: 20, Green: 120, Blue: 60}
	colorBroken  = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportRenderer implementa audit.ReportRenderer usando Maroto v2.
type MarotoReportRenderer struct{}

var _ appaudit.ReportRenderer = (*MarotoReportRenderer)(nil)

// NewMarotoReportRenderer construye el generador.
func NewMarotoReportRenderer() *MarotoReportRenderer { return &MarotoReportRenderer{} }

// RenderVerificationReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportRenderer) RenderVerificationReport(ctx context.Context, data appaudit.ReportData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Certificado de verificación de auditoría", true).
		WithAuthor(nonEmpty(data.AppName, "gasdepot"), true).
		Build()

	m := maroto.New(cfg)
	v := data.Verification

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(resultRow(v))
	m.AddRows(rangeRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableEventRows(data.Recent)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(data)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(data appaudit.ReportData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(data.AppName, "gasdepot"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Cadena de auditoría de inventario", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("CERTIFICADO DE VERIFICACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(data.Verification.VerifiedAt.UTC().Format("2006-01-02 15:04:05 UTC"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// resultRow: estado de la cadena, en verde o rojo.
func resultRow(v dto.ChainVerificationResponse) core.Row {
	status, color := "CADENA VÁLIDA", colorValid
	detail := "Todos los registros revisados enlazan y recalculan su hash."
	if !v.Valid {
		status, color = "CADENA ROTA", colorBroken
		detail = "Motivo: " + nonEmpty(v.Reason, "desconocido")
		if v.FirstBrokenSequence != nil {
			detail += "   |   Primer registro roto: #" + strconv.FormatInt(*v.FirstBrokenSequence, 10)
		}
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New(status, props.Text{Style: fontstyle.Bold, Size: 14, Color: color, Top: 1}),
			text.New(detail, props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func rangeRow(v dto.ChainVerificationResponse) core.Row {
	to := "final de la cadena"
	if v.ToSequence > 0 {
		to = "#" + strconv.FormatInt(v.ToSequence, 10)
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Desde: #%d   |   Hasta: %s   |   Registros revisados: %d",
			v.FromSequence, to, v.Checked,
		), props.Text{Size: 8, Top: 2}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Seq", 1, align.Center),
		h("Fecha (UTC)", 2, align.Left),
		h("Evento", 3, align.Left),
		h("Entidad", 2, align.Left),
		h("Actor", 2, align.Left),
		h("Hash", 2, align.Left),
	)
}

// tableEventRows: una fila por evento reciente.
func tableEventRows(events []dto.AuditEventResponse) []core.Row {
	result := make([]core.Row, 0, len(events))
	cell := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{Size: 7, Align: a, Top: 1, Left: 1})
	}
	for _, e := range events {
		result = append(result, row.New(6).Add(
			col.New(1).Add(cell(strconv.FormatInt(e.SequenceNumber, 10), align.Center)),
			col.New(2).Add(cell(e.OccurredAt.UTC().Format("2006-01-02 15:04"), align.Left)),
			col.New(3).Add(cell(e.EventType+"/"+e.EventSubtype, align.Left)),
			col.New(2).Add(cell(nonEmpty(e.EntityRef, e.EntityType), align.Left)),
			col.New(2).Add(cell(nonEmpty(e.ActorID, "—"), align.Left)),
			col.New(2).Add(cell(shortHash(e.RecordHash), align.Left)),
		))
	}
	return result
}

// footerRows: último hash partido + QR + responsable.
func footerRows(data appaudit.ReportData) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("ÚLTIMO HASH VERIFICADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	hash := data.Verification.LastHash
	for _, chunk := range splitEvery(hash, 64) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	rows = append(rows, row.New(3))

	by := nonEmpty(data.GeneratedBy.Email, data.GeneratedBy.ID)
	if hash != "" {
		rows = append(rows, row.New(40).Add(
			col.New(4).Add(code.NewQr(hash, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("El código QR contiene el hash del último registro\nrevisado; compárelo con la cadena en la base de datos.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New("Emitido por: "+nonEmpty(by, "—"), props.Text{
					Style: fontstyle.Bold, Size: 9, Top: 20, Left: 3,
				}),
			),
		))
	} else {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Emitido por: "+nonEmpty(by, "—"), props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:16] + "…"
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
