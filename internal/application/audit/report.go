package audit

import (
	"context"
	"fmt"

	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

// ReportData contenido del certificado de verificación.
type ReportData struct {
	AppName      string
	GeneratedBy  entity.Actor
	Verification dto.ChainVerificationResponse
	Recent       []dto.AuditEventResponse
}

// ReportRenderer genera el documento del certificado (PDF).
type ReportRenderer interface {
	RenderVerificationReport(ctx context.Context, data ReportData) ([]byte, error)
}

// ReportUseCase verifica la cadena y produce el certificado.
type ReportUseCase struct {
	chain    *Chain
	renderer ReportRenderer
	appName  string
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(chain *Chain, renderer ReportRenderer, appName string) *ReportUseCase {
	return &ReportUseCase{chain: chain, renderer: renderer, appName: appName}
}

// recentInReport eventos más recientes que se listan en el certificado.
const recentInReport = 15

// VerificationReport ejecuta la verificación y renderiza el resultado.
func (uc *ReportUseCase) VerificationReport(ctx context.Context, r *Range, by entity.Actor) ([]byte, *Verification, error) {
	v, err := uc.chain.VerifyChainIntegrity(ctx, r)
	if err != nil {
		return nil, nil, err
	}
	recent, err := uc.chain.GetEvents(ctx, repository.AuditFilter{}, 1, recentInReport)
	if err != nil {
		return nil, nil, fmt.Errorf("recent events: %w", err)
	}
	doc, err := uc.renderer.RenderVerificationReport(ctx, ReportData{
		AppName:      uc.appName,
		GeneratedBy:  by,
		Verification: VerificationToDTO(v),
		Recent:       recent.Items,
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, v, nil
}
