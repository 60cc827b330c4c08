// Package invoice emite NFS-e a través del gateway y expone las notas de la empresa del usuario.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/application/ports"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
	"github.com/jhoicas/nfse-api/pkg/nfse"
	"github.com/jhoicas/nfse-api/pkg/retry"
)

// UseCase casos de uso de notas fiscais.
type UseCase struct {
	companies repository.CompanyRepository
	invoices  repository.InvoiceRepository
	gateway   ports.InvoicingGateway
	pdf       ports.InvoicePDFGenerator
	retry     retry.Config
	log       zerolog.Logger
}

func NewUseCase(
	companies repository.CompanyRepository,
	invoices repository.InvoiceRepository,
	gateway ports.InvoicingGateway,
	pdf ports.InvoicePDFGenerator,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		companies: companies,
		invoices:  invoices,
		gateway:   gateway,
		pdf:       pdf,
		retry:     retry.DefaultConfig(),
		log:       log.With().Str("component", "invoice").Logger(),
	}
}

// WithRetry reemplaza intentos y retardo de las escrituras posteriores al gateway.
func (uc *UseCase) WithRetry(cfg retry.Config) *UseCase {
	uc.retry = cfg
	return uc
}

// Issue guarda la nota en pendente y la envía al gateway con idExterno = id de la fila.
// Número y fecha de emisión llegan después por NotaFiscalEmitida.
// La empresa debe estar ativo (domain.ErrConflict en otro caso).
func (uc *UseCase) Issue(ctx context.Context, userID string, in dto.IssueInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if !in.ValorTotal.IsPositive() {
		return nil, fmt.Errorf("%w: valor_total debe ser mayor que cero", domain.ErrInvalidInput)
	}
	doc := nfse.OnlyDigits(in.Tomador.CpfCnpj)
	if err := nfse.ValidateCpfCnpj(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive() {
		return nil, fmt.Errorf("%w: empresa con status_cadastro %q no puede emitir", domain.ErrConflict, company.RegistrationStatus)
	}

	inv := &entity.Invoice{
		CompanyID:      company.ID,
		EmissionStatus: entity.InvoiceStatusPending,
		ValorTotal:     in.ValorTotal.Round(2),
		Descricao:      strings.TrimSpace(in.Descricao),
		CodigoServico:  strings.TrimSpace(in.CodigoServico),
		Tomador: entity.Tomador{
			RazaoSocial: strings.TrimSpace(in.Tomador.RazaoSocial),
			Email:       strings.TrimSpace(in.Tomador.Email),
			CpfCnpj:     doc,
		},
	}
	if err := uc.invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("guardar nota: %w", err)
	}

	issued, err := uc.gateway.IssueInvoice(ctx, company.EnotasID, ports.GatewayInvoiceRequest{
		Tipo:          ports.InvoiceKindNFSe,
		IDExterno:     inv.ID,
		ValorTotal:    inv.ValorTotal,
		Descricao:     inv.Descricao,
		CodigoServico: inv.CodigoServico,
		Tomador: ports.GatewayTomador{
			RazaoSocial: inv.Tomador.RazaoSocial,
			Email:       inv.Tomador.Email,
			CpfCnpj:     inv.Tomador.CpfCnpj,
		},
	})
	if err != nil {
		uc.log.Error().Err(err).Str("nota_id", inv.ID).Msg("gateway rechazó la emisión; la nota queda pendente")
		return nil, err
	}

	// La nota ya existe en el gateway: perder el enotas_id aquí solo se corrige con Sync.
	if issued.ID != "" {
		if err := uc.setEnotasID(ctx, inv.ID, issued.ID); err != nil {
			return nil, fmt.Errorf("guardar enotas_id: %w", err)
		}
		inv.EnotasID = issued.ID
	}
	uc.log.Info().Str("nota_id", inv.ID).Str("enotas_id", inv.EnotasID).Msg("nota enviada a emisión")
	return toInvoiceResponse(inv), nil
}

// List notas de la empresa del usuario, más recientes primero.
func (uc *UseCase) List(ctx context.Context, userID string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := uc.invoices.ListByCompany(ctx, company.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar notas: %w", err)
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *toInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Get devuelve la nota si pertenece a la empresa del usuario (domain.ErrForbidden si no).
func (uc *UseCase) Get(ctx context.Context, userID, id string) (*dto.InvoiceResponse, error) {
	_, inv, err := uc.ownInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// SummaryPDF genera el espelho de la nota y un nombre de archivo sugerido.
func (uc *UseCase) SummaryPDF(ctx context.Context, userID, id string) ([]byte, string, error) {
	company, inv, err := uc.ownInvoice(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	out, err := uc.pdf.InvoiceSummary(company, inv)
	if err != nil {
		return nil, "", err
	}
	label := inv.Numero
	if label == "" {
		label = inv.ID
	}
	return out, nfse.SafeFileName(fmt.Sprintf("nfse-%s-%s.pdf", company.CNPJ, label)), nil
}

// Sync compara las notas de la empresa en eNotas con notas_fiscais y aplica los
// cambios que no hayan llegado por webhook: Autorizada → emitida (solo desde pendente),
// Cancelada → cancelada, y enotas_id faltante. Las notas sin idExterno propio se cuentan
// como no vinculadas.
func (uc *UseCase) Sync(ctx context.Context, userID string) (*dto.InvoiceSyncResponse, error) {
	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	if company.EnotasID == "" {
		return nil, fmt.Errorf("%w: empresa sin cadastro en eNotas", domain.ErrConflict)
	}
	remote, err := uc.gateway.ListInvoices(ctx, company.EnotasID)
	if err != nil {
		return nil, err
	}

	out := &dto.InvoiceSyncResponse{Checked: len(remote)}
	for _, g := range remote {
		inv, err := uc.invoiceOf(ctx, company.ID, g.IDExterno)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			out.Unmatched++
			continue
		}
		changed, err := uc.syncInvoice(ctx, inv, g)
		if err != nil {
			return nil, err
		}
		if changed {
			out.Updated++
		}
	}
	uc.log.Info().
		Str("empresa_id", company.ID).
		Int("checked", out.Checked).
		Int("updated", out.Updated).
		Int("unmatched", out.Unmatched).
		Msg("notas sincronizadas con eNotas")
	return out, nil
}

func (uc *UseCase) invoiceOf(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	if id == "" {
		return nil, nil
	}
	inv, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar nota: %w", err)
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, nil
	}
	return inv, nil
}

func (uc *UseCase) syncInvoice(ctx context.Context, inv *entity.Invoice, g ports.GatewayInvoice) (bool, error) {
	changed := false
	if inv.EnotasID == "" && g.ID != "" {
		if err := uc.setEnotasID(ctx, inv.ID, g.ID); err != nil {
			return false, fmt.Errorf("guardar enotas_id: %w", err)
		}
		changed = true
	}

	switch {
	case strings.EqualFold(g.Status, ports.GatewayInvoiceAuthorized) && inv.EmissionStatus == entity.InvoiceStatusPending:
		if _, err := uc.invoices.MarkIssued(ctx, entity.InvoiceIssuance{
			InvoiceID: inv.ID, Numero: g.Numero, DataEmissao: g.DataEmissao,
		}); err != nil {
			return false, fmt.Errorf("marcar emitida: %w", err)
		}
		changed = true
	case strings.EqualFold(g.Status, ports.GatewayInvoiceCancelled) && inv.EmissionStatus != entity.InvoiceStatusCancelled:
		if _, err := uc.invoices.MarkCancelled(ctx, inv.ID); err != nil {
			return false, fmt.Errorf("marcar cancelada: %w", err)
		}
		changed = true
	}
	return changed, nil
}

// setEnotasID reintenta solo errores transitorios del store.
func (uc *UseCase) setEnotasID(ctx context.Context, id, enotasID string) error {
	return retry.Run(ctx, func(ctx context.Context) error {
		err := uc.invoices.SetEnotasID(ctx, id, enotasID)
		if err != nil && !errors.Is(err, domain.ErrTransientStore) {
			return retry.Permanent(err)
		}
		return err
	},
		retry.WithConfig(uc.retry),
		retry.WithLogger(uc.log),
		retry.WithOperation("notas_fiscais.enotas_id"),
	)
}

func (uc *UseCase) ownCompany(ctx context.Context, userID string) (*entity.Company, error) {
	company, err := uc.companies.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buscar empresa del usuario: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

func (uc *UseCase) ownInvoice(ctx context.Context, userID, id string) (*entity.Company, *entity.Invoice, error) {
	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	inv, err := uc.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("buscar nota: %w", err)
	}
	if inv == nil {
		return nil, nil, domain.ErrNotFound
	}
	if inv.CompanyID != company.ID {
		return nil, nil, domain.ErrForbidden
	}
	return company, inv, nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		EmpresaID:     inv.CompanyID,
		Numero:        inv.Numero,
		StatusEmissao: inv.EmissionStatus,
		DataEmissao:   inv.DataEmissao,
		ValorTotal:    inv.ValorTotal,
		Descricao:     inv.Descricao,
		CodigoServico: inv.CodigoServico,
		Tomador: dto.TomadorRequest{
			RazaoSocial: inv.Tomador.RazaoSocial,
			Email:       inv.Tomador.Email,
			CpfCnpj:     inv.Tomador.CpfCnpj,
		},
		EnotasID:  inv.EnotasID,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}
