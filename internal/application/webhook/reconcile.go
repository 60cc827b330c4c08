package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/pkg/nfse"
	"github.com/jhoicas/nfse-api/pkg/retry"
)

// companyRegistered: UPDATE empresas SET status_cadastro, webhook_id, enotas_id WHERE cnpj = ?
func (s *Service) companyRegistered(ctx context.Context, ev *Event) error {
	emp := ev.Data.Empresa
	if emp == nil {
		return &domain.MissingFieldError{Field: "data.empresa"}
	}
	cnpj := nfse.OnlyDigits(emp.CNPJ)
	if cnpj == "" {
		return &domain.MissingFieldError{Field: "data.empresa.cnpj"}
	}

	status := entity.CompanyStatusError
	if emp.Status == entity.CompanyStatusActive {
		status = entity.CompanyStatusActive
	}
	reg := entity.CompanyRegistration{
		CNPJ:               cnpj,
		RegistrationStatus: status,
		WebhookID:          ev.ID,
		EnotasID:           emp.ID,
	}

	company, err := write(ctx, s, "empresas.update", func(ctx context.Context) (*entity.Company, error) {
		return s.deps.Companies.ApplyRegistration(ctx, reg)
	})
	if err != nil || company == nil {
		return err
	}

	s.log.Info().
		Str("cnpj", cnpj).
		Str("status_cadastro", status).
		Str("enotas_id", emp.ID).
		Msg("empresa reconciliada")

	msg := fmt.Sprintf("Cadastro da empresa %s aprovado pelo eNotas", displayCompany(company))
	if status != entity.CompanyStatusActive {
		msg = fmt.Sprintf("Cadastro da empresa %s recusado pelo eNotas (status: %s)", displayCompany(company), emp.Status)
	}
	s.notify(ctx, company.UserID, msg)
	return nil
}

// invoiceIssued: UPDATE notas_fiscais SET status_emissao='emitida', numero, data_emissao WHERE id = ?
func (s *Service) invoiceIssued(ctx context.Context, ev *Event) error {
	nf := ev.Data.NotaFiscal
	if nf == nil {
		return &domain.MissingFieldError{Field: "data.notaFiscal"}
	}
	if nf.ID == "" {
		return &domain.MissingFieldError{Field: "data.notaFiscal.id"}
	}

	in := entity.InvoiceIssuance{InvoiceID: nf.ID, Numero: nf.Numero, DataEmissao: nf.DataEmissao}
	invoice, err := write(ctx, s, "notas_fiscais.emitida", func(ctx context.Context) (*entity.Invoice, error) {
		return s.deps.Invoices.MarkIssued(ctx, in)
	})
	if err != nil || invoice == nil {
		return err
	}

	s.log.Info().Str("nota_id", nf.ID).Str("numero", nf.Numero).Msg("nota fiscal emitida")
	s.notifyInvoiceOwner(ctx, invoice, fmt.Sprintf("Nota fiscal nº %s emitida", nf.Numero))
	return nil
}

// invoiceCancelled: UPDATE notas_fiscais SET status_emissao='cancelada' WHERE id = ?
func (s *Service) invoiceCancelled(ctx context.Context, ev *Event) error {
	nf := ev.Data.NotaFiscal
	if nf == nil {
		return &domain.MissingFieldError{Field: "data.notaFiscal"}
	}
	if nf.ID == "" {
		return &domain.MissingFieldError{Field: "data.notaFiscal.id"}
	}

	invoice, err := write(ctx, s, "notas_fiscais.cancelada", func(ctx context.Context) (*entity.Invoice, error) {
		return s.deps.Invoices.MarkCancelled(ctx, nf.ID)
	})
	if err != nil || invoice == nil {
		return err
	}

	s.log.Info().Str("nota_id", nf.ID).Msg("nota fiscal cancelada")
	label := invoice.Numero
	if label == "" {
		label = invoice.ID
	}
	s.notifyInvoiceOwner(ctx, invoice, fmt.Sprintf("Nota fiscal nº %s cancelada", label))
	return nil
}

// write ejecuta una escritura de reconciliación con reintento. Solo los errores
// transitorios del store se reintentan. Sin fila afectada devuelve ErrNotFound,
// o (nil, nil) con una advertencia si RequireMatch está desactivado.
func write[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (*T, error)) (*T, error) {
	row, err := retry.Do(ctx, func(ctx context.Context) (*T, error) {
		row, err := fn(ctx)
		if err != nil && !errors.Is(err, domain.ErrTransientStore) {
			return nil, retry.Permanent(err)
		}
		return row, err
	},
		retry.WithConfig(s.opts.Retry),
		retry.WithLogger(s.log),
		retry.WithOperation(op),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if row == nil {
		if s.opts.RequireMatch {
			return nil, fmt.Errorf("%s: ninguna fila coincidió: %w", op, domain.ErrNotFound)
		}
		s.log.Warn().Str("op", op).Msg("ninguna fila coincidió; evento confirmado sin efecto")
	}
	return row, nil
}

func (s *Service) notifyInvoiceOwner(ctx context.Context, invoice *entity.Invoice, msg string) {
	if !s.notificationsEnabled() || invoice.CompanyID == "" {
		return
	}
	company, err := s.deps.Companies.GetByID(ctx, invoice.CompanyID)
	if err != nil {
		s.log.Warn().Err(err).Str("empresa_id", invoice.CompanyID).Msg("no se pudo resolver el dueño de la nota")
		return
	}
	if company == nil {
		return
	}
	s.notify(ctx, company.UserID, msg)
}

// notify inserta una notificación status_change; la falla solo se registra.
func (s *Service) notify(ctx context.Context, userID, msg string) {
	if !s.notificationsEnabled() || userID == "" {
		return
	}
	n := &entity.Notification{UserID: userID, Message: msg, Type: entity.NotificationStatusChange}
	if err := s.deps.Notifications.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("no se pudo crear la notificación")
	}
}

func (s *Service) notificationsEnabled() bool {
	return s.opts.NotifyUsers && s.deps.Notifications != nil
}

func displayCompany(c *entity.Company) string {
	if c.NomeFantasia != "" {
		return c.NomeFantasia
	}
	if c.RazaoSocial != "" {
		return c.RazaoSocial
	}
	return c.CNPJ
}
