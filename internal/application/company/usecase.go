// Package company orquesta el cadastro de la empresa emisora en el gateway
// y la vinculación del certificado digital A1.
package company

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-api/internal/application/dto"
	"github.com/jhoicas/nfse-api/internal/application/ports"
	"github.com/jhoicas/nfse-api/internal/application/webhook"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
	"github.com/jhoicas/nfse-api/pkg/nfse"
)

// UseCase aplica las reglas de negocio de empresas.
type UseCase struct {
	companies  repository.CompanyRepository
	certs      repository.CertificateRepository
	gateway    ports.InvoicingGateway
	inspector  ports.CertificateInspector
	webhookURL string
	now        func() time.Time
	log        zerolog.Logger
}

// NewUseCase construye el caso de uso. webhookURL vacío omite la configuración del webhook.
func NewUseCase(
	companies repository.CompanyRepository,
	certs repository.CertificateRepository,
	gateway ports.InvoicingGateway,
	inspector ports.CertificateInspector,
	webhookURL string,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		companies:  companies,
		certs:      certs,
		gateway:    gateway,
		inspector:  inspector,
		webhookURL: webhookURL,
		now:        time.Now,
		log:        log.With().Str("component", "company").Logger(),
	}
}

// Register da de alta la empresa en eNotas, suscribe el webhook y guarda la fila
// en estado pendente. El paso a ativo/erro llega luego con EmpresaCadastrada.
// Devuelve domain.ErrDuplicate si el usuario ya tiene empresa o el CNPJ ya existe.
func (uc *UseCase) Register(ctx context.Context, userID string, in dto.RegisterCompanyRequest) (*dto.CompanyResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	cnpj := nfse.OnlyDigits(in.CNPJ)
	if err := nfse.ValidateCNPJ(cnpj); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if existing, err := uc.companies.GetByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("buscar empresa del usuario: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: el usuario ya tiene una empresa registrada", domain.ErrDuplicate)
	}
	if existing, err := uc.companies.GetByCNPJ(ctx, cnpj); err != nil {
		return nil, fmt.Errorf("buscar empresa por CNPJ: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: CNPJ %s ya registrado", domain.ErrDuplicate, cnpj)
	}

	registered, err := uc.gateway.RegisterCompany(ctx, toGatewayCompany(cnpj, in))
	if err != nil {
		return nil, err
	}

	company := &entity.Company{
		UserID:             userID,
		CNPJ:               cnpj,
		RazaoSocial:        in.RazaoSocial,
		NomeFantasia:       in.NomeFantasia,
		RegistrationStatus: entity.CompanyStatusPending,
		EnotasID:           registered.ID,
	}

	if uc.webhookURL != "" {
		sub, err := uc.gateway.ConfigureWebhook(ctx, registered.ID, uc.webhookURL, webhook.KnownEvents)
		if err != nil {
			// La empresa ya existe en el gateway: se guarda igual para no perder el enotas_id.
			uc.log.Warn().Err(err).Str("enotas_id", registered.ID).Msg("no se pudo configurar el webhook")
		} else {
			company.WebhookID = sub.ID
		}
	}

	if err := uc.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("guardar empresa: %w", err)
	}
	uc.log.Info().Str("cnpj", cnpj).Str("enotas_id", registered.ID).Msg("empresa enviada a cadastro")
	return toCompanyResponse(company), nil
}

// Get devuelve la empresa del usuario o domain.ErrNotFound. Los datos de cadastro
// se completan con la empresa de mismo CNPJ en eNotas; status_cadastro, webhook_id
// y enotas_id siempre salen de la tabla. Si el gateway falla se responde solo con la fila.
func (uc *UseCase) Get(ctx context.Context, userID string) (*dto.CompanyResponse, error) {
	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := toCompanyResponse(company)

	list, err := uc.gateway.ListCompanies(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Str("cnpj", company.CNPJ).Msg("no se pudo consultar la empresa en eNotas")
		return out, nil
	}
	for i := range list {
		if nfse.OnlyDigits(list[i].CNPJ) == company.CNPJ {
			mergeGatewayCompany(out, &list[i])
			break
		}
	}
	return out, nil
}

// BindCertificate valida el .pfx con su contraseña y lo envía al gateway.
// Certificado ilegible o vencido → domain.ErrInvalidInput.
func (uc *UseCase) BindCertificate(ctx context.Context, userID string, in dto.BindCertificateInput) (*dto.CertificateResponse, error) {
	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	if company.EnotasID == "" {
		return nil, fmt.Errorf("%w: empresa sin cadastro en eNotas", domain.ErrConflict)
	}

	info, err := uc.inspector.Inspect(in.Data, in.Password)
	if err != nil {
		return nil, err
	}
	if info.Expired(uc.now()) {
		return nil, fmt.Errorf("%w: certificado vencido em %s", domain.ErrInvalidInput, info.NotAfter.Format("02/01/2006"))
	}

	upload := ports.CertificateUpload{FileName: in.FileName, Data: in.Data, Password: in.Password}
	if err := uc.gateway.UploadCertificate(ctx, company.EnotasID, upload); err != nil {
		return nil, err
	}
	uc.log.Info().Str("enotas_id", company.EnotasID).Time("not_after", info.NotAfter).Msg("certificado vinculado")

	cert := &entity.Certificate{
		CompanyID:     company.ID,
		Nome:          nfse.SafeFileName(in.FileName),
		Valido:        true,
		Titular:       info.Subject,
		NumeroDeSerie: info.SerialNumber,
		DataInicio:    info.NotBefore,
		DataValidade:  info.NotAfter,
		DataUpload:    uc.now().UTC(),
		Tipo:          entity.CertificateKindA1,
		Status:        entity.CertificateStatusActive,
	}
	if err := uc.certs.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("guardar certificado: %w", err)
	}
	return uc.toCertificateResponse(cert), nil
}

// ListCertificates certificados de la empresa del usuario, más recientes primero.
// Un ATIVO vencido se informa como EXPIRADO.
func (uc *UseCase) ListCertificates(ctx context.Context, userID string) ([]dto.CertificateResponse, error) {
	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	list, err := uc.certs.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("listar certificados: %w", err)
	}
	out := make([]dto.CertificateResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *uc.toCertificateResponse(c))
	}
	return out, nil
}

// RevokeCertificate marca el certificado como REVOGADO. Solo cambia el registro local.
func (uc *UseCase) RevokeCertificate(ctx context.Context, userID, id string) (*dto.CertificateResponse, error) {
	company, err := uc.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	cert, err := uc.certs.Revoke(ctx, company.ID, id)
	if err != nil {
		return nil, fmt.Errorf("revocar certificado: %w", err)
	}
	if cert == nil {
		return nil, domain.ErrNotFound
	}
	uc.log.Info().Str("certificado_id", id).Msg("certificado revogado")
	return uc.toCertificateResponse(cert), nil
}

// ListMunicipalServices consulta los servicios habilitados en el municipio.
func (uc *UseCase) ListMunicipalServices(ctx context.Context, uf, cidade string) ([]dto.MunicipalServiceResponse, error) {
	uf = strings.TrimSpace(uf)
	cidade = strings.TrimSpace(cidade)
	if len(uf) != 2 || cidade == "" {
		return nil, fmt.Errorf("%w: uf (2 letras) y cidade son requeridos", domain.ErrInvalidInput)
	}
	list, err := uc.gateway.ListMunicipalServices(ctx, uf, cidade)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MunicipalServiceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.MunicipalServiceResponse{Codigo: s.Codigo, Descricao: s.Descricao, Aliquota: s.Aliquota.String()})
	}
	return out, nil
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

func (uc *UseCase) toCertificateResponse(c *entity.Certificate) *dto.CertificateResponse {
	now := uc.now()
	return &dto.CertificateResponse{
		ID:              c.ID,
		Nome:            c.Nome,
		Valido:          c.Valido,
		Titular:         c.Titular,
		DataInicio:      c.DataInicio,
		DataValidade:    c.DataValidade,
		DataUpload:      c.DataUpload,
		NumeroDeSerie:   c.NumeroDeSerie,
		Tipo:            c.Tipo,
		Status:          c.EffectiveStatus(now),
		DiasParaExpirar: daysUntil(now, c.DataValidade),
	}
}

// daysUntil días completos o fracción restantes hasta t, redondeado hacia arriba.
func daysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// mergeGatewayCompany completa out con los datos de cadastro de eNotas sin tocar los de estado.
func mergeGatewayCompany(out *dto.CompanyResponse, g *ports.GatewayCompany) {
	if g.RazaoSocial != "" {
		out.RazaoSocial = g.RazaoSocial
	}
	if g.NomeFantasia != "" {
		out.NomeFantasia = g.NomeFantasia
	}
	out.InscricaoMunicipal = g.InscricaoMunicipal
	out.Email = g.Email
	out.Telefone = g.Telefone
	a := g.Endereco
	out.Endereco = &dto.EnderecoRequest{
		CEP: a.CEP, Logradouro: a.Logradouro, Numero: a.Numero, Complemento: a.Complemento,
		Bairro: a.Bairro, Cidade: a.Cidade, UF: a.UF,
		CodigoIbgeUf: a.CodigoIbgeUf, CodigoIbgeCidade: a.CodigoIbgeCidade,
	}
}

func toGatewayCompany(cnpj string, in dto.RegisterCompanyRequest) ports.GatewayCompany {
	e := in.Endereco
	return ports.GatewayCompany{
		RazaoSocial:        in.RazaoSocial,
		NomeFantasia:       in.NomeFantasia,
		CNPJ:               cnpj,
		InscricaoMunicipal: in.InscricaoMunicipal,
		Email:              in.Email,
		Telefone:           nfse.OnlyDigits(in.Telefone),
		Endereco: ports.GatewayAddress{
			CEP:              nfse.OnlyDigits(e.CEP),
			Logradouro:       e.Logradouro,
			Numero:           e.Numero,
			Complemento:      e.Complemento,
			Bairro:           e.Bairro,
			Cidade:           e.Cidade,
			UF:               strings.ToUpper(e.UF),
			CodigoIbgeUf:     e.CodigoIbgeUf,
			CodigoIbgeCidade: e.CodigoIbgeCidade,
		},
	}
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:             c.ID,
		CNPJ:           c.CNPJ,
		RazaoSocial:    c.RazaoSocial,
		NomeFantasia:   c.NomeFantasia,
		StatusCadastro: c.RegistrationStatus,
		WebhookID:      c.WebhookID,
		EnotasID:       c.EnotasID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
