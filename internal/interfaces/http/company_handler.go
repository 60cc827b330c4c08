package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-api/internal/application/company"
	"github.com/jhoicas/nfse-api/internal/application/dto"
)

// CompanyHandler cadastro de la empresa del usuario y su certificado (protegido).
type CompanyHandler struct {
	uc *company.UseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *company.UseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Register godoc
// @Summary      Cadastrar empresa en eNotas
// @Tags         company
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RegisterCompanyRequest  true  "Datos de la empresa"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/company [post]
func (h *CompanyHandler) Register(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	var in dto.RegisterCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Register(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Empresa del usuario
// @Tags         company
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.CompanyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/company [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.Get(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UploadCertificate godoc
// @Summary      Vincular certificado A1 (.pfx)
// @Tags         company
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        arquivo  formData  file    true  "Certificado .pfx/.p12"
// @Param        senha    formData  string  true  "Senha del certificado"
// @Success      200  {object}  dto.CertificateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/company/certificate [post]
func (h *CompanyHandler) UploadCertificate(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	fh, err := c.FormFile("arquivo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "arquivo requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo leer el arquivo"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo leer el arquivo"})
	}

	out, err := h.uc.BindCertificate(c.UserContext(), userID, dto.BindCertificateInput{
		FileName: fh.Filename,
		Data:     data,
		Password: c.FormValue("senha"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MunicipalServices godoc
// @Summary      Lista de servicios municipales
// @Tags         company
// @Produce      json
// @Security     BearerAuth
// @Param        uf      query  string  true  "UF (2 letras)"
// @Param        cidade  query  string  true  "Nombre de la ciudad"
// @Success      200  {array}   dto.MunicipalServiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/municipal-services [get]
func (h *CompanyHandler) MunicipalServices(c *fiber.Ctx) error {
	if _, ok := requireUser(c); !ok {
		return nil
	}
	out, err := h.uc.ListMunicipalServices(c.UserContext(), c.Query("uf"), c.Query("cidade"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Certificates godoc
// @Summary      Certificados de la empresa
// @Description  Un ATIVO vencido se informa como EXPIRADO.
// @Tags         company
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.CertificateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/company/certificates [get]
func (h *CompanyHandler) Certificates(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.ListCertificates(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RevokeCertificate godoc
// @Summary      Revocar certificado
// @Tags         company
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del certificado"
// @Success      200  {object}  dto.CertificateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/company/certificates/{id}/revoke [patch]
func (h *CompanyHandler) RevokeCertificate(c *fiber.Ctx) error {
	userID, ok := requireUser(c)
	if !ok {
		return nil
	}
	out, err := h.uc.RevokeCertificate(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
