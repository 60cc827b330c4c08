// Package memory implementa los repositorios sobre mapas en memoria.
// Se usa con STORE_DRIVER=memory en desarrollo local y en los tests de aplicación.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/domain/entity"
	"github.com/jhoicas/nfse-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios.
type Store struct {
	mu            sync.RWMutex
	companies     map[string]entity.Company
	invoices      map[string]entity.Invoice
	customers     map[string]entity.Customer
	services      map[string]entity.Service
	serviceTypes  []entity.ServiceLookup
	categories    []entity.ServiceLookup
	certificates  map[string]entity.Certificate
	notifications []entity.Notification
	logs          []entity.WebhookLog
	now           func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		companies:    make(map[string]entity.Company),
		invoices:     make(map[string]entity.Invoice),
		customers:    make(map[string]entity.Customer),
		services:     make(map[string]entity.Service),
		certificates: make(map[string]entity.Certificate),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Companies() *CompanyRepository         { return &CompanyRepository{s: s} }
func (s *Store) Invoices() *InvoiceRepository           { return &InvoiceRepository{s: s} }
func (s *Store) Customers() *CustomerRepository         { return &CustomerRepository{s: s} }
func (s *Store) Services() *ServiceRepository           { return &ServiceRepository{s: s} }
func (s *Store) Certificates() *CertificateRepository   { return &CertificateRepository{s: s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }
func (s *Store) WebhookLogs() *WebhookLogRepository     { return &WebhookLogRepository{s: s} }

// AddServiceType y AddServiceCategory cargan las tablas de apoyo del catálogo.
func (s *Store) AddServiceType(l entity.ServiceLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	s.serviceTypes = append(s.serviceTypes, l)
}

func (s *Store) AddServiceCategory(l entity.ServiceLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	s.categories = append(s.categories, l)
}

// WebhookLogEntries copia de los logs guardados (inspección en tests y depuración).
func (s *Store) WebhookLogEntries() []entity.WebhookLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.WebhookLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// NotificationEntries copia de todas las notificaciones.
func (s *Store) NotificationEntries() []entity.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// ── Empresas ─────────────────────────────────────────────────────────────────

type CompanyRepository struct{ s *Store }

var _ repository.CompanyRepository = (*CompanyRepository)(nil)

func (r *CompanyRepository) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Mismas restricciones UNIQUE que empresas (user_id y cnpj).
	for _, existing := range r.s.companies {
		if existing.CNPJ == c.CNPJ || (c.UserID != "" && existing.UserID == c.UserID) {
			return domain.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.companies[c.ID] = *c
	return nil
}

func (r *CompanyRepository) GetByUserID(_ context.Context, userID string) (*entity.Company, error) {
	return r.find(func(c entity.Company) bool { return c.UserID == userID }), nil
}

func (r *CompanyRepository) GetByCNPJ(_ context.Context, cnpj string) (*entity.Company, error) {
	return r.find(func(c entity.Company) bool { return c.CNPJ == cnpj }), nil
}

func (r *CompanyRepository) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.find(func(c entity.Company) bool { return c.ID == id }), nil
}

func (r *CompanyRepository) ApplyRegistration(_ context.Context, reg entity.CompanyRegistration) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.companies {
		if c.CNPJ != reg.CNPJ {
			continue
		}
		c.RegistrationStatus = reg.RegistrationStatus
		c.WebhookID = reg.WebhookID
		c.EnotasID = reg.EnotasID
		c.UpdatedAt = r.s.now()
		r.s.companies[id] = c
		out := c
		return &out, nil
	}
	return nil, nil
}

func (r *CompanyRepository) find(match func(entity.Company) bool) *entity.Company {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.companies {
		if match(c) {
			out := c
			return &out
		}
	}
	return nil
}

// ── Notas fiscais ────────────────────────────────────────────────────────────

type InvoiceRepository struct{ s *Store }

var _ repository.InvoiceRepository = (*InvoiceRepository)(nil)

func (r *InvoiceRepository) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := r.s.now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepository) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *InvoiceRepository) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	r.s.mu.RLock()
	list := make([]*entity.Invoice, 0)
	for _, inv := range r.s.invoices {
		if inv.CompanyID == companyID {
			v := inv
			list = append(list, &v)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return strings.Compare(list[i].ID, list[j].ID) > 0
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return paginate(list, limit, offset), nil
}

func (r *InvoiceRepository) SetEnotasID(_ context.Context, id, enotasID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.EnotasID = enotasID
	inv.UpdatedAt = r.s.now()
	r.s.invoices[id] = inv
	return nil
}

func (r *InvoiceRepository) MarkIssued(_ context.Context, in entity.InvoiceIssuance) (*entity.Invoice, error) {
	return r.update(in.InvoiceID, func(inv *entity.Invoice) {
		inv.EmissionStatus = entity.InvoiceStatusIssued
		inv.Numero = in.Numero
		inv.DataEmissao = in.DataEmissao
	}), nil
}

func (r *InvoiceRepository) MarkCancelled(_ context.Context, id string) (*entity.Invoice, error) {
	return r.update(id, func(inv *entity.Invoice) {
		inv.EmissionStatus = entity.InvoiceStatusCancelled
	}), nil
}

func (r *InvoiceRepository) update(id string, apply func(*entity.Invoice)) *entity.Invoice {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil
	}
	apply(&inv)
	inv.UpdatedAt = r.s.now()
	r.s.invoices[id] = inv
	out := inv
	return &out
}

// ── Tomadores ────────────────────────────────────────────────────────────────

type CustomerRepository struct{ s *Store }

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.customers {
		if existing.UserID == c.UserID && existing.CpfCnpj == c.CpfCnpj {
			return domain.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepository) GetByUserAndDocument(_ context.Context, userID, cpfCnpj string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.UserID == userID && c.CpfCnpj == cpfCnpj {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*entity.Customer, error) {
	r.s.mu.RLock()
	list := make([]*entity.Customer, 0)
	for _, c := range r.s.customers {
		if c.UserID == userID {
			v := c
			list = append(list, &v)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].RazaoSocial == list[j].RazaoSocial {
			return list[i].ID < list[j].ID
		}
		return list[i].RazaoSocial < list[j].RazaoSocial
	})
	return paginate(list, limit, offset), nil
}

func (r *CustomerRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.s.customers, id)
	return nil
}

// ── Catálogo de servicios ────────────────────────────────────────────────────

type ServiceRepository struct{ s *Store }

var _ repository.ServiceRepository = (*ServiceRepository)(nil)

func (r *ServiceRepository) Create(_ context.Context, svc *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	now := r.s.now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	r.s.services[svc.ID] = *svc
	return nil
}

func (r *ServiceRepository) GetByID(_ context.Context, userID, id string) (*entity.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	svc, ok := r.s.services[id]
	if !ok || svc.UserID != userID {
		return nil, nil
	}
	return &svc, nil
}

func (r *ServiceRepository) ListByUser(_ context.Context, userID string) ([]*entity.Service, error) {
	r.s.mu.RLock()
	list := make([]*entity.Service, 0)
	for _, svc := range r.s.services {
		if svc.UserID == userID {
			v := svc
			list = append(list, &v)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (r *ServiceRepository) Update(_ context.Context, in *entity.Service) (*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[in.ID]
	if !ok || svc.UserID != in.UserID {
		return nil, nil
	}
	svc.Nome = in.Nome
	svc.TipoServicoID = in.TipoServicoID
	svc.CategoriaServicoID = in.CategoriaServicoID
	svc.PrazoInicio = in.PrazoInicio
	svc.PrazoEntrega = in.PrazoEntrega
	svc.Valor = in.Valor
	svc.Descricao = in.Descricao
	svc.Status = in.Status
	svc.UpdatedAt = r.s.now()
	r.s.services[svc.ID] = svc
	out := svc
	return &out, nil
}

func (r *ServiceRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok || svc.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.s.services, id)
	return nil
}

func (r *ServiceRepository) ListTypes(_ context.Context, userID string) ([]*entity.ServiceLookup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return lookupsOf(r.s.serviceTypes, userID), nil
}

func (r *ServiceRepository) ListCategories(_ context.Context, userID string) ([]*entity.ServiceLookup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return lookupsOf(r.s.categories, userID), nil
}

func lookupsOf(all []entity.ServiceLookup, userID string) []*entity.ServiceLookup {
	out := make([]*entity.ServiceLookup, 0)
	for _, l := range all {
		if l.UserID == userID {
			v := l
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out
}

// ── Certificados ─────────────────────────────────────────────────────────────

type CertificateRepository struct{ s *Store }

var _ repository.CertificateRepository = (*CertificateRepository)(nil)

func (r *CertificateRepository) Create(_ context.Context, c *entity.Certificate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.certificates[c.ID] = *c
	return nil
}

func (r *CertificateRepository) ListByCompany(_ context.Context, companyID string) ([]*entity.Certificate, error) {
	r.s.mu.RLock()
	list := make([]*entity.Certificate, 0)
	for _, c := range r.s.certificates {
		if c.CompanyID == companyID {
			v := c
			list = append(list, &v)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (r *CertificateRepository) Revoke(_ context.Context, companyID, id string) (*entity.Certificate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.certificates[id]
	if !ok || c.CompanyID != companyID {
		return nil, nil
	}
	c.Valido = false
	c.Status = entity.CertificateStatusRevoked
	c.UpdatedAt = r.s.now()
	r.s.certificates[id] = c
	out := c
	return &out, nil
}

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return []*T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Notificaciones ───────────────────────────────────────────────────────────

type NotificationRepository struct{ s *Store }

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = r.s.now()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r *NotificationRepository) ListUnread(_ context.Context, userID string) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Notification, 0)
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.UserID == userID && !n.Read {
			out = append(out, &n)
		}
	}
	return out, nil
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id && r.s.notifications[i].UserID == userID {
			r.s.notifications[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// ── Webhook logs ─────────────────────────────────────────────────────────────

type WebhookLogRepository struct{ s *Store }

var _ repository.WebhookLogRepository = (*WebhookLogRepository)(nil)

func (r *WebhookLogRepository) Create(_ context.Context, l *entity.WebhookLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = r.s.now()
	r.s.logs = append(r.s.logs, *l)
	return nil
}
