package certificate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/nfse-api/internal/application/ports"
	"github.com/jhoicas/nfse-api/internal/domain"
	"github.com/jhoicas/nfse-api/internal/infrastructure/certificate"
)

func TestInspect_ArchivoVacio(t *testing.T) {
	_, err := certificate.NewInspector().Inspect(nil, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInspect_ArchivoCorrupto(t *testing.T) {
	_, err := certificate.NewInspector().Inspect([]byte("no es un pfx"), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "p12")
}

func TestCertificateInfo_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	info := &ports.CertificateInfo{NotAfter: now.Add(-time.Hour)}
	assert.True(t, info.Expired(now))

	info.NotAfter = now.AddDate(1, 0, 0)
	assert.False(t, info.Expired(now))
}
