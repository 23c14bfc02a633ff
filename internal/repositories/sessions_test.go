package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionFilter(t *testing.T) {
	// arrange
	f := NewSessionFilter()
	id := uuid.New()
	tenantId := uuid.New()
	subject := uuid.New()
	now := time.Now()

	// act
	f = f.Id(id)
	f = f.TenantId(tenantId)
	f = f.Subject(subject)
	f = f.UnexpiredAt(now)

	// assert
	assert.Equal(t, &id, f.id)
	assert.Equal(t, &tenantId, f.tenantId)
	assert.Equal(t, &subject, f.subject)
	assert.Equal(t, &now, f.unexpiredAt)
}
