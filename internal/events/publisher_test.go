package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"catalog-service/internal/models"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "catalog.product.created", Subject(models.KindProduct, ChangeCreated))
	assert.Equal(t, "catalog.service.deleted", Subject(models.KindService, ChangeDeleted))
}

func TestBuildItemEventProduct(t *testing.T) {
	categoryID := uuid.New()
	item := models.NewProductItem(
		models.BaseItem{ID: uuid.New(), OwnerID: uuid.New(), Name: "Red Shoes", Price: 50, IsAvailable: true, CategoryID: &categoryID},
		models.Product{SKU: "SHO-1", Stock: 10},
	)

	event := BuildItemEvent(ChangeUpdated, &item, []string{"price"})

	assert.Equal(t, "catalog.product.updated", event.EventType)
	assert.Equal(t, item.ID().String(), event.ItemID)
	assert.Equal(t, "SHO-1", event.SKU)
	assert.Equal(t, categoryID.String(), event.CategoryID)
	assert.Equal(t, []string{"price"}, event.ChangedFields)
	assert.NotEmpty(t, event.EventID)
}

func TestBuildItemEventServiceUsesOwnAvailability(t *testing.T) {
	item := models.NewServiceItem(
		models.BaseItem{ID: uuid.New(), Name: "Haircut", IsAvailable: true},
		models.Service{ServiceType: "Grooming", Duration: 30, IsAvailable: false},
	)

	event := BuildItemEvent(ChangeCreated, &item, nil)

	assert.Equal(t, "catalog.service.created", event.EventType)
	assert.False(t, event.IsAvailable)
	assert.Empty(t, event.SKU)
	assert.Empty(t, event.CategoryID)
}
