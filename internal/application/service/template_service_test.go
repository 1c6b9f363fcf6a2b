package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	infraRepo "github.com/sangkips/receipts-api/internal/infrastructure/repository"
	"github.com/sangkips/receipts-api/pkg/optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesAreScopedToOwner(t *testing.T) {
	svc := NewTemplateService(infraRepo.NewTemplateRepository(newTestDB(t)))
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	price := dec("150")
	created, err := svc.CreateTemplate(ctx, alice, &CreateTemplateInput{
		Name:         "Mensualidad",
		CustomerName: str("Colegio"),
		Items: []TemplateItemInput{
			{Description: "Cuota", UnitPrice: &price},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, alice, created.UserID)
	require.Len(t, created.Items, 1)
	assert.Equal(t, "1", created.Items[0].Quantity.String())

	got, err := svc.GetTemplate(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mensualidad", got.Name)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "150", got.Items[0].UnitPrice.String())

	_, err = svc.GetTemplate(ctx, bob, created.ID)
	requireAppError(t, err, http.StatusNotFound)

	_, err = svc.UpdateTemplate(ctx, bob, created.ID, &UpdateTemplateInput{Name: optional.Of("x")})
	requireAppError(t, err, http.StatusNotFound)

	requireAppError(t, svc.DeleteTemplate(ctx, bob, created.ID), http.StatusNotFound)

	bobs, err := svc.ListTemplates(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	require.NoError(t, svc.DeleteTemplate(ctx, alice, created.ID))
	_, err = svc.GetTemplate(ctx, alice, created.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestListTemplatesOrderedByName(t *testing.T) {
	svc := NewTemplateService(infraRepo.NewTemplateRepository(newTestDB(t)))
	ctx := context.Background()
	owner := uuid.New()

	for _, name := range []string{"Zeta", "Alfa", "Media"} {
		_, err := svc.CreateTemplate(ctx, owner, &CreateTemplateInput{Name: name})
		require.NoError(t, err)
	}

	list, err := svc.ListTemplates(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Alfa", list[0].Name)
	assert.Equal(t, "Media", list[1].Name)
	assert.Equal(t, "Zeta", list[2].Name)
}

func TestUpdateTemplatePartial(t *testing.T) {
	svc := NewTemplateService(infraRepo.NewTemplateRepository(newTestDB(t)))
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateTemplate(ctx, owner, &CreateTemplateInput{
		Name:        "Base",
		Description: str("original"),
		Notes:       str("nota"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTemplate(ctx, owner, created.ID, &UpdateTemplateInput{
		Description: optional.Null[string](),
		Name:        optional.Of("Renombrada"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renombrada", updated.Name)
	assert.Nil(t, updated.Description)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "nota", *updated.Notes)

	_, err = svc.UpdateTemplate(ctx, owner, created.ID, &UpdateTemplateInput{Name: optional.Of(" ")})
	requireAppError(t, err, http.StatusUnprocessableEntity)
}

func TestCreateTemplateValidation(t *testing.T) {
	svc := NewTemplateService(infraRepo.NewTemplateRepository(newTestDB(t)))
	zero := dec("0")

	_, err := svc.CreateTemplate(context.Background(), uuid.New(), &CreateTemplateInput{
		Name:  "",
		Items: []TemplateItemInput{{Description: "x", Quantity: &zero}},
	})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.ElementsMatch(t, []string{"name", "items[0].quantity"}, fieldNames(appErr))
}
