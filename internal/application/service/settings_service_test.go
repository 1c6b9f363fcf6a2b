package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	infraRepo "github.com/sangkips/receipts-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettingsDefaultsWithoutWriting(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(infraRepo.NewSettingsRepository(db))

	settings, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EMPRESA", settings.CompanyName)
	assert.Equal(t, "Dirección de la empresa | Tel: 0000-0000", settings.CompanyInfo)
	assert.Equal(t, "RECIBO", settings.ReceiptTitle)
	assert.Equal(t, entity.DefaultFieldVisibility(), settings.Visibility())

	var count int64
	require.NoError(t, db.Model(&entity.Settings{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateSettingsPatchesFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(infraRepo.NewSettingsRepository(db))
	ctx := context.Background()

	hide := false
	_, err := svc.UpdateSettings(ctx, &UpdateSettingsInput{
		CompanyName:     str("Ferretería El Martillo"),
		FieldVisibility: &FieldVisibilityPatch{Signature: &hide},
	})
	require.NoError(t, err)

	_, err = svc.UpdateSettings(ctx, &UpdateSettingsInput{
		ReceiptTitle:    str("COMPROBANTE"),
		FieldVisibility: &FieldVisibilityPatch{Notes: &hide},
	})
	require.NoError(t, err)

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.SettingsID, settings.ID)
	assert.Equal(t, "Ferretería El Martillo", settings.CompanyName)
	assert.Equal(t, "COMPROBANTE", settings.ReceiptTitle)
	assert.Equal(t, entity.DefaultCompanyInfo, settings.CompanyInfo)

	vis := settings.Visibility()
	assert.False(t, vis.Signature)
	assert.False(t, vis.Notes)
	assert.True(t, vis.AmountInWords)
	assert.True(t, vis.LineItemsInPrint)

	var count int64
	require.NoError(t, db.Model(&entity.Settings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateSettingsRejectsBlankName(t *testing.T) {
	svc := NewSettingsService(infraRepo.NewSettingsRepository(newTestDB(t)))

	_, err := svc.UpdateSettings(context.Background(), &UpdateSettingsInput{CompanyName: str("  ")})
	appErr := requireAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, []string{"company_name"}, fieldNames(appErr))
}
