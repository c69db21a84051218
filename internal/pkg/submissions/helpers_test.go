package submissions

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yfkiwi/growthPartnerAI/app/models"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
	"github.com/yfkiwi/growthPartnerAI/internal/pkg/database"
)

var dbCounter atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbCounter.Add(1))
	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, Name: dsn, Quiet: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewServiceFromDB(db), db
}

func seedBundle(t *testing.T, db *gorm.DB, paymentStatus string) *models.Bundle {
	t.Helper()
	bundle := &models.Bundle{UserEmail: "founder@example.com", PaymentStatus: paymentStatus}
	require.NoError(t, db.Create(bundle).Error)
	return bundle
}

func countSubmissions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&n).Error)
	return n
}

func validInput(reportType string) CreateInput {
	return CreateInput{
		Email:      "founder@example.com",
		Idea:       "A marketplace for idle GPU time",
		ReportType: reportType,
	}
}

func strPtr(v string) *string { return &v }

var bg = context.Background()
