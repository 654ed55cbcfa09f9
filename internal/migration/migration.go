package migration

import (
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration", fx.Invoke(Run))

// Run applies the schema. The gateway owns a single table, so gorm's
// AutoMigrate is sufficient.
func Run(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&domain.ProcessorConfig{}); err != nil {
		return err
	}
	log.Info("schema up to date")
	return nil
}
