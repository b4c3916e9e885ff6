package database

import "mdd/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Theme{},
		&models.Article{},
		&models.Comment{},
		&models.Subscription{},
	}
}
