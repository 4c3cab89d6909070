package dao

import (
	"fmt"

	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Organisation{}, "Members", &OrganisationMember{}); err != nil {
		return fmt.Errorf("db.SetupJoinTable -> %w", err)
	}

	return db.AutoMigrate(
		&User{},
		&Organisation{},
		&OrganisationMember{},
		&Location{},
		&Event{},
		&Job{},
		&Skill{},
		&RequiresSkill{},
		&Participation{},
	)
}

// dropAllTables wipes the public schema. Integration tests use it between runs.
func dropAllTables(db *gorm.DB) error {
	var tableNames []string
	if err := db.Table("information_schema.tables").
		Where("table_schema = ?", "public").
		Pluck("table_name", &tableNames).Error; err != nil {
		return err
	}

	for _, tableName := range tableNames {
		if err := db.Exec(`DROP TABLE IF EXISTS "` + tableName + `" CASCADE`).Error; err != nil {
			return err
		}
	}

	return nil
}
