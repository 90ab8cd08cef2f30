package seeds

import (
	"log"
	"path/filepath"

	"gorm.io/gorm"

	"schoolfee_backend/internals/seeds/academics"
	"schoolfee_backend/internals/seeds/fees"
	"schoolfee_backend/internals/seeds/installments"
)

// RunAllSeeds loads the JSON files under dir (normally internals/seeds). Order matters:
// fee rules look classes and terms up by name.
func RunAllSeeds(db *gorm.DB, dir string) error {
	steps := []struct {
		name string
		run  func(*gorm.DB, string) error
		file string
	}{
		{"academics", academics.SeedAcademicsFromJSON, "academics/data_academics.json"},
		{"installment plans", installments.SeedPlansFromJSON, "installments/data_plans.json"},
		{"fees", fees.SeedFeesFromJSON, "fees/data_fees.json"},
	}
	for _, s := range steps {
		if err := s.run(db, filepath.Join(dir, s.file)); err != nil {
			log.Printf("❌ seed %s failed: %v", s.name, err)
			return err
		}
	}
	return nil
}
