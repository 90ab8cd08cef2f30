package academics

import (
	"log"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/academics/model"
)

type classSeed struct {
	Name     string   `json:"name"`
	Level    int      `json:"level"`
	Sections []string `json:"sections"`
}

type termSeed struct {
	Name      string `json:"name"`
	Year      int    `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsActive  bool   `json:"is_active"`
}

type file struct {
	Classes []classSeed `json:"classes"`
	Terms   []termSeed  `json:"terms"`
}

// SeedAcademicsFromJSON inserts classes, their sections and terms; rows that exist by name are skipped.
func SeedAcademicsFromJSON(db *gorm.DB, filePath string) error {
	log.Println("📥 Reading", filePath)
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var f file
	if err := sonic.Unmarshal(raw, &f); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, cs := range f.Classes {
			cls := model.Class{ClassName: cs.Name, ClassLevel: cs.Level, ClassIsActive: true}
			if err := tx.Where("class_name = ?", cs.Name).FirstOrCreate(&cls).Error; err != nil {
				return err
			}
			for _, name := range cs.Sections {
				sec := model.Section{SectionClassID: cls.ClassID, SectionName: name}
				if err := tx.Where("section_class_id = ? AND section_name = ?", cls.ClassID, name).
					FirstOrCreate(&sec).Error; err != nil {
					return err
				}
			}
		}
		for _, ts := range f.Terms {
			start, err := time.Parse("2006-01-02", ts.StartDate)
			if err != nil {
				return err
			}
			end, err := time.Parse("2006-01-02", ts.EndDate)
			if err != nil {
				return err
			}
			term := model.AcademicTerm{
				AcademicTermName:      ts.Name,
				AcademicTermYear:      ts.Year,
				AcademicTermStartDate: start,
				AcademicTermEndDate:   end,
				AcademicTermIsActive:  ts.IsActive,
			}
			if err := tx.Where("academic_term_name = ? AND academic_term_year = ?", ts.Name, ts.Year).
				FirstOrCreate(&term).Error; err != nil {
				return err
			}
		}
		log.Printf("✅ academics: %d classes, %d terms", len(f.Classes), len(f.Terms))
		return nil
	})
}
