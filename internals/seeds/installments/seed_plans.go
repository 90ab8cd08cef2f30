package installments

import (
	"log"
	"os"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/installments/model"
)

type planSeed struct {
	Name        string                  `json:"name"`
	Description *string                 `json:"description"`
	Steps       []model.InstallmentStep `json:"steps"`
}

func SeedPlansFromJSON(db *gorm.DB, filePath string) error {
	log.Println("📥 Reading", filePath)
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	var seeds []planSeed
	if err := sonic.Unmarshal(raw, &seeds); err != nil {
		return err
	}

	var existing []string
	if err := db.Model(&model.InstallmentPlan{}).Pluck("installment_plan_name", &existing).Error; err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var fresh []model.InstallmentPlan
	for _, s := range seeds {
		if have[s.Name] {
			log.Printf("ℹ️ plan %q exists, skipped", s.Name)
			continue
		}
		p := model.InstallmentPlan{
			InstallmentPlanName:        s.Name,
			InstallmentPlanDescription: s.Description,
			InstallmentPlanIsActive:    true,
		}
		p.SetSteps(s.Steps)
		fresh = append(fresh, p)
	}
	if len(fresh) == 0 {
		log.Println("ℹ️ no new installment plans")
		return nil
	}
	if err := db.Create(&fresh).Error; err != nil {
		return err
	}
	log.Printf("✅ %d installment plans inserted", len(fresh))
	return nil
}
