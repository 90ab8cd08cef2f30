package fees

import (
	"fmt"
	"log"
	"os"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/fees/model"
	academicModel "schoolfee_backend/internals/features/school/academics/model"
)

type itemSeed struct {
	Name      string             `json:"name"`
	Frequency model.FeeFrequency `json:"frequency"`
	Optional  bool               `json:"optional"`
}

type groupSeed struct {
	Name         string     `json:"name"`
	Description  *string    `json:"description"`
	DisplayOrder int        `json:"display_order"`
	Items        []itemSeed `json:"items"`
}

// Rules name their item and class; term is optional (class-wide when empty).
type ruleSeed struct {
	Item   string          `json:"item"`
	Class  string          `json:"class"`
	Term   string          `json:"term"`
	Year   int             `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

type file struct {
	Groups []groupSeed `json:"groups"`
	Rules  []ruleSeed  `json:"rules"`
}

// SeedFeesFromJSON needs the academics seed to have run: rules point at classes and terms by name.
func SeedFeesFromJSON(db *gorm.DB, filePath string) error {
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
		items := map[string]model.FeeItem{}
		for _, gs := range f.Groups {
			g := model.FeeGroup{
				FeeGroupName:         gs.Name,
				FeeGroupDescription:  gs.Description,
				FeeGroupDisplayOrder: gs.DisplayOrder,
				FeeGroupIsActive:     true,
			}
			if err := tx.Where("fee_group_name = ?", gs.Name).FirstOrCreate(&g).Error; err != nil {
				return err
			}
			for _, is := range gs.Items {
				if is.Frequency == "" {
					is.Frequency = model.FeeFrequencyTermly
				}
				it := model.FeeItem{
					FeeItemGroupID:    g.FeeGroupID,
					FeeItemName:       is.Name,
					FeeItemFrequency:  is.Frequency,
					FeeItemIsOptional: is.Optional,
					FeeItemIsActive:   true,
				}
				if err := tx.Where("fee_item_group_id = ? AND fee_item_name = ?", g.FeeGroupID, is.Name).
					FirstOrCreate(&it).Error; err != nil {
					return err
				}
				items[is.Name] = it
			}
		}

		created := 0
		for _, rs := range f.Rules {
			it, ok := items[rs.Item]
			if !ok {
				return fmt.Errorf("rule for unknown fee item %q", rs.Item)
			}
			var cls academicModel.Class
			if err := tx.Where("class_name = ?", rs.Class).First(&cls).Error; err != nil {
				return fmt.Errorf("class %q: %w", rs.Class, err)
			}
			q := tx.Where("fee_item_rule_fee_item_id = ? AND fee_item_rule_class_id = ? AND fee_item_rule_is_active", it.FeeItemID, cls.ClassID)
			rule := model.FeeItemRule{
				FeeItemRuleFeeItemID: it.FeeItemID,
				FeeItemRuleClassID:   cls.ClassID,
				FeeItemRuleAmount:    rs.Amount,
				FeeItemRuleIsActive:  true,
			}
			if rs.Term != "" {
				var term academicModel.AcademicTerm
				if err := tx.Where("academic_term_name = ? AND academic_term_year = ?", rs.Term, rs.Year).First(&term).Error; err != nil {
					return fmt.Errorf("term %q %d: %w", rs.Term, rs.Year, err)
				}
				rule.FeeItemRuleTermID = &term.AcademicTermID
				q = q.Where("fee_item_rule_term_id = ?", term.AcademicTermID)
			} else {
				q = q.Where("fee_item_rule_term_id IS NULL")
			}

			var n int64
			if err := q.Model(&model.FeeItemRule{}).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&rule).Error; err != nil {
				return err
			}
			created++
		}
		log.Printf("✅ fees: %d groups, %d items, %d new rules", len(f.Groups), len(items), created)
		return nil
	})
}
