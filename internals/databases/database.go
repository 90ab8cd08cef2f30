package database

import (
	"context"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	feeModel "schoolfee_backend/internals/features/finance/fees/model"
	planModel "schoolfee_backend/internals/features/finance/installments/model"
	invoiceModel "schoolfee_backend/internals/features/finance/invoices/model"
	paymentModel "schoolfee_backend/internals/features/finance/payments/model"
	academicModel "schoolfee_backend/internals/features/school/academics/model"
	admissionModel "schoolfee_backend/internals/features/school/admissions/model"
)

var DB *gorm.DB

// ConnectDB opens the pool. statement_timeout keeps a stuck query from outliving the request.
func ConnectDB() *gorm.DB {
	log.Println("🔌 Connecting to PostgreSQL...")

	dsn := configs.DSN() + "&options=-c%20statement_timeout%3D5000"
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
	return db
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("[WARN] pool tune: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx); err != nil {
			log.Printf("[WARN] warm-up ping: %v", err)
		}
	}()
}

func Ping(ctx context.Context) error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Models lists every table AutoMigrate manages, parents first.
func Models() []any {
	return []any{
		&academicModel.Class{},
		&academicModel.Section{},
		&academicModel.AcademicTerm{},
		&feeModel.FeeGroup{},
		&feeModel.FeeItem{},
		&feeModel.FeeItemRule{},
		&planModel.InstallmentPlan{},
		&invoiceModel.Invoice{},
		&invoiceModel.InvoiceItem{},
		&paymentModel.Payment{},
		&paymentModel.Checkout{},
		&paymentModel.GatewayEvent{},
		&admissionModel.Child{},
		&admissionModel.Admission{},
		&admissionModel.Student{},
		&admissionModel.TermEnrollment{},
		&admissionModel.StudentSequence{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
