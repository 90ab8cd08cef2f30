package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/lib/pq"

	"schoolfee_backend/internals/configs"
	database "schoolfee_backend/internals/databases"
)

func main() {
	skipAuto := flag.Bool("skip-auto", false, "only apply the SQL files, no GORM AutoMigrate")
	flag.Parse()

	configs.LoadEnv()

	if !*skipAuto {
		gdb := configs.InitSeederDB()
		if err := database.AutoMigrate(gdb); err != nil {
			log.Fatalf("❌ AutoMigrate: %v", err)
		}
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
		log.Println("✅ tables migrated")
	}

	db, err := sql.Open("postgres", configs.DSN())
	if err != nil {
		log.Fatalf("❌ open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	version, err := database.Migrate(ctx, db)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Printf("✅ schema at version %d", version)
}
