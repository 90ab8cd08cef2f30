package main

import (
	"flag"
	"log"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/seeds"
)

func main() {
	dir := flag.String("dir", "internals/seeds", "directory holding the seed JSON files")
	flag.Parse()

	configs.LoadEnv()
	db := configs.InitSeederDB()

	if err := seeds.RunAllSeeds(db, *dir); err != nil {
		log.Fatalf("❌ seeding stopped: %v", err)
	}
	log.Println("✅ seeding done")
}
