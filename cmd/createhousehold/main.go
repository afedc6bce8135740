// Command createhousehold provisions a new household: generates (or accepts)
// an access key, stores its hash, and seeds a starter catalog. The key is
// printed once — only its hash is persisted.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net/url"
	"os"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/store"
)

const keyLength = 12

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var starterProducts = []string{
	"Milk",
	"Eggs",
	"Butter",
	"Bread",
	"Cheese",
	"Yogurt",
	"Apples",
	"Bananas",
	"Tomatoes",
	"Onions",
	"Garlic",
	"Potatoes",
	"Carrots",
	"Chicken breast",
	"Ground beef",
	"Rice",
	"Pasta",
	"Flour",
	"Sugar",
	"Coffee",
	"Tea",
	"Orange juice",
	"Olive oil",
	"Canned tomatoes",
	"Toilet paper",
	"Paper towels",
	"Dish soap",
	"Laundry detergent",
	"Trash bags",
}

func main() {
	name := flag.String("name", "", "household display name (optional)")
	key := flag.String("key", "", "custom access key (optional, random if not provided)")
	baseURL := flag.String("url", "", "base URL of the application (optional, prints a shareable login link)")
	dbPath := flag.String("db", envOr("BYWATER_DB_PATH", "bywater.db"), "path to the database")
	flag.Parse()

	accessKey := *key
	if accessKey == "" {
		var err error
		accessKey, err = generateKey(keyLength)
		if err != nil {
			log.Fatalf("generate access key: %v", err)
		}
	}

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	households := store.NewHouseholdStore(db)

	household, err := households.Create(*name, auth.HashKey(accessKey))
	if err != nil {
		log.Fatalf("create household: %v", err)
	}

	if err := households.SeedProducts(household.ID, starterProducts); err != nil {
		log.Fatalf("seed products: %v", err)
	}

	fmt.Println("Household created")
	fmt.Printf("  ID:          %d\n", household.ID)
	if *name != "" {
		fmt.Printf("  Name:        %s\n", *name)
	}
	fmt.Printf("  Access key:  %s\n", accessKey)
	fmt.Printf("  Products:    %d seeded\n", len(starterProducts))

	if *baseURL != "" {
		link := fmt.Sprintf("%s/?%s", *baseURL, url.Values{"key": {accessKey}}.Encode())
		fmt.Printf("  Login link:  %s\n", link)
	}

	fmt.Println("\nShare the access key or link with the rest of the household.")
}

func generateKey(length int) (string, error) {
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
