/*
	Basic script that fills a database file with random entries of every
	content type, to help test indexing speed and shadowing on large files.
*/

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"lazydb"
)

const (
	// Fixed universe, so repeated runs overwrite and produce shadowed records
	totalKeys = 200

	progressEvery = 1000
)

func main() {
	file := flag.String("file", "gen.lazydb", "Database file to fill")
	writes := flag.Int("n", 10000, "Number of writes to perform")
	flag.Parse()

	start := time.Now()
	fmt.Println("Starting lazydb churn-heavy load generator")

	db, err := lazydb.Open(*file)
	if err != nil {
		fmt.Println("open error:", err)
		return
	}
	defer db.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 1; i <= *writes; i++ {
		key := randomKey(rng)
		if err := db.Write(key, randomValue(rng)); err != nil {
			fmt.Printf("write %d (key %v) error: %v\n", i, key, err)
			return
		}

		if i%progressEvery == 0 {
			fmt.Printf("completed %d writes\n", i)
		}
	}

	fmt.Printf("Wrote %d entries over %d keys in %v\n", *writes, db.Count(), time.Since(start))
}

func randomKey(rng *rand.Rand) any {
	if rng.Intn(2) == 0 {
		return int64(rng.Intn(totalKeys))
	}
	return fmt.Sprintf("key-%03d", rng.Intn(totalKeys))
}

func randomValue(rng *rand.Rand) any {
	switch rng.Intn(5) {
	case 0:
		return fmt.Sprintf("value-%03d-xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", rng.Intn(1000))
	case 1:
		return rng.Int63n(1 << 30)
	case 2:
		return map[string]any{"n": rng.Intn(100), "tag": "generated"}
	case 3:
		list := make([]int64, rng.Intn(16)+1)
		for i := range list {
			list[i] = rng.Int63n(1 << 20)
		}
		return list
	default:
		raw := make([]byte, rng.Intn(64)+1)
		rng.Read(raw)
		return raw
	}
}
