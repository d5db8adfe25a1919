package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"lazydb"
)

func main() {
	file := flag.String("file", "data.lazydb", "Database file to open or create")
	lenWidth := flag.Int("lenwidth", lazydb.DefaultContentIntSize, "Content-length field width for a new file (bytes)")
	listWidth := flag.Int("listwidth", lazydb.DefaultIntListSize, "Integer-list element width for a new file (bytes)")
	flag.Parse()

	db, err := lazydb.Open(*file,
		lazydb.WithContentIntSize(*lenWidth),
		lazydb.WithIntListSize(*listWidth),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	fmt.Printf("Opened %s (%d keys)\n", *file, db.Count())
	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("input error:", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return
		}

		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		execute(db, args)
	}
}

func execute(db *lazydb.DB, args []string) {
	switch strings.ToLower(args[0]) {
	case "get":
		if len(args) != 2 {
			fmt.Println("usage: get <key>")
			return
		}
		val, err := db.Read(parseKey(args[1]))
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(formatValue(val))
	case "set":
		if len(args) != 3 {
			fmt.Println("usage: set <key> <value>")
			return
		}
		if err := db.Write(parseKey(args[1]), parseValue(args[2])); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("ok")
	case "exists":
		if len(args) != 2 {
			fmt.Println("usage: exists <key>")
			return
		}
		fmt.Println(db.Has(parseKey(args[1])))
	case "count":
		fmt.Println(db.Count())
	case "keys":
		keys := db.Keys()
		if len(keys) == 0 {
			fmt.Println("nil")
			return
		}
		for _, k := range keys {
			fmt.Println(k)
		}
	case "help":
		printHelp()
	default:
		fmt.Println("Invalid Command")
	}
}

// parseKey treats a decimal literal as an integer key, anything else as a
// string key. Quote a number to force a string key.
func parseKey(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// parseValue maps a literal onto one of the supported value shapes: decimal
// integer, JSON object, JSON array of integers, or plain string.
func parseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if strings.HasPrefix(s, "{") {
		var dict map[string]any
		if err := json.Unmarshal([]byte(s), &dict); err == nil {
			return dict
		}
	}
	if strings.HasPrefix(s, "[") {
		var list []int64
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list
		}
	}
	return s
}

func formatValue(val any) string {
	switch v := val.(type) {
	case map[string]any:
		text, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(text)
	case []byte:
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprint(v)
	}
}

func printHelp() {
	helpString := `
Available Commands:

GET <key>
  Retrieve the value stored under the key.
  Response: value | error

SET <key> <value>
  Store a value under the key. A repeated key shadows the old value.
  Values: integer, JSON object, JSON integer array, or string.
  Response: ok

EXISTS <key>
  Check if a key exists.
  Response: true | false

COUNT
  Return the total number of keys stored.
  Response: integer

KEYS
  List all stored keys.
  Response: list of keys | nil

HELP
  Show this help message.

EXIT
  Close the database and quit.
`

	fmt.Println(strings.TrimSpace(helpString))
}
