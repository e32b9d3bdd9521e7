package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/tjfontaine/autodiag/internal/auth"
)

func main() {
	name := flag.String("name", "default", "client name recorded with the key")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/keygen [-name client] [api-key]")
		fmt.Fprintln(os.Stderr, "Generates a SHA-256 hash of an API key for use in config.yaml.")
		fmt.Fprintln(os.Stderr, "A random key is generated when none is given.")
		flag.PrintDefaults()
	}
	flag.Parse()

	apiKey := flag.Arg(0)
	if apiKey == "" {
		b := make([]byte, 24)
		if _, err := rand.Read(b); err != nil {
			fmt.Fprintln(os.Stderr, "generate key:", err)
			os.Exit(1)
		}
		apiKey = "ad-" + hex.EncodeToString(b)
	}
	keyHash := auth.HashAPIKey(apiKey)

	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("SHA-256 Hash: %s\n", keyHash)
	fmt.Println("\nAdd this to your config.yaml:")
	fmt.Printf("server:\n")
	fmt.Printf("  api_keys:\n")
	fmt.Printf("    - name: %q\n", *name)
	fmt.Printf("      key_hash: \"%s\"\n", keyHash)
	fmt.Printf("      description: \"Generated key\"\n")
}
