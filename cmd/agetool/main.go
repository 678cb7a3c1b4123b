// Package main provides a CLI for working with the agegate protocol locally:
// generating commitment salts and digests, minting dev bearer tokens, and
// producing admin key hashes for configuration.
//
// Tokens minted here use the dev signing key and will NOT work against a
// production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"agegate/internal/token"
	"agegate/pkg/commitment"
	id "agegate/pkg/domain"
	"agegate/pkg/secrets"
)

const (
	// Dev signing key - matches config.go when AGEGATE_JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "agegate"
	defaultAudience = "agegate-client"
	defaultTokenTTL = 15 * time.Minute
)

func main() {
	saltCmd := flag.NewFlagSet("salt", flag.ExitOnError)
	saltJSON := saltCmd.Bool("json", false, "Output as JSON")

	digestCmd := flag.NewFlagSet("digest", flag.ExitOnError)
	digestAge := digestCmd.Uint64("age", 0, "Claimed age in years")
	digestThreshold := digestCmd.Uint64("threshold", 18, "Age threshold the commitment binds to")
	digestSalt := digestCmd.String("salt", "", "Hex-encoded 32-byte salt. Generated if empty.")
	digestJSON := digestCmd.Bool("json", false, "Output as JSON")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenPrincipal := tokenCmd.String("principal", "", "Caller principal the token is issued to")
	tokenTTL := tokenCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	tokenKey := tokenCmd.String("signing-key", devSigningKey, "HMAC signing key")
	tokenJSON := tokenCmd.Bool("json", false, "Output as JSON")

	adminkeyCmd := flag.NewFlagSet("adminkey", flag.ExitOnError)
	adminkeyJSON := adminkeyCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "salt":
		saltCmd.Parse(os.Args[2:])
		generateSalt(*saltJSON)
	case "digest":
		digestCmd.Parse(os.Args[2:])
		computeDigest(*digestAge, *digestThreshold, *digestSalt, *digestJSON)
	case "token":
		tokenCmd.Parse(os.Args[2:])
		mintToken(*tokenPrincipal, *tokenKey, *tokenTTL, *tokenJSON)
	case "adminkey":
		adminkeyCmd.Parse(os.Args[2:])
		generateAdminKey(*adminkeyJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`agetool - Local tooling for the agegate protocol

WARNING: Tokens use the dev signing key and will NOT work in production.
         Only use for local development and testing.

Usage:
  agetool <command> [flags]

Commands:
  salt      Generate a commitment salt
  digest    Compute a commitment digest from age, threshold, and salt
  token     Mint a dev bearer token for a principal
  adminkey  Generate an admin key and its bcrypt hash for configuration

Examples:
  # Generate a salt, then commit to being over 18 at age 21
  agetool salt
  agetool digest -age 21 -threshold 18 -salt <hex>

  # One step: generate the salt and digest together
  agetool digest -age 21 -threshold 18

  # Mint a token for alice and call the API
  agetool token -principal alice

  # Produce AGEGATE_ADMIN_KEY_HASH for the server environment
  agetool adminkey

Use "agetool <command> -h" for more information about a command.`)
}

func generateSalt(jsonOutput bool) {
	salt, err := commitment.GenerateSalt()
	if err != nil {
		fatal("generating salt", err)
	}

	if jsonOutput {
		printJSON(map[string]string{"salt": commitment.EncodeSalt(salt)})
		return
	}
	fmt.Println("Commitment Salt")
	fmt.Println("===============")
	fmt.Println(commitment.EncodeSalt(salt))
	fmt.Println()
	fmt.Println("Keep the salt until the reveal: the engine needs the exact bytes.")
}

func computeDigest(age, threshold uint64, saltHex string, jsonOutput bool) {
	if age == 0 {
		fmt.Fprintln(os.Stderr, "digest: -age is required")
		os.Exit(1)
	}
	if threshold == 0 {
		fmt.Fprintln(os.Stderr, "digest: -threshold must be positive")
		os.Exit(1)
	}

	var salt []byte
	var err error
	if saltHex == "" {
		salt, err = commitment.GenerateSalt()
		if err != nil {
			fatal("generating salt", err)
		}
	} else {
		salt, err = commitment.DecodeSalt(saltHex)
		if err != nil {
			fatal("parsing salt", err)
		}
	}

	digest := commitment.Digest(age, threshold, salt)

	if jsonOutput {
		printJSON(map[string]any{
			"age_threshold": threshold,
			"digest":        commitment.EncodeDigest(digest[:]),
			"salt":          commitment.EncodeSalt(salt),
		})
		return
	}
	fmt.Println("Commitment Digest")
	fmt.Println("=================")
	fmt.Printf("Age:       %d (never send this before the reveal)\n", age)
	fmt.Printf("Threshold: %d\n", threshold)
	fmt.Printf("Salt:      %s\n", commitment.EncodeSalt(salt))
	fmt.Printf("Digest:    %s\n", commitment.EncodeDigest(digest[:]))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println(`  POST /verification/commit {"age_threshold": ..., "digest": "...", "salt": "..."}`)
	fmt.Println(`  POST /verification/reveal {"verification_id": ..., "claimed_age": ..., "salt": "..."}`)
}

func mintToken(principal, signingKey string, ttl time.Duration, jsonOutput bool) {
	p, err := id.ParsePrincipal(principal)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token: -principal is required and must be a valid principal")
		os.Exit(1)
	}

	svc := token.NewService(signingKey, defaultIssuer, defaultAudience, ttl)
	bearer, err := svc.GenerateToken(p)
	if err != nil {
		fatal("generating token", err)
	}

	if jsonOutput {
		printJSON(map[string]any{
			"token":      bearer,
			"principal":  p.String(),
			"expires_in": ttl.String(),
			"usage":      "Authorization: Bearer <token>",
		})
		return
	}
	fmt.Println("Bearer Token")
	fmt.Println("============")
	fmt.Printf("Principal:  %s\n", p)
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(bearer)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/...")
}

func generateAdminKey(jsonOutput bool) {
	key, err := secrets.Generate()
	if err != nil {
		fatal("generating admin key", err)
	}
	hash, err := secrets.Hash(key)
	if err != nil {
		fatal("hashing admin key", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"key":  key,
			"hash": hash,
		})
		return
	}
	fmt.Println("Admin Key")
	fmt.Println("=========")
	fmt.Printf("Key:  %s\n", key)
	fmt.Printf("Hash: %s\n", hash)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  Server:  AGEGATE_ADMIN_KEY_HASH='<hash>'")
	fmt.Println("  Client:  X-Admin-Key: <key>")
	fmt.Println()
	fmt.Println("Store the key; only the hash goes in the server environment.")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encoding output", err)
	}
}

func fatal(action string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", action, err)
	os.Exit(1)
}
