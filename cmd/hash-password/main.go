// Command hash-password prints an argon2id hash for STOREFRONT_ADMIN_PASSWORD_HASH.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/grameenmart/storefront/pkg/config"
	"github.com/grameenmart/storefront/pkg/logger"
	"github.com/grameenmart/storefront/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "hash-password"})
	ctx := context.Background()

	_ = godotenv.Load()

	password := flag.String("password", "", "password to hash; a random one is generated when empty")
	length := flag.Int("length", 16, "length of the generated password")
	flag.Parse()

	// Only the argon2 section is needed, so the rest of the config is not validated.
	var cfg config.PasswordConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		logg.Error(ctx, "failed to load password config", err)
		os.Exit(1)
	}

	plain := *password
	if plain == "" {
		generated, err := security.GeneratePassword(*length)
		if err != nil {
			logg.Error(ctx, "failed to generate password", err)
			os.Exit(1)
		}
		plain = generated
		fmt.Println("password:", plain)
	}

	hash, err := security.HashPassword(plain, cfg)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}
	fmt.Println("hash:", hash)
}
