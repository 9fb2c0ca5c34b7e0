// Command gatepass prints the bcrypt hash to put in gate.password_hash.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Dahbi-Dev/Excel-easy/pkg/security"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	password := strings.Join(flag.Args(), " ")
	if password == "" {
		fmt.Fprint(os.Stderr, "password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal().Err(err).Msg("failed to read password")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := security.NewBcryptHasher(*cost).Hash(password)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}
	fmt.Println(hash)
}
