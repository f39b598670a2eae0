// Command passkeyhash prints a bcrypt hash for the admin passkey, suitable
// for the PASSKEY_HASH variable or the auth.passkey_hash setting.
//
// Usage:
//
//	passkeyhash <passkey>
//	echo -n <passkey> | passkeyhash
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/vadimbarashkov/shortlink/internal/auth"
)

func main() {
	passkey, err := readPasskey()
	if err != nil {
		log.Fatalf("failed to read passkey: %v", err)
	}
	if passkey == "" {
		log.Fatal("passkey must not be empty")
	}

	hash, err := auth.HashPasskey(passkey)
	if err != nil {
		log.Fatalf("failed to hash passkey: %v", err)
	}

	fmt.Println(hash)
}

func readPasskey() (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}
