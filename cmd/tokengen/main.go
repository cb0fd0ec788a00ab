// Command tokengen mints a bearer token for a user id, signed with the
// server's secret key. It reads the same configuration as the server.
//
//	tokengen -s secret -r 120 alice
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	userID := lastArg(os.Args[1:])
	if userID == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen [-s secret] [-r minutes] <user-id>")
		os.Exit(2)
	}
	if cfg.SecretKey == "" {
		fmt.Fprintln(os.Stderr, "secret key is not configured (-s or AUTH_SECRET_KEY)")
		os.Exit(2)
	}

	token, err := auth.GenerateToken(userID, []byte(cfg.SecretKey), cfg.TokenValidity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}

// lastArg returns the final positional argument, skipping flag values.
func lastArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	last := args[len(args)-1]
	if strings.HasPrefix(last, "-") {
		return ""
	}
	if len(args) >= 2 {
		prev := args[len(args)-2]
		if strings.HasPrefix(prev, "-") && !strings.Contains(prev, "=") {
			return ""
		}
	}
	return last
}
