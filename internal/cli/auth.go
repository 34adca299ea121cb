package cli

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/idilsaglam/hotelres/internal/auth"
	"github.com/idilsaglam/hotelres/internal/ui"
)

// Stdin feeds `auth login` when no token argument is given.
var Stdin io.Reader = os.Stdin

func runAuth(a *app, args []string) int {
	switch args[0] {
	case "login":
		token := ""
		if len(args) > 1 {
			token = args[1]
		}
		return doAuthLogin(a.creds, token)
	case "logout":
		return doAuthLogout(a.creds)
	case "status":
		return doAuthStatus(a.creds)
	case "whoami":
		return doAuthWhoAmI(a.creds)
	}
	ui.Fail("usage: hotelres auth <login|logout|status|whoami>")
	return 2
}

func doAuthLogin(creds *auth.Credentials, token string) int {
	if token == "" {
		fmt.Fprint(ui.Out, "Paste your token: ")
		line, err := bufio.NewReader(Stdin).ReadString('\n')
		if err != nil && line == "" {
			ui.Fail("read token: " + err.Error())
			return 1
		}
		token = strings.TrimSpace(line)
	}
	if err := creds.SetToken(token, jwtExpiry(token)); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout(creds *auth.Credentials) int {
	ti, _ := creds.GetToken()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.TokenEnv + " env var (nothing to delete)")
		return 0
	}
	if err := creds.DeleteToken(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus(creds *auth.Credentials) int {
	ti, err := creds.GetToken()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if ti == nil {
		fmt.Fprintln(ui.Out, ui.Current().Muted.Render("not logged in"))
		fmt.Fprintln(ui.Out, "Run: hotelres auth login")
		return 0
	}
	fmt.Fprintf(ui.Out, "source: %s\n", ti.Source)
	switch {
	case ti.ExpiresAt == nil:
		fmt.Fprintln(ui.Out, "expires: (unknown)")
	case ti.Expired(time.Now()):
		fmt.Fprintf(ui.Out, "expires: %s (expired)\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	default:
		fmt.Fprintf(ui.Out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(ui.Out, "env override: "+auth.TokenEnv)
	return 0
}

// whoami decodes a JWT payload locally (unsigned); opaque tokens print basic info.
func doAuthWhoAmI(creds *auth.Credentials) int {
	ti, _ := creds.GetToken()
	if ti == nil {
		ui.Fail("not logged in. Run: hotelres auth login")
		return 2
	}
	if p, ok := jwtPayload(ti.Token); ok {
		fmt.Fprintln(ui.Out, "JWT payload:")
		fmt.Fprintln(ui.Out, p)
		return 0
	}
	fmt.Fprintln(ui.Out, "Opaque token (cannot introspect locally).")
	fmt.Fprintln(ui.Out, "source:", ti.Source)
	return 0
}

func jwtPayload(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	p, err := decodeB64URL(parts[1])
	if err != nil {
		return "", false
	}
	return p, true
}

// jwtExpiry reads the exp claim so status can report it. Opaque tokens
// have no known expiry.
func jwtExpiry(token string) *time.Time {
	p, ok := jwtPayload(token)
	if !ok {
		return nil
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal([]byte(p), &claims); err != nil || claims.Exp == 0 {
		return nil
	}
	t := time.Unix(claims.Exp, 0).UTC()
	return &t
}

func decodeB64URL(s string) (string, error) {
	dec, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}
