// Command createuser provisions a doctor or assistant account in the
// configured database and prints the temporary credentials to hand over.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"clinic-api/internal/account"
	"clinic-api/internal/config"
	"clinic-api/internal/model"
	"clinic-api/internal/store"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

type options struct {
	email     string
	name      string
	role      string
	specialty string
	phone     string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.StringVar(&o.email, "email", "", "login email")
	fs.StringVar(&o.name, "name", "", "display name")
	fs.StringVar(&o.role, "role", string(model.RoleAssistant), "doctor or assistant")
	fs.StringVar(&o.specialty, "specialty", "", "doctor specialty")
	fs.StringVar(&o.phone, "phone", "", "contact phone")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.email == "" || o.name == "" {
		return o, errors.New("-email and -name are required")
	}
	return o, nil
}

// promptPassword reads without echo from a terminal, or a plain line when
// stdin is piped.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "Temporary password: ")
	if term.IsTerminal(int(in.Fd())) {
		pw, err := readPassword(int(in.Fd()))
		fmt.Fprintln(out)
		return string(pw), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	fmt.Fprintln(out)
	return strings.TrimRight(line, "\r\n"), nil
}

func run(ctx context.Context, st account.Store, o options, password string, out io.Writer) error {
	u, err := account.Create(ctx, st, account.NewIdentity{
		Email:     o.email,
		Password:  password,
		Name:      o.name,
		Role:      model.Role(o.role),
		Specialty: o.specialty,
		Phone:     o.phone,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s %s <%s> id=%s\n", u.Role, u.Name, u.Email, u.ID)
	fmt.Fprintln(out, "ask the user to change the password after the first login")
	return nil
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute returns the process exit code so deferred cleanup runs before exit.
func execute(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	o, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	config.LoadDotEnv(".env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(stderr, "DATABASE_URL is required")
		return 1
	}

	ctx := context.Background()
	st, err := store.Open(ctx, dsn)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer st.Close()

	pw, err := promptPassword(stdin, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := run(ctx, st, o, pw, stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
