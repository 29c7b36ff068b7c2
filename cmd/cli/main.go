// Command cli is a terminal client for the contacts API. It drives the same
// auth state machine the web frontend uses, with the token persisted in a
// file under the user's home directory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"contact-keeper/internal/client"
	"contact-keeper/internal/client/session"
	"contact-keeper/internal/client/state"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "contacts server base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fatalf("resolve home dir: %v", err)
	}
	tokens := session.NewFileTokenStore(filepath.Join(home, ".contact-keeper", "token"))

	sess := session.New(tokens)
	sess.Subscribe(func(s state.State) {
		if s.Alert != "" {
			fmt.Fprintf(os.Stderr, "alert: %s\n", s.Alert)
		}
	})
	if err := sess.Hydrate(); err != nil {
		fatalf("load stored token: %v", err)
	}

	api := client.New(*serverURL, sess)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "register":
		runRegister(ctx, api)
	case "login":
		runLogin(ctx, api)
	case "logout":
		if err := api.Logout(); err != nil {
			fatalf("logout: %v", err)
		}
		fmt.Println("logged out")
	case "whoami":
		runWhoami(ctx, api)
	case "list":
		runList(ctx, api)
	case "add":
		runAdd(ctx, api, args)
	case "edit":
		runEdit(ctx, api, args)
	case "rm":
		runRemove(ctx, api, args)
	case "export":
		runExport(ctx, api)
	case "exports":
		runListExports(ctx, api)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cli [-server URL] <command>

commands:
  register            create an account and log in
  login               log in with email and password
  logout              discard the stored token
  whoami              show the logged-in user
  list                list contacts, newest first
  add                 add a contact (-name, -email, -phone, -type)
  edit <id>           update contact fields (-name, -email, -phone, -type)
  rm <id>             delete a contact
  export              snapshot contacts to server-side storage
  exports             list past snapshots`)
}

func runRegister(ctx context.Context, api *client.Client) {
	name := prompt("name: ")
	email := prompt("email: ")
	password := promptPassword("password: ")
	confirm := promptPassword("confirm password: ")

	if err := api.Register(ctx, name, email, password, confirm); err != nil {
		os.Exit(1)
	}
	printProfile(api)
}

func runLogin(ctx context.Context, api *client.Client) {
	email := prompt("email: ")
	password := promptPassword("password: ")

	if err := api.Login(ctx, email, password); err != nil {
		os.Exit(1)
	}
	printProfile(api)
}

func runWhoami(ctx context.Context, api *client.Client) {
	if err := api.LoadUser(ctx); err != nil {
		os.Exit(1)
	}
	printProfile(api)
}

func runList(ctx context.Context, api *client.Client) {
	contacts, err := api.Contacts(ctx)
	if err != nil {
		fatalf("list contacts: %v", err)
	}
	if len(contacts) == 0 {
		fmt.Println("no contacts")
		return
	}
	for _, c := range contacts {
		fmt.Printf("%s  %-20s %-25s %-15s %s\n", c.ID, c.Name, c.Email, c.Phone, c.Type)
	}
}

func runAdd(ctx context.Context, api *client.Client, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "contact name (required)")
	email := fs.String("email", "", "contact email")
	phone := fs.String("phone", "", "contact phone")
	ctype := fs.String("type", "", "personal or professional")
	_ = fs.Parse(args)

	contact, err := api.CreateContact(ctx, *name, *email, *phone, *ctype)
	if err != nil {
		fatalf("add contact: %v", err)
	}
	fmt.Printf("created %s (%s)\n", contact.Name, contact.ID)
}

func runEdit(ctx context.Context, api *client.Client, args []string) {
	if len(args) < 1 {
		fatalf("edit: contact id is required")
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	name := fs.String("name", "", "contact name")
	email := fs.String("email", "", "contact email")
	phone := fs.String("phone", "", "contact phone")
	ctype := fs.String("type", "", "personal or professional")
	_ = fs.Parse(args[1:])

	// Only flags the user actually passed become part of the patch, so
	// `-email ""` clears the field while omitting -email leaves it alone.
	var patch client.ContactPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "email":
			patch.Email = email
		case "phone":
			patch.Phone = phone
		case "type":
			patch.Type = ctype
		}
	})

	contact, err := api.UpdateContact(ctx, id, patch)
	if err != nil {
		fatalf("edit contact: %v", err)
	}
	fmt.Printf("updated %s (%s)\n", contact.Name, contact.ID)
}

func runRemove(ctx context.Context, api *client.Client, args []string) {
	if len(args) < 1 {
		fatalf("rm: contact id is required")
	}
	msg, err := api.DeleteContact(ctx, args[0])
	if err != nil {
		fatalf("delete contact: %v", err)
	}
	fmt.Println(msg)
}

func runExport(ctx context.Context, api *client.Client) {
	location, err := api.ExportContacts(ctx)
	if err != nil {
		fatalf("export contacts: %v", err)
	}
	fmt.Printf("exported to %s\n", location)
}

func runListExports(ctx context.Context, api *client.Client) {
	exports, err := api.ListExports(ctx)
	if err != nil {
		fatalf("list exports: %v", err)
	}
	if len(exports) == 0 {
		fmt.Println("no exports")
		return
	}
	for _, e := range exports {
		fmt.Printf("%-60s %10d  %s\n", e.Key, e.Size, e.LastModified)
	}
}

func printProfile(api *client.Client) {
	s := api.Session().State()
	if s.User != nil {
		fmt.Printf("logged in as %s <%s>\n", s.User.Name, s.User.Email)
	}
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) string {
	fmt.Print(label)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fatalf("read password: %v", err)
	}
	return string(password)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
