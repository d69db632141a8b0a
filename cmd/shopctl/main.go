// Command shopctl browses the storefront, manages a local cart and places
// orders against the storefront API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/storefront"
)

const defaultAPI = "http://localhost:8080"

type app struct {
	ctx   context.Context
	out   io.Writer
	local *storefront.LocalStore
	sess  *storefront.Session
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	global.SetOutput(out)
	apiURL := global.String("api", envOr("SHOPCTL_API", defaultAPI), "storefront API base URL")
	statePath := global.String("state", envOr("SHOPCTL_STATE", storefront.DefaultStatePath()), "local state file")
	if err := global.Parse(args); err != nil {
		return err
	}

	local := storefront.NewLocalStore(*statePath)
	a := &app{
		ctx:   ctx,
		out:   out,
		local: local,
		sess:  storefront.NewSession(local, *apiURL),
	}

	registry := NewCommandRegistry(out)
	a.registerCommands(registry)
	return registry.Execute(global.Args())
}

// hideAdmin asks the API for the role without touching the stored session,
// so printing help never logs anyone out.
func (a *app) hideAdmin() bool {
	if a.sess.CanSeeAdmin() {
		return false
	}
	if a.sess.Token() == "" {
		return true
	}
	me, err := a.sess.Client().Me(a.ctx)
	return err != nil || me.Role != models.RoleAdmin
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (a *app) registerCommands(r *CommandRegistry) {
	r.Register(&Command{
		Name:        "categories",
		Description: "List product categories",
		Usage:       "shopctl categories",
		Run:         a.categories,
	})
	r.Register(&Command{
		Name:        "products",
		Description: "List products for sale",
		Usage:       "shopctl products",
		Run:         a.products,
	})
	r.Register(&Command{
		Name:        "product",
		Description: "Show one product",
		Usage:       "shopctl product <id>",
		Run:         a.product,
	})
	r.Register(&Command{
		Name:        "cart",
		Description: "Show or change the local cart",
		Usage:       "shopctl cart show | add <id> [qty] | set <id> <qty> | remove <id> | clear",
		Examples: []string{
			"shopctl cart add 3f0c9a8e-0000-4000-8000-000000000000 2",
			"shopctl cart set 3f0c9a8e-0000-4000-8000-000000000000 0",
		},
		Run: a.cart,
	})
	r.Register(&Command{
		Name:        "checkout",
		Description: "Place an order for the cart",
		Usage:       "shopctl checkout -name NAME -email EMAIL -line1 ADDR -city CITY [-country C] [-method Card|Cash] [card flags]",
		Examples: []string{
			"shopctl checkout -name 'Ada L' -email ada@example.com -line1 '1 Main St' -city Tbilisi -method Cash",
			"shopctl checkout -name 'Ada L' -email ada@example.com -line1 '1 Main St' -city Tbilisi -card-number 4111111111111111 -card-expiry 12/30 -card-cvc 123 -card-name 'Ada L'",
		},
		Run: a.checkout,
	})
	r.Register(&Command{
		Name:        "orders",
		Description: "List your orders",
		Usage:       "shopctl orders",
		Run:         a.orders,
	})
	r.Register(&Command{
		Name:        "order",
		Description: "Show one of your orders",
		Usage:       "shopctl order <id>",
		Run:         a.order,
	})
	r.Register(&Command{
		Name:        "last-order",
		Description: "Show the confirmation of the last order placed here",
		Usage:       "shopctl last-order",
		Run:         a.lastOrder,
	})
	r.Register(&Command{
		Name:        "register",
		Description: "Create an account and log in",
		Usage:       "shopctl register -email EMAIL -password PASSWORD",
		Run:         a.register,
	})
	r.Register(&Command{
		Name:        "login",
		Description: "Log in",
		Usage:       "shopctl login -email EMAIL -password PASSWORD | -id-token TOKEN",
		Run:         a.login,
	})
	r.Register(&Command{
		Name:        "logout",
		Description: "Forget the stored session",
		Usage:       "shopctl logout",
		Run:         a.logout,
	})
	r.Register(&Command{
		Name:        "me",
		Description: "Show the logged in account",
		Usage:       "shopctl me",
		Run:         a.me,
	})
	r.Register(&Command{
		Name:        "admin",
		Description: "Catalog administration",
		Usage:       "shopctl admin create-product -name NAME -price-cents N -category SLUG [-description D] [-image-url U] [-active=false]",
		Hidden:      a.hideAdmin,
		Run:         a.admin,
	})
}
