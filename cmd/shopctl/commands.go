package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/judyrop/storefront/checkout"
	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/storefront"
)

func parseID(args []string, what string) (uuid.UUID, error) {
	if len(args) < 1 {
		return uuid.Nil, fmt.Errorf("%s id is required", what)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", what, args[0])
	}
	return id, nil
}

func (a *app) categories([]string) error {
	list, err := a.sess.Client().Categories(a.ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{c.Slug, c.Name, c.ID.String()})
	}
	return table(a.out, []string{"SLUG", "NAME", "ID"}, rows)
}

func (a *app) products([]string) error {
	list, err := a.sess.Client().Products(a.ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		category := "-"
		if p.Category != nil {
			category = p.Category.Name
		}
		rows = append(rows, []string{p.ID.String(), p.Name, formatPrice(p.PriceCents), category})
	}
	return table(a.out, []string{"ID", "NAME", "PRICE", "CATEGORY"}, rows)
}

func (a *app) product(args []string) error {
	id, err := parseID(args, "product")
	if err != nil {
		return err
	}
	p, err := a.sess.Client().Product(a.ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n", p.Name)
	fmt.Fprintf(a.out, "Price:    %s\n", formatPrice(p.PriceCents))
	if p.Category != nil {
		fmt.Fprintf(a.out, "Category: %s (%s)\n", p.Category.Name, p.Category.Slug)
	}
	if p.Description != nil {
		fmt.Fprintf(a.out, "\n%s\n", *p.Description)
	}
	return nil
}

func (a *app) cart(args []string) error {
	cart, err := storefront.LoadCart(a.local)
	if err != nil {
		return err
	}
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "show":
	case "add":
		id, err := parseID(args, "product")
		if err != nil {
			return err
		}
		qty := 1
		if len(args) > 1 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}
		p, err := a.sess.Client().Product(a.ctx, id)
		if err != nil {
			return err
		}
		if err := cart.Add(*p, qty); err != nil {
			return err
		}
	case "set":
		id, err := parseID(args, "product")
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return errors.New("quantity is required")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if err := cart.SetQuantity(id, qty); err != nil {
			return err
		}
	case "remove":
		id, err := parseID(args, "product")
		if err != nil {
			return err
		}
		if err := cart.Remove(id); err != nil {
			return err
		}
	case "clear":
		if err := cart.Clear(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown cart command: %s", sub)
	}
	return a.printCart(cart)
}

func (a *app) printCart(cart *storefront.Cart) error {
	if cart.IsEmpty() {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}
	items := cart.Items()
	rows := make([][]string, 0, len(items)+1)
	for _, it := range items {
		rows = append(rows, []string{it.ProductID.String(), it.Name, strconv.Itoa(it.Quantity), formatPrice(it.PriceCents), formatPrice(it.LineTotalCents())})
	}
	rows = append(rows, []string{"", "Total", strconv.Itoa(cart.Count()), "", formatPrice(cart.TotalCents())})
	return table(a.out, []string{"ID", "NAME", "QTY", "PRICE", "LINE"}, rows)
}

func (a *app) checkout(args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var form checkout.Form
	fs.StringVar(&form.Address.FullName, "name", "", "full name")
	fs.StringVar(&form.Address.Email, "email", "", "contact email")
	fs.StringVar(&form.Address.Line1, "line1", "", "address line")
	fs.StringVar(&form.Address.City, "city", "", "city")
	fs.StringVar(&form.Address.Country, "country", "Georgia", "country")
	fs.StringVar(&form.PaymentMethod, "method", models.PaymentCard, "payment method: Card or Cash")
	fs.StringVar(&form.Card.Name, "card-name", "", "name on card")
	fs.StringVar(&form.Card.Number, "card-number", "", "card number")
	fs.StringVar(&form.Card.Expiry, "card-expiry", "", "card expiry")
	fs.StringVar(&form.Card.CVC, "card-cvc", "", "card CVC")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cart, err := storefront.LoadCart(a.local)
	if err != nil {
		return err
	}
	total := cart.TotalCents()
	orderID, err := storefront.Checkout(a.ctx, a.sess, cart, form)
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, storefront.ErrEmptyCart):
		return err
	case err != nil:
		return errors.New(storefront.FriendlyError(err))
	}
	fmt.Fprintf(a.out, "Order placed: %s\nTotal: %s\n", orderID, formatPrice(total))
	return nil
}

func (a *app) printOrder(o *models.Order) {
	payment := o.PaymentMethod
	if o.CardBrand != nil && o.CardLast4 != nil {
		payment = fmt.Sprintf("%s %s ending %s", o.PaymentMethod, *o.CardBrand, *o.CardLast4)
	}
	fmt.Fprintf(a.out, "Order %s\n", o.ID)
	fmt.Fprintf(a.out, "Placed:  %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(a.out, "Payment: %s\n", payment)
	rows := make([][]string, 0, len(o.Items))
	for _, it := range o.Items {
		rows = append(rows, []string{it.ProductName, strconv.Itoa(it.Quantity), formatPrice(it.UnitPriceCents), formatPrice(it.LineTotalCents())})
	}
	_ = table(a.out, []string{"PRODUCT", "QTY", "PRICE", "LINE"}, rows)
	fmt.Fprintf(a.out, "Total:   %s\n", formatPrice(o.TotalCents))
}

func (a *app) orders([]string) error {
	list, err := a.sess.Client().Orders(a.ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No orders yet.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, o := range list {
		rows = append(rows, []string{o.ID.String(), o.CreatedAt.Format("2006-01-02 15:04"), o.PaymentMethod, formatPrice(o.TotalCents)})
	}
	return table(a.out, []string{"ID", "PLACED", "PAYMENT", "TOTAL"}, rows)
}

func (a *app) order(args []string) error {
	id, err := parseID(args, "order")
	if err != nil {
		return err
	}
	o, err := a.sess.Client().Order(a.ctx, id)
	if err != nil {
		return err
	}
	a.printOrder(o)
	return nil
}

func (a *app) lastOrder([]string) error {
	snap, err := storefront.LastOrder(a.local)
	if err != nil {
		return err
	}
	if snap == nil {
		fmt.Fprintln(a.out, "No order has been placed from this machine.")
		return nil
	}
	fmt.Fprintf(a.out, "Thank you, %s!\n", snap.Address.FullName)
	fmt.Fprintf(a.out, "Order %s placed %s, paid by %s.\n", snap.OrderID, snap.CreatedAt.Format("2006-01-02 15:04"), snap.PaymentMethod)
	rows := make([][]string, 0, len(snap.Items))
	for _, it := range snap.Items {
		rows = append(rows, []string{it.Name, strconv.Itoa(it.Quantity), formatPrice(it.LineTotalCents())})
	}
	_ = table(a.out, []string{"PRODUCT", "QTY", "LINE"}, rows)
	fmt.Fprintf(a.out, "Total: %s\nShipping to %s, %s, %s\n", formatPrice(snap.TotalCents), snap.Address.Line1, snap.Address.City, snap.Address.Country)
	return nil
}

func credentialFlags(name string, args []string, a *app) (email, password, idToken string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password")
	if name == "login" {
		fs.StringVar(&idToken, "id-token", "", "OpenID Connect ID token")
	}
	err = fs.Parse(args)
	return email, password, idToken, err
}

func (a *app) register(args []string) error {
	email, password, _, err := credentialFlags("register", args, a)
	if err != nil {
		return err
	}
	if err := a.sess.Register(a.ctx, email, password); err != nil {
		return err
	}
	return a.me(nil)
}

func (a *app) login(args []string) error {
	email, password, idToken, err := credentialFlags("login", args, a)
	if err != nil {
		return err
	}
	if idToken != "" {
		err = a.sess.LoginWithIDToken(a.ctx, idToken)
	} else {
		err = a.sess.Login(a.ctx, email, password)
	}
	if err != nil {
		return err
	}
	return a.me(nil)
}

func (a *app) logout([]string) error {
	if err := a.sess.Logout(a.ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *app) me([]string) error {
	if err := a.sess.Refresh(a.ctx); err != nil {
		return err
	}
	u := a.sess.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Email, u.Role)
	return nil
}

func (a *app) admin(args []string) error {
	if len(args) < 1 || args[0] != "create-product" {
		return errors.New("usage: shopctl admin create-product [flags]")
	}
	fs := flag.NewFlagSet("create-product", flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "product name")
	description := fs.String("description", "", "product description")
	price := fs.Int64("price-cents", -1, "price in cents")
	imageURL := fs.String("image-url", "", "image URL")
	category := fs.String("category", "", "category slug")
	active := fs.Bool("active", true, "list the product for sale")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *price < 0 {
		return errors.New("-price-cents is required")
	}

	p := storefront.NewProduct{
		Name:         *name,
		PriceCents:   *price,
		CategorySlug: strings.TrimSpace(*category),
		IsActive:     *active,
	}
	if *description != "" {
		p.Description = description
	}
	if *imageURL != "" {
		p.ImageURL = imageURL
	}
	id, err := a.sess.Client().AdminCreateProduct(a.ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created: %s\n", id)
	return nil
}
