package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-session-gateway/credentials"
	"github.com/jrsteele09/go-session-gateway/internal/utils"
	"github.com/jrsteele09/go-session-gateway/services"
	"github.com/jrsteele09/go-session-gateway/session"
	"github.com/jrsteele09/go-session-gateway/token"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/pkg/errors"
)

var errUnknownCommand = errors.New("unknown command")

type app struct {
	out   io.Writer
	creds credentials.Store
	svc   *services.Services
	store *session.Store
}

type command struct {
	name    string
	summary string
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = []command{
	{name: "signup", summary: "create an account", run: (*app).signUp},
	{name: "signin", summary: "sign in and store the session", run: (*app).signIn},
	{name: "logout", summary: "forget the stored session", run: (*app).logout},
	{name: "status", summary: "show the stored session", run: (*app).status},
	{name: "profile", summary: "fetch the profile", run: (*app).profile},
	{name: "profile-update", summary: "update name, company or GST number", run: (*app).profileUpdate},
	{name: "addresses", summary: "list addresses", run: (*app).addresses},
	{name: "address-add", summary: "add an address", run: (*app).addressAdd},
	{name: "address-update", summary: "change an address", run: (*app).addressUpdate},
	{name: "products", summary: "list products", run: (*app).products},
	{name: "orders", summary: "list orders", run: (*app).orders},
	{name: "order-place", summary: "place an order", run: (*app).orderPlace},
	{name: "dashboard", summary: "show order statistics", run: (*app).dashboard},
}

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(a, ctx, args)
		}
	}
	return errors.Wrap(errUnknownCommand, name)
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func (a *app) signUp(ctx context.Context, args []string) error {
	fs := newFlags("signup")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	company := fs.String("company", "", "company")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.store.SignUp(ctx, users.SignUpRequest{
		Email:    *email,
		FullName: *name,
		Company:  *company,
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func (a *app) signIn(ctx context.Context, args []string) error {
	fs := newFlags("signin")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.store.SignIn(ctx, users.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", resp.User.DisplayName())
	return nil
}

func (a *app) logout(_ context.Context, _ []string) error {
	if err := a.store.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) status(_ context.Context, _ []string) error {
	v := a.store.Snapshot()
	fmt.Fprintf(a.out, "State: %s\n", v.Phase())
	if v.User == nil {
		return nil
	}
	printProfile(a.out, v.User)

	access, ok, err := a.creds.Get(credentials.KeyAccessToken)
	if err != nil || !ok {
		return err
	}
	claims, err := token.Inspect(access)
	if err != nil {
		// Opaque tokens carry no readable expiry
		return nil
	}
	switch {
	case claims.ExpiresAt == nil:
	case claims.Expired():
		fmt.Fprintf(a.out, "Token:    expired at %s\n", claims.ExpiresAt.Local().Format(time.DateTime))
	default:
		fmt.Fprintf(a.out, "Token:    expires in %s\n", claims.ExpiresIn().Round(time.Second))
	}
	return nil
}

func (a *app) profile(ctx context.Context, _ []string) error {
	p, err := a.store.LoadProfile(ctx)
	if err != nil {
		return err
	}
	printProfile(a.out, p)
	return nil
}

func (a *app) profileUpdate(ctx context.Context, args []string) error {
	current := a.store.Snapshot().User
	if current == nil {
		return session.ErrNotAuthenticated
	}
	fs := newFlags("profile-update")
	name := fs.String("name", current.FullName, "full name")
	company := fs.String("company", current.Company, "company")
	gst := fs.String("gst", current.GST(), "GST number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	update := users.ProfileUpdate{FullName: *name, Company: *company}
	if *gst != "" {
		update.GSTNumber = gst
	}
	p, err := a.store.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	printProfile(a.out, p)
	return nil
}

func printProfile(w io.Writer, p *users.Profile) {
	fmt.Fprintf(w, "User:     %s (%s)\n", p.DisplayName(), p.UserID)
	fmt.Fprintf(w, "Email:    %s\n", p.Email)
	if p.Company != "" {
		fmt.Fprintf(w, "Company:  %s\n", p.Company)
	}
	if gst := p.GST(); gst != "" {
		fmt.Fprintf(w, "GST:      %s\n", gst)
	}
	fmt.Fprintf(w, "Verified: %t\n", p.IsVerified)
}

func (a *app) addresses(ctx context.Context, _ []string) error {
	list, err := a.svc.Addresses.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tADDRESS")
	for _, addr := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", addr.ID, addr.AddressCode, addr.Address)
	}
	return tw.Flush()
}

func (a *app) addressAdd(ctx context.Context, args []string) error {
	fs := newFlags("address-add")
	text := fs.String("address", "", "address text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *text == "" {
		*text = strings.Join(fs.Args(), " ")
	}

	created, err := a.svc.Addresses.Create(ctx, *text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (id %d)\n", created.AddressCode, created.ID)
	return nil
}

func (a *app) addressUpdate(ctx context.Context, args []string) error {
	fs := newFlags("address-update")
	id := fs.Int64("id", 0, "address id")
	text := fs.String("address", "", "new address text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id is required")
	}

	updated, err := a.svc.Addresses.Update(ctx, *id, *text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s: %s\n", updated.AddressCode, updated.Address)
	return nil
}

func (a *app) products(ctx context.Context, _ []string) error {
	list, err := a.svc.Products.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Price)
	}
	return tw.Flush()
}

func (a *app) orders(ctx context.Context, _ []string) error {
	list, err := a.svc.Orders.List(ctx)
	if err != nil {
		return err
	}
	printOrders(a.out, list)
	return nil
}

func printOrders(w io.Writer, list []services.Order) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tITEMS\tNET\tCREATED")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.OrderID, o.Status, len(o.Items), o.NetAmount, o.CreatedAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

// itemList collects repeated -item product_id:quantity flags.
type itemList []services.OrderItemInput

func (l *itemList) String() string {
	parts := make([]string, 0, len(*l))
	for _, item := range *l {
		parts = append(parts, fmt.Sprintf("%d:%d", item.ProductID, item.Quantity))
	}
	return strings.Join(parts, ",")
}

func (l *itemList) Set(value string) error {
	id, qty, found := strings.Cut(value, ":")
	if !found {
		qty = "1"
	}
	productID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid product id %q", id)
	}
	quantity, err := strconv.Atoi(qty)
	if err != nil {
		return errors.Wrapf(err, "invalid quantity %q", qty)
	}
	*l = append(*l, services.OrderItemInput{ProductID: productID, Quantity: quantity})
	return nil
}

func (a *app) orderPlace(ctx context.Context, args []string) error {
	fs := newFlags("order-place")
	var items itemList
	fs.Var(&items, "item", "product_id[:quantity], repeatable")
	addressID := fs.Int64("address", 0, "delivery address id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var address *int64
	if *addressID > 0 {
		address = utils.Ptr(*addressID)
	}
	placed, err := a.svc.Orders.Place(ctx, items, address)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Placed %s: net %s (GST %s)\n", placed.OrderID, placed.NetAmount, placed.GST)
	return nil
}

func (a *app) dashboard(ctx context.Context, _ []string) error {
	stats, err := a.svc.Dashboard.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Orders:    %d (%d active, %d completed, %d cancelled)\n",
		stats.TotalOrders, stats.ActiveOrders, stats.CompletedOrders, stats.CancelledOrders)
	fmt.Fprintf(a.out, "Total:     %s\n", stats.TotalAmount)
	if len(stats.RecentOrders) > 0 {
		fmt.Fprintln(a.out)
		printOrders(a.out, stats.RecentOrders)
	}
	return nil
}
