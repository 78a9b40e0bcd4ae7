package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// shop is one interactive storefront session: a menu loop over the catalog
// with at most one group expanded at a time.
type shop struct {
	session  *Session
	opts     ReceiptOptions
	p        *prompter
	expanded string
}

func newShop(s *Session, opts ReceiptOptions, p *prompter) *shop {
	return &shop{session: s, opts: opts, p: p}
}

func (sh *shop) run() error {
	for {
		fmt.Fprintf(sh.p.out, "\nTotal Amount: %s\n", sh.session.Total().Format(sh.opts.Currency))
		fmt.Fprintln(sh.p.out, "1: List Groups")
		fmt.Fprintln(sh.p.out, "2: Open/Close Group")
		fmt.Fprintln(sh.p.out, "3: Set Quantity")
		fmt.Fprintln(sh.p.out, "4: Checkout & Review")
		fmt.Fprintln(sh.p.out, "X: Exit")

		choice, ok := sh.p.readLine("Enter choice: ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			sh.listGroups()
		case "2":
			sh.toggleGroup()
		case "3":
			sh.setQuantity()
		case "4":
			if err := sh.checkout(); err != nil {
				return err
			}
		case "X", "x":
			fmt.Fprintln(sh.p.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(sh.p.out, "Invalid choice. Please enter a valid option.")
		}
	}
}

func (sh *shop) listGroups() {
	for i, g := range sh.session.Catalog().Groups {
		marker := "+"
		if g.Name == sh.expanded {
			marker = "-"
		}
		fmt.Fprintf(sh.p.out, "%d: %s (%d items) %s\n", i+1, g.Name, len(g.Products), marker)
	}
}

func (sh *shop) toggleGroup() {
	groups := sh.session.Catalog().Groups
	n := sh.p.readInt("Enter group number: ")
	if n < 1 || n > len(groups) {
		fmt.Fprintln(sh.p.out, "No such group.")
		return
	}

	name := groups[n-1].Name
	if sh.expanded == name {
		sh.expanded = ""
		return
	}
	sh.expanded = name
	sh.showGroup(&groups[n-1])
}

func (sh *shop) showGroup(g *Group) {
	fmt.Fprintf(sh.p.out, "\n%s\n", g.Name)
	for i, p := range g.Products {
		qty := sh.session.Quantity(ItemKey{Group: g.Name, Index: i})
		fmt.Fprintf(sh.p.out, "%d: [%s] %s  %s -> %s  qty %d\n",
			i+1, p.Code, p.Name,
			p.ListRate.Format(sh.opts.Currency), p.FinalRate.Format(sh.opts.Currency), qty)
		if p.Image != "" {
			fmt.Fprintf(sh.p.out, "   image: %s\n", p.Image)
		}
	}
}

func (sh *shop) setQuantity() {
	g, ok := sh.session.Catalog().Group(sh.expanded)
	if !ok {
		fmt.Fprintln(sh.p.out, "Open a group first.")
		return
	}

	n := sh.p.readInt("Enter item number: ")
	if n < 1 || n > len(g.Products) {
		fmt.Fprintln(sh.p.out, "No such item.")
		return
	}
	input, _ := sh.p.readLine("Enter quantity: ")

	key := ItemKey{Group: g.Name, Index: n - 1}
	if err := sh.session.SetInput(key, input); err != nil {
		fmt.Fprintf(sh.p.out, "Error setting quantity: %v\n", err)
		return
	}
	fmt.Fprintf(sh.p.out, "%s: qty %d\n", g.Products[n-1].Name, sh.session.Quantity(key))
}

func (sh *shop) checkout() error {
	order, err := Aggregate(sh.session)
	if errors.Is(err, ErrEmptySelection) {
		fmt.Fprintln(sh.p.out, "Please select at least one product!")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(sh.p.out, "\nConfirm Your Selection")
	for _, item := range order.Items {
		fmt.Fprintf(sh.p.out, "%s  Qty: %d  %s\n",
			item.Product.Name, item.Quantity, item.LineTotal().Format(sh.opts.Currency))
	}
	fmt.Fprintf(sh.p.out, "Total: %s\n", order.Total.Format(sh.opts.Currency))

	if !sh.p.readBool("Confirm & Save PDF? (y/n): ") {
		return nil
	}

	title, ok := sh.p.readLine(fmt.Sprintf("Enter file name for your PDF [%s]: ", sh.opts.DefaultName))
	if !ok {
		title = ""
	} else if title == "" {
		title = sh.opts.DefaultName
	}

	res, err := ExportReceipt(order, title, sh.opts)
	if err != nil {
		logger.Error("receipt export failed", zap.String("order_id", order.ID), zap.Error(err))
		return err
	}
	if res.Status == ExportCompleted {
		fmt.Fprintf(sh.p.out, "Saved %s (%d page%s)\n", res.Path, res.Pages, plural(res.Pages))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// parseQuantityFlag reads GROUP:INDEX=QTY. The group may itself contain
// ':' and '=' since the last separators win.
func parseQuantityFlag(s string) (ItemKey, string, error) {
	eq := strings.LastIndex(s, "=")
	if eq < 0 {
		return ItemKey{}, "", fmt.Errorf("quantity %q: want GROUP:INDEX=QTY", s)
	}
	colon := strings.LastIndex(s[:eq], ":")
	if colon < 0 {
		return ItemKey{}, "", fmt.Errorf("quantity %q: want GROUP:INDEX=QTY", s)
	}

	index, err := strconv.Atoi(s[colon+1 : eq])
	if err != nil {
		return ItemKey{}, "", fmt.Errorf("quantity %q: bad index: %w", s, err)
	}
	return ItemKey{Group: s[:colon], Index: index}, s[eq+1:], nil
}
