package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fishsticks/internal/billing"
	"fishsticks/internal/menuquery"
	"fishsticks/internal/models"
	"fishsticks/internal/money"
	"fishsticks/internal/storage"
)

type handlerFunc func(e *Executor, ctx context.Context, cmdCtx Context) (Response, error)

// handlers maps command words, including aliases, to their handlers.
// Populated in init to break the initialization cycle through cmdSudo,
// which dispatches back through this map.
var handlers map[string]handlerFunc

func init() {
	handlers = map[string]handlerFunc{
		"associate":   cmdAssociate,
		"clear":       cmdClear,
		"cancel":      cmdClear,
		"reset":       cmdClear,
		"closeorder":  cmdCloseOrder,
		"help":        cmdHelp,
		"openorder":   cmdOpenOrder,
		"open":        cmdOpenOrder,
		"order":       cmdOrder,
		"overhead":    cmdOverhead,
		"tips":        cmdOverhead,
		"price":       cmdPrice,
		"repeat":      cmdRepeat,
		"reorder":     cmdRepeat,
		"retweet":     cmdRepeat,
		"restaurants": cmdRestaurants,
		"search":      cmdSearch,
		"sharebill":   cmdSharebill,
		"sudo":        cmdSudo,
		"suggest":     cmdSuggest,
		"summary":     cmdSummary,
	}
}

func cmdRestaurants(e *Executor, ctx context.Context, _ Context) (Response, error) {
	restaurants, err := e.store.Restaurants(ctx)
	if err != nil {
		return nil, err
	}
	return Restaurants{Restaurants: restaurants}, nil
}

func cmdOpenOrder(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	restaurant, err := e.store.RestaurantByName(ctx, cmdCtx.Args)
	if errors.Is(err, storage.ErrNotFound) {
		restaurants, err := e.store.Restaurants(ctx)
		if err != nil {
			return nil, err
		}
		return RestaurantsNoMatch{Restaurants: restaurants}, nil
	}
	if err != nil {
		return nil, err
	}

	menu, err := e.store.CurrentMenuForRestaurant(ctx, restaurant.ID)
	if err != nil {
		return nil, err
	}

	if _, err := e.store.OpenOrder(ctx, menu.ID); err != nil {
		return nil, err
	}

	return OpenedOrder{
		RestaurantName: restaurant.Name,
		MenuURL:        fmt.Sprintf("%smenu/%d", baseURL(cmdCtx), int64(menu.ID)),
	}, nil
}

func baseURL(cmdCtx Context) string {
	if cmdCtx.Env == nil {
		return ""
	}
	return cmdCtx.Env.BaseURL
}

func cmdCloseOrder(e *Executor, ctx context.Context, _ Context) (Response, error) {
	if err := e.store.CloseOrder(ctx); err != nil {
		return nil, err
	}
	return ClosedOrder{}, nil
}

func cmdSearch(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}

	items, err := e.matcher.Resolve(ctx, order.Menu, menuquery.Interpret(cmdCtx.Args))
	if err != nil {
		return nil, err
	}
	return SearchResults{Query: cmdCtx.Args, Items: items}, nil
}

func cmdOrder(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}

	items, err := e.matcher.Resolve(ctx, order.Menu, menuquery.Interpret(cmdCtx.Args))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return OrderNoMatch{Search: cmdCtx.Args}, nil
	}

	best := items[0]
	if err := e.store.AddOrderItem(ctx, order.ID, cmdCtx.UserName, best.ID); err != nil {
		return nil, err
	}
	return PlacedOrder{MenuItems: []models.MenuItem{best}}, nil
}

func cmdRepeat(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}
	menu, err := e.store.Menu(ctx, order.Menu)
	if err != nil {
		return nil, err
	}

	previous, err := e.store.PreviousOrders(ctx, cmdCtx.UserName, menu.Restaurant)
	if err != nil {
		return nil, err
	}

	// History references old menus; map each item onto the current
	// menu by its printed number and skip ones no longer offered.
	var placed []models.MenuItem
	for _, old := range previous {
		matches, err := e.matcher.Resolve(ctx, order.Menu, menuquery.ExactInteger(old.Number))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			placed = append(placed, matches[0])
		}
	}
	if len(placed) == 0 {
		return RepeatNoMatch{}, nil
	}

	for _, item := range placed {
		if err := e.store.AddOrderItem(ctx, order.ID, cmdCtx.UserName, item.ID); err != nil {
			return nil, err
		}
	}
	return PlacedOrder{MenuItems: placed}, nil
}

func cmdClear(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.store.ClearOrderItems(ctx, order.ID, cmdCtx.UserName); err != nil {
		return nil, err
	}
	return Cleared{}, nil
}

func cmdSummary(e *Executor, ctx context.Context, _ Context) (Response, error) {
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := e.store.ItemsInOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	var orders []PersonItems
	for _, group := range billing.GroupByPerson(lines) {
		orders = append(orders, PersonItems{Person: group.Person, Items: group.Items})
	}
	return Summary{Orders: orders}, nil
}

func cmdPrice(e *Executor, ctx context.Context, _ Context) (Response, error) {
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := e.bills.PriceSummary(ctx, order)
	if err != nil {
		return nil, err
	}
	return Price{
		Overhead:          summary.Overhead,
		OverheadPerPerson: summary.OverheadPerPerson,
		Persons:           summary.Persons,
	}, nil
}

func cmdOverhead(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}

	if cmdCtx.Args == "" {
		return Overhead{OverheadInCents: order.OverheadInCents}, nil
	}

	cents, err := money.ParseCents(cmdCtx.Args)
	if err != nil {
		return nil, err
	}
	if err := e.store.SetOverhead(ctx, order.ID, cents); err != nil {
		return nil, err
	}
	return OverheadSet{
		PrevOverheadInCents: order.OverheadInCents,
		NewOverheadInCents:  cents,
	}, nil
}

func cmdAssociate(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	if cmdCtx.Args == "" {
		associations, err := e.store.Associations(ctx)
		if err != nil {
			return nil, err
		}
		return Associations{Associations: associations}, nil
	}

	fields := strings.Fields(cmdCtx.Args)
	var name, account string
	switch len(fields) {
	case 1:
		name, account = cmdCtx.UserName, fields[0]
	case 2:
		name, account = fields[0], fields[1]
	default:
		return nil, ErrBadInput
	}

	if err := e.store.SetAssociation(ctx, name, account); err != nil {
		return nil, err
	}
	return NewAssociation{UserName: name, Account: account}, nil
}

func cmdSuggest(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	payout, err := newPayout(e, cmdCtx)
	if err != nil {
		return nil, err
	}
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := payout.Suggest(ctx, order)
	if err != nil {
		return nil, err
	}
	return Suggest{Candidates: candidates}, nil
}

func cmdSharebill(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	payout, err := newPayout(e, cmdCtx)
	if err != nil {
		return nil, err
	}
	order, err := e.store.DemandOpenOrder(ctx)
	if err != nil {
		return nil, err
	}

	url, err := payout.Settle(ctx, order, cmdCtx.Args, cmdCtx.UserName)
	if err != nil {
		return nil, err
	}
	return Sharebill{URL: url}, nil
}

func newPayout(e *Executor, cmdCtx Context) (*billing.Payout, error) {
	if cmdCtx.Env == nil || cmdCtx.Env.Ledger == nil {
		return nil, &MissingConfigError{Key: "SHAREBILL_URL"}
	}
	return billing.NewPayout(e.store, cmdCtx.Env.Ledger), nil
}

// cmdSudo reruns a command as another user: "sudo <user> <cmd> [args]".
func cmdSudo(e *Executor, ctx context.Context, cmdCtx Context) (Response, error) {
	parts := strings.SplitN(cmdCtx.Args, " ", 3)
	if len(parts) < 2 {
		return nil, &MissingArgumentError{Arg: "command"}
	}
	args := ""
	if len(parts) == 3 {
		args = parts[2]
	}

	return e.dispatch(ctx, parts[1], Context{
		Args:     args,
		UserName: parts[0],
		Env:      cmdCtx.Env,
	})
}

func cmdHelp(_ *Executor, _ context.Context, _ Context) (Response, error) {
	return Help{}, nil
}
