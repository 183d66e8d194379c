package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/metrics"
	"github.com/shopspring/decimal"
)

type CartAction string

const (
	ActionIncrement CartAction = "increment"
	ActionDecrement CartAction = "decrement"
	ActionDelete    CartAction = "delete"
)

// CartLineView is one priced line of the cart.
type CartLineView struct {
	Product   domain.Product
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	TaxAmount decimal.Decimal // unrounded
}

type CartView struct {
	Lines  []CartLineView
	Totals domain.Totals
	// Count sums the raw cart, including lines the catalog no longer knows.
	Count int
}

type AddItemInput struct {
	SessionID string
	ProductID string
	Quantity  string // raw form/JSON value; empty means 1
}

type AddItemOutput struct {
	CartCount int
	Total     decimal.Decimal
}

type UpdateItemOutput struct {
	Totals    domain.Totals
	CartCount int
}

type Cart struct {
	catalog CatalogRepo
	carts   CartStore
}

func NewCart(catalog CatalogRepo, carts CartStore) *Cart {
	return &Cart{catalog: catalog, carts: carts}
}

// ParseQuantity coerces a raw quantity to a positive int.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

func (uc *Cart) Add(ctx context.Context, in AddItemInput) (AddItemOutput, error) {
	pid := strings.TrimSpace(in.ProductID)
	if pid == "" {
		return AddItemOutput{}, ErrInvalidProductID
	}
	qty, err := ParseQuantity(in.Quantity)
	if err != nil {
		metrics.CartMutations.WithLabelValues("add", "rejected").Inc()
		return AddItemOutput{}, err
	}

	state, err := uc.carts.Update(ctx, in.SessionID, func(c *domain.CartState) error {
		return c.Add(pid, qty)
	})
	if err != nil {
		return AddItemOutput{}, fmt.Errorf("add to cart: %w", err)
	}
	metrics.CartMutations.WithLabelValues("add", "ok").Inc()

	view, err := uc.enrich(ctx, state)
	if err != nil {
		return AddItemOutput{}, err
	}
	return AddItemOutput{CartCount: state.Count(), Total: view.Totals.Total}, nil
}

func (uc *Cart) Update(ctx context.Context, sessionID string, action CartAction, productID string) (UpdateItemOutput, error) {
	var mutate func(c *domain.CartState) error
	switch action {
	case ActionIncrement:
		mutate = func(c *domain.CartState) error { return c.Increment(productID) }
	case ActionDecrement:
		mutate = func(c *domain.CartState) error { return c.Decrement(productID) }
	case ActionDelete:
		mutate = func(c *domain.CartState) error { return c.Delete(productID) }
	default:
		return UpdateItemOutput{}, ErrInvalidAction
	}

	state, err := uc.carts.Update(ctx, sessionID, mutate)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			metrics.CartMutations.WithLabelValues(string(action), "not_found").Inc()
			return UpdateItemOutput{}, err
		}
		return UpdateItemOutput{}, fmt.Errorf("update cart: %w", err)
	}
	metrics.CartMutations.WithLabelValues(string(action), "ok").Inc()

	view, err := uc.enrich(ctx, state)
	if err != nil {
		return UpdateItemOutput{}, err
	}
	return UpdateItemOutput{Totals: view.Totals, CartCount: state.Count()}, nil
}

// View prices the session's cart against the current catalog.
func (uc *Cart) View(ctx context.Context, sessionID string) (CartView, error) {
	state, err := uc.carts.Load(ctx, sessionID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}
	return uc.enrich(ctx, state)
}

// enrich drops lines whose product is gone without touching the stored cart.
func (uc *Cart) enrich(ctx context.Context, state domain.CartState) (CartView, error) {
	view := CartView{Count: state.Count()}
	subtotal, tax := decimal.Zero, decimal.Zero

	for _, line := range state.Lines {
		id, err := strconv.ParseInt(line.ProductID, 10, 64)
		if err != nil {
			logging.FromCtx(ctx).Debug("cart line with non-numeric product id skipped", "product_id", line.ProductID)
			continue
		}
		p, err := uc.catalog.GetProduct(ctx, id)
		if errors.Is(err, ErrProductNotFound) {
			logging.FromCtx(ctx).Debug("cart line for missing product skipped", "product_id", id)
			continue
		}
		if err != nil {
			return CartView{}, fmt.Errorf("lookup product %d: %w", id, err)
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lineTax := domain.LineTax(p.TaxPercent, lineTotal)
		view.Lines = append(view.Lines, CartLineView{
			Product:   *p,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
			TaxAmount: lineTax,
		})
		subtotal = subtotal.Add(lineTotal)
		tax = tax.Add(lineTax)
	}

	view.Totals = domain.NewTotals(subtotal, tax)
	return view, nil
}
