// Package list is the mutating surface of the shopping-list service: it
// keeps the product catalog and the shopping list consistent, and announces
// every successful change to the household's connected clients.
package list

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/bywater/internal/model"
	"github.com/dukerupert/bywater/internal/notify"
	"github.com/dukerupert/bywater/internal/push"
	"github.com/dukerupert/bywater/internal/store"
)

// ErrValidation reports a request missing a required field.
var ErrValidation = errors.New("invalid request")

type Service struct {
	products *store.ProductStore
	items    *store.ShoppingStore
	hub      *notify.Hub
	notifier *push.Notifier // nil when push is not configured
	logger   *slog.Logger
}

func NewService(products *store.ProductStore, items *store.ShoppingStore, hub *notify.Hub, notifier *push.Notifier, logger *slog.Logger) *Service {
	return &Service{
		products: products,
		items:    items,
		hub:      hub,
		notifier: notifier,
		logger:   logger,
	}
}

// AddToListRequest identifies the product either by id or by name. A name
// that matches no catalog entry creates one at the end of the catalog, as
// part of the same atomic operation.
type AddToListRequest struct {
	ProductID  int64
	CustomName string
	Quantity   string
	Note       string
}

func (s *Service) AddToList(householdID int64, req AddToListRequest) (*model.ShoppingItemDetail, error) {
	name := strings.TrimSpace(req.CustomName)
	if req.ProductID == 0 && name == "" {
		return nil, fmt.Errorf("%w: product id or custom name required", ErrValidation)
	}

	item, productCreated, err := s.items.AddItem(householdID, req.ProductID, name, req.Quantity, req.Note)
	if err != nil {
		return nil, err
	}

	if productCreated {
		s.hub.Publish(householdID, notify.NewEvent(notify.EventProductsUpdated, nil))
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventShoppingUpdated, nil))

	if s.notifier != nil {
		go s.notifier.Notify(householdID, push.Payload{
			Title: "Shopping list",
			Body:  fmt.Sprintf("%s was added to the list", item.ProductName),
			Tag:   "shopping",
		})
	}

	s.logger.Info("item added", "household", householdID, "product", item.ProductID, "product_created", productCreated)
	return item, nil
}

func (s *Service) Items(householdID int64) ([]model.ShoppingItemDetail, error) {
	return s.items.ListByHousehold(householdID)
}

func (s *Service) UpdateItem(householdID, id int64, quantity, note *string) (*model.ShoppingItemDetail, error) {
	item, err := s.items.UpdateItem(householdID, id, quantity, note)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventShoppingUpdated, nil))
	return item, nil
}

func (s *Service) CheckItem(householdID, id int64, checked bool) (*model.ShoppingItemDetail, error) {
	item, err := s.items.SetChecked(householdID, id, checked)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventShoppingUpdated, nil))
	return item, nil
}

func (s *Service) RemoveItem(householdID, id int64) error {
	if err := s.items.Delete(householdID, id); err != nil {
		return err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventShoppingUpdated, nil))
	return nil
}

// ClearList deletes the household's items — only the checked ones when
// keepUnchecked is set. Returns how many were deleted.
func (s *Service) ClearList(householdID int64, keepUnchecked bool) (int64, error) {
	count, err := s.items.Clear(householdID, keepUnchecked)
	if err != nil {
		return 0, err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventShoppingUpdated, nil))
	s.logger.Info("list cleared", "household", householdID, "deleted", count, "keep_unchecked", keepUnchecked)
	return count, nil
}

func (s *Service) Products(householdID int64) ([]model.Product, error) {
	return s.products.ListByHousehold(householdID)
}

func (s *Service) CreateProduct(householdID int64, name string) (*model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}

	product, err := s.products.Create(householdID, name)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventProductsUpdated, nil))
	return product, nil
}

func (s *Service) RenameProduct(householdID, id int64, name string) (*model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}

	product, err := s.products.Rename(householdID, id, name)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventProductsUpdated, nil))
	return product, nil
}

func (s *Service) DeleteProduct(householdID, id int64) error {
	if err := s.products.Delete(householdID, id); err != nil {
		return err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventProductsUpdated, nil))
	return nil
}

func (s *Service) ReorderProducts(householdID int64, ids []int64) ([]model.Product, error) {
	products, err := s.products.Reorder(householdID, ids)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(householdID, notify.NewEvent(notify.EventProductsUpdated, nil))
	return products, nil
}
