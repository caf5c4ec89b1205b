package repositories

import (
	"errors"
	"time"

	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
)

// ErrOrderNotFound is returned by SetStatus for an unknown order id.
var ErrOrderNotFound = errors.New("order not found")

const ordersResource = "orders"

// OrderRepository handles the orders resource file.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func loadOrders() ([]models.Order, error) {
	orders := []models.Order{}
	if err := jsonstore.Load(ordersResource, &orders); err != nil && !errors.Is(err, jsonstore.ErrCorrupt) {
		return nil, err
	}
	return orders, nil
}

// nextID returns max(existing ids) + 1, starting at 1. Ids stay unique even
// if the file was hand-edited out of insertion order.
func nextID(orders []models.Order) int {
	max := 0
	for _, o := range orders {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

// Create appends a new pending order owned by owner and returns it.
func (r *OrderRepository) Create(owner, orderType, description, reference string) (models.Order, error) {
	var created models.Order

	err := jsonstore.Mutate(ordersResource, func() error {
		orders, err := loadOrders()
		if err != nil {
			return err
		}

		created = models.Order{
			ID:          nextID(orders),
			User:        owner,
			Username:    owner,
			Type:        orderType,
			Description: description,
			Reference:   reference,
			Status:      models.OrderStatusPending,
			CreatedAt:   time.Now().UTC(),
		}
		orders = append(orders, created)
		return jsonstore.Save(ordersResource, orders)
	})
	return created, err
}

// ListFor returns the orders visible to requester: everything for an admin,
// only owned orders otherwise. An anonymous requester ("" username) owns
// nothing and gets an empty list.
func (r *OrderRepository) ListFor(username string, admin bool) ([]models.Order, error) {
	orders, err := loadOrders()
	if err != nil {
		return nil, err
	}
	if admin {
		return orders, nil
	}

	own := []models.Order{}
	for _, o := range orders {
		if o.User == username && username != "" {
			own = append(own, o)
		}
	}
	return own, nil
}

// SetStatus overwrites the status of the order with the given id.
// Returns ErrOrderNotFound when no order matches.
func (r *OrderRepository) SetStatus(id int, status string) error {
	return jsonstore.Mutate(ordersResource, func() error {
		orders, err := loadOrders()
		if err != nil {
			return err
		}

		for i := range orders {
			if orders[i].ID == id {
				orders[i].Status = status
				return jsonstore.Save(ordersResource, orders)
			}
		}
		return ErrOrderNotFound
	})
}
